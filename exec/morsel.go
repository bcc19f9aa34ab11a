package exec

import (
	"fmt"

	"github.com/velograph/velograph/values"
)

// Morsel is a fixed-capacity columnar batch of rows. Each row owns
// longsPerRow fixed-width slots holding node and relationship ids and
// refsPerRow slots holding arbitrary values. The layout is fixed for the
// lifetime of a pipeline and shared by every operator touching the morsel.
//
// Out-of-bounds access is a miscomputed layout upstream, a programming error,
// and panics rather than returning an error.
type Morsel struct {
	longs       []int64
	refs        []values.Value
	longsPerRow int
	refsPerRow  int
	capacity    int
	numRows     int
}

func NewMorsel(capacity int, longsPerRow int, refsPerRow int) *Morsel {
	if capacity < 1 {
		panic(fmt.Sprintf("invalid morsel capacity %d", capacity))
	}
	if longsPerRow < 0 || refsPerRow < 0 {
		panic(fmt.Sprintf("invalid morsel layout %d longs %d refs", longsPerRow, refsPerRow))
	}
	return &Morsel{
		longs:       make([]int64, capacity*longsPerRow),
		refs:        make([]values.Value, capacity*refsPerRow),
		longsPerRow: longsPerRow,
		refsPerRow:  refsPerRow,
		capacity:    capacity,
	}
}

func (m *Morsel) Capacity() int {
	return m.capacity
}

func (m *Morsel) LongsPerRow() int {
	return m.longsPerRow
}

func (m *Morsel) RefsPerRow() int {
	return m.refsPerRow
}

// NumRows is the number of valid rows currently in the morsel.
func (m *Morsel) NumRows() int {
	return m.numRows
}

// SetNumRows marks the first numRows rows as valid.
func (m *Morsel) SetNumRows(numRows int) {
	if numRows < 0 || numRows > m.capacity {
		panic(fmt.Sprintf("row count %d out of bounds, capacity %d", numRows, m.capacity))
	}
	m.numRows = numRows
}

// IsFull reports whether the morsel has no free row capacity left.
func (m *Morsel) IsFull() bool {
	return m.numRows == m.capacity
}

// Reset empties the morsel for reuse without reallocating.
func (m *Morsel) Reset() {
	m.numRows = 0
	for i := range m.refs {
		m.refs[i] = nil
	}
}

// CopyRow copies all slots of row from onto row to. Used by compacting
// operators such as filter and distinct.
func (m *Morsel) CopyRow(from int, to int) {
	m.checkRow(from)
	m.checkRow(to)
	if from == to {
		return
	}
	copy(m.longs[to*m.longsPerRow:(to+1)*m.longsPerRow], m.longs[from*m.longsPerRow:(from+1)*m.longsPerRow])
	copy(m.refs[to*m.refsPerRow:(to+1)*m.refsPerRow], m.refs[from*m.refsPerRow:(from+1)*m.refsPerRow])
}

func (m *Morsel) getLong(row int, slot int) int64 {
	m.checkRow(row)
	m.checkLongSlot(slot)
	return m.longs[row*m.longsPerRow+slot]
}

func (m *Morsel) setLong(row int, slot int, val int64) {
	m.checkRow(row)
	m.checkLongSlot(slot)
	m.longs[row*m.longsPerRow+slot] = val
}

func (m *Morsel) getRef(row int, slot int) values.Value {
	m.checkRow(row)
	m.checkRefSlot(slot)
	return m.refs[row*m.refsPerRow+slot]
}

func (m *Morsel) setRef(row int, slot int, val values.Value) {
	m.checkRow(row)
	m.checkRefSlot(slot)
	m.refs[row*m.refsPerRow+slot] = val
}

func (m *Morsel) checkRow(row int) {
	if row < 0 || row >= m.capacity {
		panic(fmt.Sprintf("row %d out of bounds, capacity %d", row, m.capacity))
	}
}

func (m *Morsel) checkLongSlot(slot int) {
	if slot < 0 || slot >= m.longsPerRow {
		panic(fmt.Sprintf("long slot %d out of bounds, %d per row", slot, m.longsPerRow))
	}
}

func (m *Morsel) checkRefSlot(slot int) {
	if slot < 0 || slot >= m.refsPerRow {
		panic(fmt.Sprintf("ref slot %d out of bounds, %d per row", slot, m.refsPerRow))
	}
}
