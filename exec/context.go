package exec

import (
	"github.com/velograph/velograph/values"
)

// MorselExecutionContext is a positioned view into a morsel. Slot accesses go
// through the operator's assigned column offsets, so an operator addresses
// its slots as 0..n without knowing where in the row it was planned. The
// context is pure positional bookkeeping, it owns no external resources and
// is never shared across operators.
type MorselExecutionContext struct {
	morsel     *Morsel
	longOffset int
	refOffset  int
	currentRow int
}

func NewMorselExecutionContext(morsel *Morsel, longOffset int, refOffset int) *MorselExecutionContext {
	return &MorselExecutionContext{morsel: morsel, longOffset: longOffset, refOffset: refOffset}
}

// PositionAt binds the context to a row within [0, capacity).
func (c *MorselExecutionContext) PositionAt(row int) {
	c.morsel.checkRow(row)
	c.currentRow = row
}

func (c *MorselExecutionContext) CurrentRow() int {
	return c.currentRow
}

func (c *MorselExecutionContext) Morsel() *Morsel {
	return c.morsel
}

func (c *MorselExecutionContext) GetLong(index int) int64 {
	return c.morsel.getLong(c.currentRow, c.longOffset+index)
}

func (c *MorselExecutionContext) SetLong(index int, val int64) {
	c.morsel.setLong(c.currentRow, c.longOffset+index, val)
}

func (c *MorselExecutionContext) GetRef(index int) values.Value {
	return c.morsel.getRef(c.currentRow, c.refOffset+index)
}

func (c *MorselExecutionContext) SetRef(index int, val values.Value) {
	c.morsel.setRef(c.currentRow, c.refOffset+index, val)
}
