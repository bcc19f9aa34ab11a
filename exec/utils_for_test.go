package exec

import (
	"go.uber.org/atomic"

	"github.com/velograph/velograph/errors"
	"github.com/velograph/velograph/storage"
	"github.com/velograph/velograph/values"
)

// Test utils for this package

// fakeStore is an IndexStore that serves canned matches and counts resolve
// calls and cursor opens/closes so tests can assert the exactly-once
// lifecycle.
type fakeStore struct {
	refs         map[[2]int]storage.IndexReference
	matches      map[string][]int64
	labelNodes   map[int][]int64
	resolveCalls atomic.Int32
	opens        atomic.Int32
	closes       atomic.Int32
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		refs:       make(map[[2]int]storage.IndexReference),
		matches:    make(map[string][]int64),
		labelNodes: make(map[int][]int64),
	}
}

func (s *fakeStore) CreateIndex(labelID int, propertyID int) (storage.IndexReference, error) {
	key := [2]int{labelID, propertyID}
	if ref, ok := s.refs[key]; ok {
		return ref, nil
	}
	ref := storage.IndexReference{IndexID: uint64(len(s.refs) + 1), LabelID: labelID, PropertyID: propertyID}
	s.refs[key] = ref
	return ref, nil
}

func (s *fakeStore) ResolveIndex(labelID int, propertyID int) (storage.IndexReference, error) {
	s.resolveCalls.Inc()
	ref, ok := s.refs[[2]int{labelID, propertyID}]
	if !ok {
		return storage.IndexReference{}, errors.NewUnknownIndexError(labelID, propertyID)
	}
	return ref, nil
}

func (s *fakeStore) AddNode(labelID int, nodeID int64) error {
	s.labelNodes[labelID] = append(s.labelNodes[labelID], nodeID)
	return nil
}

func (s *fakeStore) AddEntry(labelID int, propertyID int, value values.Value, nodeID int64) error {
	s.matches[value.String()] = append(s.matches[value.String()], nodeID)
	return nil
}

func (s *fakeStore) SeekExact(ref storage.IndexReference, value values.Value) (storage.Cursor, error) {
	s.opens.Inc()
	return &fakeCursor{ids: s.matches[value.String()], store: s}, nil
}

func (s *fakeStore) ScanLabel(labelID int) (storage.Cursor, error) {
	s.opens.Inc()
	return &fakeCursor{ids: s.labelNodes[labelID], store: s}, nil
}

func (s *fakeStore) Close() error {
	return nil
}

type fakeCursor struct {
	ids    []int64
	pos    int
	closed bool
	store  *fakeStore
}

func (c *fakeCursor) Advance() bool {
	if c.closed {
		panic("advance on closed cursor")
	}
	if c.pos >= len(c.ids) {
		return false
	}
	c.pos++
	return true
}

func (c *fakeCursor) NodeID() int64 {
	return c.ids[c.pos-1]
}

func (c *fakeCursor) Close() error {
	if c.closed {
		return errors.New("cursor already closed")
	}
	c.closed = true
	c.store.closes.Inc()
	return nil
}

// constExpr avoids depending on the expr package from inside exec tests.
type constExpr struct {
	value values.Value
}

func (e constExpr) Eval(ctx *MorselExecutionContext, state *QueryState) (values.Value, error) {
	return e.value, nil
}

// refSlotExpr reads a ref slot of the current row, for correlated seeks.
type refSlotExpr struct {
	slot int
}

func (e refSlotExpr) Eval(ctx *MorselExecutionContext, state *QueryState) (values.Value, error) {
	v := ctx.GetRef(e.slot)
	if v == nil {
		return values.NullValue{}, nil
	}
	return v, nil
}

// failingExpr always fails evaluation.
type failingExpr struct {
}

func (e failingExpr) Eval(ctx *MorselExecutionContext, state *QueryState) (values.Value, error) {
	return nil, errors.NewEvaluationError("boom")
}

func morselLongs(m *Morsel, longSlot int) []int64 {
	ctx := NewMorselExecutionContext(m, 0, 0)
	res := make([]int64, 0, m.NumRows())
	for row := 0; row < m.NumRows(); row++ {
		ctx.PositionAt(row)
		res = append(res, ctx.GetLong(longSlot))
	}
	return res
}
