package storage

import (
	"math"
	"sync"

	"github.com/tidwall/btree"
	"github.com/velograph/velograph/errors"
	"github.com/velograph/velograph/values"
)

type indexEntry struct {
	value  values.Value
	nodeID int64
}

func indexEntryLess(a, b indexEntry) bool {
	if c := values.Compare(a.value, b.value); c != 0 {
		return c < 0
	}
	return a.nodeID < b.nodeID
}

type indexKey struct {
	labelID    int
	propertyID int
}

// MemStore is an in-memory IndexStore backed by ordered btrees, one per
// index plus one per label. It is the store used in tests and for
// single-process runs without a data directory.
type MemStore struct {
	mu        sync.RWMutex
	indexSeq  uint64
	indexes   map[indexKey]*memIndex
	labels    map[int]*btree.BTreeG[int64]
}

type memIndex struct {
	ref  IndexReference
	tree *btree.BTreeG[indexEntry]
}

func NewMemStore() *MemStore {
	return &MemStore{
		indexes: make(map[indexKey]*memIndex),
		labels:  make(map[int]*btree.BTreeG[int64]),
	}
}

func (s *MemStore) CreateIndex(labelID int, propertyID int) (IndexReference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := indexKey{labelID: labelID, propertyID: propertyID}
	if idx, ok := s.indexes[key]; ok {
		return idx.ref, nil
	}
	s.indexSeq++
	idx := &memIndex{
		ref:  IndexReference{IndexID: s.indexSeq, LabelID: labelID, PropertyID: propertyID},
		tree: btree.NewBTreeG(indexEntryLess),
	}
	s.indexes[key] = idx
	return idx.ref, nil
}

func (s *MemStore) ResolveIndex(labelID int, propertyID int) (IndexReference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexes[indexKey{labelID: labelID, propertyID: propertyID}]
	if !ok {
		return IndexReference{}, errors.NewUnknownIndexError(labelID, propertyID)
	}
	return idx.ref, nil
}

func (s *MemStore) AddNode(labelID int, nodeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tree, ok := s.labels[labelID]
	if !ok {
		tree = btree.NewBTreeG(func(a, b int64) bool { return a < b })
		s.labels[labelID] = tree
	}
	tree.Set(nodeID)
	return nil
}

func (s *MemStore) AddEntry(labelID int, propertyID int, value values.Value, nodeID int64) error {
	if err := s.AddNode(labelID, nodeID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.indexes[indexKey{labelID: labelID, propertyID: propertyID}]
	if !ok {
		return errors.NewUnknownIndexError(labelID, propertyID)
	}
	idx.tree.Set(indexEntry{value: value, nodeID: nodeID})
	return nil
}

func (s *MemStore) SeekExact(ref IndexReference, value values.Value) (Cursor, error) {
	s.mu.RLock()
	idx, ok := s.indexes[indexKey{labelID: ref.LabelID, propertyID: ref.PropertyID}]
	s.mu.RUnlock()
	if !ok || idx.ref.IndexID != ref.IndexID {
		return nil, errors.NewUnknownIndexError(ref.LabelID, ref.PropertyID)
	}
	// iterate a copy-on-write snapshot - a pinned iterator locks its tree, and
	// cursors can stay pinned inside suspended continuations for a while
	return &memCursor{
		iter:    idx.tree.Copy().Iter(),
		seekVal: value,
	}, nil
}

func (s *MemStore) ScanLabel(labelID int) (Cursor, error) {
	s.mu.RLock()
	tree, ok := s.labels[labelID]
	s.mu.RUnlock()
	if !ok {
		// a label nobody has produces an empty scan, not an error
		empty := btree.NewBTreeG(func(a, b int64) bool { return a < b })
		tree = empty
	}
	return &labelCursor{iter: tree.Copy().Iter()}, nil
}

func (s *MemStore) Close() error {
	return nil
}

// memCursor drains the entries of one index whose value equals seekVal, in
// node id order. The underlying btree iterator stays pinned while the cursor
// is suspended inside a continuation.
type memCursor struct {
	iter    btree.IterG[indexEntry]
	seekVal values.Value
	started bool
	closed  bool
	current int64
}

func (c *memCursor) Advance() bool {
	if c.closed {
		panic("advance on closed cursor")
	}
	var ok bool
	if !c.started {
		c.started = true
		ok = c.iter.Seek(indexEntry{value: c.seekVal, nodeID: math.MinInt64})
	} else {
		ok = c.iter.Next()
	}
	if !ok {
		return false
	}
	item := c.iter.Item()
	if !values.Equal(item.value, c.seekVal) {
		return false
	}
	c.current = item.nodeID
	return true
}

func (c *memCursor) NodeID() int64 {
	return c.current
}

func (c *memCursor) Close() error {
	if c.closed {
		return errors.New("cursor already closed")
	}
	c.closed = true
	c.iter.Release()
	return nil
}

type labelCursor struct {
	iter    btree.IterG[int64]
	started bool
	closed  bool
	current int64
}

func (c *labelCursor) Advance() bool {
	if c.closed {
		panic("advance on closed cursor")
	}
	var ok bool
	if !c.started {
		c.started = true
		ok = c.iter.First()
	} else {
		ok = c.iter.Next()
	}
	if !ok {
		return false
	}
	c.current = c.iter.Item()
	return true
}

func (c *labelCursor) NodeID() int64 {
	return c.current
}

func (c *labelCursor) Close() error {
	if c.closed {
		return errors.New("cursor already closed")
	}
	c.closed = true
	c.iter.Release()
	return nil
}
