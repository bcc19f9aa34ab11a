package storage

import (
	"go.uber.org/atomic"

	"github.com/velograph/velograph/values"
)

// CountingStore wraps a MemStore and counts resolutions and cursor
// opens/closes, so tests can assert the exactly-once lifecycle through real
// btree cursors.
type CountingStore struct {
	inner        *MemStore
	ResolveCalls atomic.Int32
	Opens        atomic.Int32
	Closes       atomic.Int32
}

func NewCountingStore() *CountingStore {
	return &CountingStore{inner: NewMemStore()}
}

func (s *CountingStore) CreateIndex(labelID int, propertyID int) (IndexReference, error) {
	return s.inner.CreateIndex(labelID, propertyID)
}

func (s *CountingStore) ResolveIndex(labelID int, propertyID int) (IndexReference, error) {
	s.ResolveCalls.Inc()
	return s.inner.ResolveIndex(labelID, propertyID)
}

func (s *CountingStore) AddNode(labelID int, nodeID int64) error {
	return s.inner.AddNode(labelID, nodeID)
}

func (s *CountingStore) AddEntry(labelID int, propertyID int, value values.Value, nodeID int64) error {
	return s.inner.AddEntry(labelID, propertyID, value, nodeID)
}

func (s *CountingStore) SeekExact(ref IndexReference, value values.Value) (Cursor, error) {
	cursor, err := s.inner.SeekExact(ref, value)
	if err != nil {
		return nil, err
	}
	s.Opens.Inc()
	return &countingCursor{Cursor: cursor, closes: &s.Closes}, nil
}

func (s *CountingStore) ScanLabel(labelID int) (Cursor, error) {
	cursor, err := s.inner.ScanLabel(labelID)
	if err != nil {
		return nil, err
	}
	s.Opens.Inc()
	return &countingCursor{Cursor: cursor, closes: &s.Closes}, nil
}

func (s *CountingStore) Close() error {
	return s.inner.Close()
}

type countingCursor struct {
	Cursor
	closes *atomic.Int32
}

func (c *countingCursor) Close() error {
	err := c.Cursor.Close()
	if err == nil {
		c.closes.Inc()
	}
	return err
}
