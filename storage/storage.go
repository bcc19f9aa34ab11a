package storage

import (
	"github.com/velograph/velograph/values"
)

// IndexReference is the resolved handle to a (label, property) index.
// Resolution is a pure function of the pair, operators cache the reference
// for their lifetime.
type IndexReference struct {
	IndexID    uint64
	LabelID    int
	PropertyID int
}

// Cursor iterates the node ids matching a seek or scan, in index order. A
// cursor is owned by exactly one operator invocation or continuation at a
// time and must be closed exactly once on every path, including abandonment.
type Cursor interface {

	// Advance moves to the next match, returning false when exhausted.
	// The cursor starts positioned before the first match.
	Advance() bool

	// NodeID returns the node id at the current position. Only valid after
	// Advance has returned true.
	NodeID() int64

	Close() error
}

// IndexStore is the storage capability consumed by leaf operators.
type IndexStore interface {

	// ResolveIndex returns the reference for the index on (labelID, propertyID),
	// or an UnknownIndex error if no such index exists.
	ResolveIndex(labelID int, propertyID int) (IndexReference, error)

	// SeekExact returns a cursor over the node ids whose indexed property
	// equals value, in index order.
	SeekExact(ref IndexReference, value values.Value) (Cursor, error)

	// ScanLabel returns a cursor over all node ids carrying the label, in
	// node id order.
	ScanLabel(labelID int) (Cursor, error)

	// CreateIndex registers an index on (labelID, propertyID). Idempotent.
	CreateIndex(labelID int, propertyID int) (IndexReference, error)

	// AddNode records that node nodeID carries labelID.
	AddNode(labelID int, nodeID int64) error

	// AddEntry records that node nodeID with labelID has the indexed
	// property value.
	AddEntry(labelID int, propertyID int, value values.Value, nodeID int64) error

	Close() error
}
