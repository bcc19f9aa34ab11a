package storage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/velograph/velograph/errors"
	"github.com/velograph/velograph/values"
)

func drain(t *testing.T, cursor Cursor) []int64 {
	t.Helper()
	var ids []int64
	for cursor.Advance() {
		ids = append(ids, cursor.NodeID())
	}
	require.NoError(t, cursor.Close())
	return ids
}

func TestMemStoreSeekExact(t *testing.T) {
	store := NewMemStore()
	ref, err := store.CreateIndex(1, 2)
	require.NoError(t, err)
	require.NoError(t, store.AddEntry(1, 2, values.StringValue("red"), 30))
	require.NoError(t, store.AddEntry(1, 2, values.StringValue("red"), 10))
	require.NoError(t, store.AddEntry(1, 2, values.StringValue("blue"), 20))

	cursor, err := store.SeekExact(ref, values.StringValue("red"))
	require.NoError(t, err)
	require.Equal(t, []int64{10, 30}, drain(t, cursor))

	cursor, err = store.SeekExact(ref, values.StringValue("green"))
	require.NoError(t, err)
	require.Empty(t, drain(t, cursor))
}

func TestMemStoreSeekNumericEquality(t *testing.T) {
	store := NewMemStore()
	ref, err := store.CreateIndex(1, 2)
	require.NoError(t, err)
	require.NoError(t, store.AddEntry(1, 2, values.Int64Value(7), 1))

	// a float probe equal to a stored integer must match
	cursor, err := store.SeekExact(ref, values.Float64Value(7))
	require.NoError(t, err)
	require.Equal(t, []int64{1}, drain(t, cursor))
}

func TestMemStoreSeekNaN(t *testing.T) {
	store := NewMemStore()
	ref, err := store.CreateIndex(1, 2)
	require.NoError(t, err)
	require.NoError(t, store.AddEntry(1, 2, values.Int64Value(7), 1))
	require.NoError(t, store.AddEntry(1, 2, values.Int64Value(8), 2))

	// a NaN probe matches no numeric entry
	cursor, err := store.SeekExact(ref, values.Float64Value(math.NaN()))
	require.NoError(t, err)
	require.Empty(t, drain(t, cursor))

	// and a stored NaN matches only a NaN probe
	require.NoError(t, store.AddEntry(1, 2, values.Float64Value(math.NaN()), 3))
	cursor, err = store.SeekExact(ref, values.Float64Value(math.NaN()))
	require.NoError(t, err)
	require.Equal(t, []int64{3}, drain(t, cursor))

	cursor, err = store.SeekExact(ref, values.Int64Value(7))
	require.NoError(t, err)
	require.Equal(t, []int64{1}, drain(t, cursor))
}

func TestMemStoreResolveUnknownIndex(t *testing.T) {
	store := NewMemStore()
	_, err := store.ResolveIndex(5, 6)
	code, ok := errors.Code(err)
	require.True(t, ok)
	require.Equal(t, errors.ErrorCode(errors.UnknownIndex), code)
}

func TestMemStoreCreateIndexIdempotent(t *testing.T) {
	store := NewMemStore()
	ref1, err := store.CreateIndex(1, 2)
	require.NoError(t, err)
	ref2, err := store.CreateIndex(1, 2)
	require.NoError(t, err)
	require.Equal(t, ref1, ref2)

	resolved, err := store.ResolveIndex(1, 2)
	require.NoError(t, err)
	require.Equal(t, ref1, resolved)
}

func TestMemStoreScanLabel(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.AddNode(3, 20))
	require.NoError(t, store.AddNode(3, 10))
	require.NoError(t, store.AddNode(4, 99))

	cursor, err := store.ScanLabel(3)
	require.NoError(t, err)
	require.Equal(t, []int64{10, 20}, drain(t, cursor))

	// unknown label scans empty
	cursor, err = store.ScanLabel(42)
	require.NoError(t, err)
	require.Empty(t, drain(t, cursor))
}

func TestMemStoreCursorDoubleClose(t *testing.T) {
	store := NewMemStore()
	ref, err := store.CreateIndex(1, 2)
	require.NoError(t, err)
	cursor, err := store.SeekExact(ref, values.Int64Value(1))
	require.NoError(t, err)
	require.NoError(t, cursor.Close())
	require.Error(t, cursor.Close())
	require.Panics(t, func() { cursor.Advance() })
}

func TestMemStoreCursorResumable(t *testing.T) {
	store := NewMemStore()
	ref, err := store.CreateIndex(1, 2)
	require.NoError(t, err)
	require.NoError(t, store.AddEntry(1, 2, values.Int64Value(5), 1))
	require.NoError(t, store.AddEntry(1, 2, values.Int64Value(5), 2))
	require.NoError(t, store.AddEntry(1, 2, values.Int64Value(6), 3))

	// advance partway, then resume from the same cursor later - the iterator
	// stays pinned in between, which is how continuations hold their position
	cursor, err := store.SeekExact(ref, values.Int64Value(5))
	require.NoError(t, err)
	require.True(t, cursor.Advance())
	require.Equal(t, int64(1), cursor.NodeID())

	require.True(t, cursor.Advance())
	require.Equal(t, int64(2), cursor.NodeID())
	require.False(t, cursor.Advance())
	require.NoError(t, cursor.Close())
}
