package storage

import (
	"bytes"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/velograph/velograph/errors"
	"github.com/velograph/velograph/values"
)

// Meta keys live under eight zero bytes, below the smallest possible index
// prefix (index ids start at 1).
var (
	metaIndexPrefix = append(make([]byte, 8), 'i')
	metaLabelPrefix = append(make([]byte, 8), 'l')
)

// PebbleStore is a persistent IndexStore. Index entries are memcomparable
// keys so an exact-match seek is a prefix scan, label membership is kept as a
// per-label entry set keyed by node id.
type PebbleStore struct {
	db           *pebble.DB
	mu           sync.Mutex
	indexSeq     uint64
	indexes      map[indexKey]IndexReference
	labelIndexes map[int]uint64
}

func OpenPebbleStore(dataDir string) (*PebbleStore, error) {
	pebbleDir := filepath.Join(dataDir, "pebble")
	pebbleOptions := &pebble.Options{}
	db, err := pebble.Open(pebbleDir, pebbleOptions)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	s := &PebbleStore{
		db:           db,
		indexes:      make(map[indexKey]IndexReference),
		labelIndexes: make(map[int]uint64),
	}
	if err := s.loadMeta(); err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			return nil, errors.WithStack(closeErr)
		}
		return nil, err
	}
	return s, nil
}

func (s *PebbleStore) loadMeta() error {
	iter := s.db.NewIter(&pebble.IterOptions{})
	for iter.SeekGE(metaIndexPrefix); iter.Valid(); iter.Next() {
		key := iter.Key()
		if bytes.HasPrefix(key, metaIndexPrefix) {
			rest := key[len(metaIndexPrefix):]
			labelID := int64(ReadUint64FromBufferBE(rest, 0) ^ signBitMask)
			propertyID := int64(ReadUint64FromBufferBE(rest, 8) ^ signBitMask)
			indexID := ReadUint64FromBufferBE(iter.Value(), 0)
			s.indexes[indexKey{labelID: int(labelID), propertyID: int(propertyID)}] = IndexReference{
				IndexID:    indexID,
				LabelID:    int(labelID),
				PropertyID: int(propertyID),
			}
			if indexID > s.indexSeq {
				s.indexSeq = indexID
			}
			continue
		}
		if bytes.HasPrefix(key, metaLabelPrefix) {
			rest := key[len(metaLabelPrefix):]
			labelID := int64(ReadUint64FromBufferBE(rest, 0) ^ signBitMask)
			indexID := ReadUint64FromBufferBE(iter.Value(), 0)
			s.labelIndexes[int(labelID)] = indexID
			if indexID > s.indexSeq {
				s.indexSeq = indexID
			}
			continue
		}
		break
	}
	return errors.WithStack(iter.Close())
}

func (s *PebbleStore) CreateIndex(labelID int, propertyID int) (IndexReference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := indexKey{labelID: labelID, propertyID: propertyID}
	if ref, ok := s.indexes[key]; ok {
		return ref, nil
	}
	s.indexSeq++
	ref := IndexReference{IndexID: s.indexSeq, LabelID: labelID, PropertyID: propertyID}
	metaKey := CopyByteSlice(metaIndexPrefix)
	metaKey = KeyEncodeInt64(metaKey, int64(labelID))
	metaKey = KeyEncodeInt64(metaKey, int64(propertyID))
	if err := s.db.Set(metaKey, AppendUint64ToBufferBE(nil, ref.IndexID), &pebble.WriteOptions{Sync: false}); err != nil {
		return IndexReference{}, errors.WithStack(err)
	}
	s.indexes[key] = ref
	return ref, nil
}

func (s *PebbleStore) ResolveIndex(labelID int, propertyID int) (IndexReference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, ok := s.indexes[indexKey{labelID: labelID, propertyID: propertyID}]
	if !ok {
		return IndexReference{}, errors.NewUnknownIndexError(labelID, propertyID)
	}
	return ref, nil
}

func (s *PebbleStore) labelIndexID(labelID int) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.labelIndexes[labelID]; ok {
		return id, nil
	}
	s.indexSeq++
	id := s.indexSeq
	metaKey := CopyByteSlice(metaLabelPrefix)
	metaKey = KeyEncodeInt64(metaKey, int64(labelID))
	if err := s.db.Set(metaKey, AppendUint64ToBufferBE(nil, id), &pebble.WriteOptions{Sync: false}); err != nil {
		return 0, errors.WithStack(err)
	}
	s.labelIndexes[labelID] = id
	return id, nil
}

func (s *PebbleStore) AddNode(labelID int, nodeID int64) error {
	id, err := s.labelIndexID(labelID)
	if err != nil {
		return err
	}
	key := EncodeIndexKeyPrefix(id, nil)
	key = KeyEncodeInt64(key, nodeID)
	return errors.WithStack(s.db.Set(key, nil, &pebble.WriteOptions{Sync: false}))
}

func (s *PebbleStore) AddEntry(labelID int, propertyID int, value values.Value, nodeID int64) error {
	if err := s.AddNode(labelID, nodeID); err != nil {
		return err
	}
	ref, err := s.ResolveIndex(labelID, propertyID)
	if err != nil {
		return err
	}
	key, err := EncodeIndexEntryKey(ref.IndexID, value, nodeID, nil)
	if err != nil {
		return err
	}
	return errors.WithStack(s.db.Set(key, nil, &pebble.WriteOptions{Sync: false}))
}

func (s *PebbleStore) SeekExact(ref IndexReference, value values.Value) (Cursor, error) {
	prefix := EncodeIndexKeyPrefix(ref.IndexID, nil)
	prefix, err := EncodeKeyValue(value, prefix)
	if err != nil {
		return nil, err
	}
	return s.newPrefixCursor(prefix), nil
}

func (s *PebbleStore) ScanLabel(labelID int) (Cursor, error) {
	id, err := s.labelIndexID(labelID)
	if err != nil {
		return nil, err
	}
	return s.newPrefixCursor(EncodeIndexKeyPrefix(id, nil)), nil
}

func (s *PebbleStore) newPrefixCursor(prefix []byte) *pebbleCursor {
	iter := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: IncrementBytesBigEndian(prefix),
	})
	return &pebbleCursor{iter: iter}
}

func (s *PebbleStore) Close() error {
	return errors.WithStack(s.db.Close())
}

// pebbleCursor iterates the entries under one key prefix. The node id is the
// last 8 bytes of each entry key.
type pebbleCursor struct {
	iter    *pebble.Iterator
	started bool
	closed  bool
	current int64
}

func (c *pebbleCursor) Advance() bool {
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
	key := c.iter.Key()
	c.current = int64(ReadUint64FromBufferBE(key, len(key)-8) ^ signBitMask)
	return true
}

func (c *pebbleCursor) NodeID() int64 {
	return c.current
}

func (c *pebbleCursor) Close() error {
	if c.closed {
		return errors.New("cursor already closed")
	}
	c.closed = true
	return errors.WithStack(c.iter.Close())
}
