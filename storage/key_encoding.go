package storage

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/velograph/velograph/errors"
	"github.com/velograph/velograph/values"
)

/*
Index keys must be comparable with each other as byte strings - without this
prefix scans in Pebble would not work properly. We use an encoding scheme
similar to how MySQL/RocksDB encodes keys (memcomparable): key values are
stored in big-endian order, signed integers have the sign bit flipped and
floats are mapped to an order-preserving unsigned representation.

An index entry key is laid out as:

  |index_id (8 bytes BE)|encoded property value|node_id (8 bytes BE)|

so all entries of one index are contiguous, entries with equal values are
contiguous within the index, and node ids come back in index order.
*/

const signBitMask uint64 = 1 << 63

const (
	keyTagNull byte = iota
	keyTagFalse
	keyTagTrue
	keyTagInt64
	keyTagFloat64
	keyTagString
	keyTagList
	keyTagMap
	keyTagPoint
)

func AppendUint64ToBufferBE(buffer []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(buffer, b[:]...)
}

func ReadUint64FromBufferBE(buffer []byte, offset int) uint64 {
	return binary.BigEndian.Uint64(buffer[offset : offset+8])
}

func KeyEncodeInt64(buffer []byte, val int64) []byte {
	uVal := uint64(val) ^ signBitMask
	return AppendUint64ToBufferBE(buffer, uVal)
}

func KeyEncodeFloat64(buffer []byte, val float64) []byte {
	var uVal uint64
	switch {
	case math.IsNaN(val):
		// one canonical encoding above +Inf, matching the value comparator
		// where NaN sorts after every number and equals only NaN
		uVal = math.Float64bits(math.NaN()) | signBitMask
	case val >= 0:
		uVal = math.Float64bits(val) | signBitMask
	default:
		uVal = ^math.Float64bits(val)
	}
	return AppendUint64ToBufferBE(buffer, uVal)
}

func KeyEncodeString(buffer []byte, val string) []byte {
	buffer = AppendUint64ToBufferBE(buffer, uint64(len(val)))
	return append(buffer, val...)
}

// EncodeKeyValue appends the memcomparable encoding of value. Integral
// numbers encode identically whether they arrive as int64 or float64, so the
// value domain's numeric equality carries over to byte equality.
func EncodeKeyValue(value values.Value, buffer []byte) ([]byte, error) {
	switch val := value.(type) {
	case values.NullValue:
		return append(buffer, keyTagNull), nil
	case values.BoolValue:
		if val {
			return append(buffer, keyTagTrue), nil
		}
		return append(buffer, keyTagFalse), nil
	case values.Int64Value:
		buffer = append(buffer, keyTagInt64)
		return KeyEncodeInt64(buffer, int64(val)), nil
	case values.Float64Value:
		f := float64(val)
		if f == math.Trunc(f) && f >= math.MinInt64 && f <= math.MaxInt64 {
			buffer = append(buffer, keyTagInt64)
			return KeyEncodeInt64(buffer, int64(f)), nil
		}
		buffer = append(buffer, keyTagFloat64)
		return KeyEncodeFloat64(buffer, f), nil
	case values.StringValue:
		buffer = append(buffer, keyTagString)
		return KeyEncodeString(buffer, string(val)), nil
	case values.ListValue:
		buffer = append(buffer, keyTagList)
		buffer = AppendUint64ToBufferBE(buffer, uint64(len(val)))
		var err error
		for _, e := range val {
			if buffer, err = EncodeKeyValue(e, buffer); err != nil {
				return nil, err
			}
		}
		return buffer, nil
	case values.MapValue:
		buffer = append(buffer, keyTagMap)
		buffer = AppendUint64ToBufferBE(buffer, uint64(len(val)))
		var err error
		for _, k := range sortedMapKeys(val) {
			buffer = KeyEncodeString(buffer, k)
			if buffer, err = EncodeKeyValue(val[k], buffer); err != nil {
				return nil, err
			}
		}
		return buffer, nil
	case values.PointValue:
		buffer = append(buffer, keyTagPoint, byte(val.CRS))
		buffer = KeyEncodeFloat64(buffer, val.X)
		return KeyEncodeFloat64(buffer, val.Y), nil
	default:
		return nil, errors.NewUnsupportedValueTypeError(value)
	}
}

// EncodeIndexKeyPrefix appends the 8 byte index id prefix under which all of
// an index's entries live.
func EncodeIndexKeyPrefix(indexID uint64, buffer []byte) []byte {
	return AppendUint64ToBufferBE(buffer, indexID)
}

// EncodeIndexEntryKey builds the full key for one index entry.
func EncodeIndexEntryKey(indexID uint64, value values.Value, nodeID int64, buffer []byte) ([]byte, error) {
	buffer = EncodeIndexKeyPrefix(indexID, buffer)
	buffer, err := EncodeKeyValue(value, buffer)
	if err != nil {
		return nil, err
	}
	return KeyEncodeInt64(buffer, nodeID), nil
}

// IncrementBytesBigEndian returns a new byte slice which is 1 larger than the
// provided slice when represented in big endian layout, but without changing
// the key length
func IncrementBytesBigEndian(bytes []byte) []byte {
	inced := CopyByteSlice(bytes)
	lb := len(bytes)
	for i := lb - 1; i >= 0; i-- {
		b := bytes[i]
		if b < 255 {
			inced[i] = b + 1
			break
		}
		inced[i] = 0
		if i == 0 {
			panic("cannot increment key - all bits set")
		}
	}
	return inced
}

func CopyByteSlice(buff []byte) []byte {
	res := make([]byte, len(buff))
	copy(res, buff)
	return res
}

func sortedMapKeys(m values.MapValue) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
