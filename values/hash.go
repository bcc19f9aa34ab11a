package values

import (
	"encoding/binary"
	"math"

	"github.com/twmb/murmur3"
)

// Hash returns a 64-bit hash of v, consistent with Equal: values equal under
// Compare hash identically. Integer-valued floats hash like the integer so
// the numeric cross-kind equality holds.
func Hash(v Value) uint64 {
	return murmur3.Sum64(appendHashBytes(nil, v))
}

// HashRow hashes a row of values, used by distinct-style operators to key
// their seen-sets.
func HashRow(row []Value) uint64 {
	var buff []byte
	for _, v := range row {
		buff = appendHashBytes(buff, v)
	}
	return murmur3.Sum64(buff)
}

func appendHashBytes(buff []byte, v Value) []byte {
	switch val := v.(type) {
	case NullValue:
		return append(buff, 0)
	case BoolValue:
		if val {
			return append(buff, 1, 1)
		}
		return append(buff, 1, 0)
	case Int64Value:
		buff = append(buff, 2)
		return appendUint64(buff, uint64(int64(val)))
	case Float64Value:
		// an integral float must hash the same as the equal integer
		f := float64(val)
		if f == math.Trunc(f) && f >= math.MinInt64 && f <= math.MaxInt64 {
			buff = append(buff, 2)
			return appendUint64(buff, uint64(int64(f)))
		}
		if math.IsNaN(f) {
			// all NaN payloads are one value under Compare
			buff = append(buff, 3)
			return appendUint64(buff, math.Float64bits(math.NaN()))
		}
		buff = append(buff, 3)
		return appendUint64(buff, math.Float64bits(f))
	case StringValue:
		buff = append(buff, 4)
		buff = appendUint64(buff, uint64(len(val)))
		return append(buff, val...)
	case ListValue:
		buff = append(buff, 5)
		buff = appendUint64(buff, uint64(len(val)))
		for _, e := range val {
			buff = appendHashBytes(buff, e)
		}
		return buff
	case MapValue:
		buff = append(buff, 6)
		buff = appendUint64(buff, uint64(len(val)))
		for _, k := range val.sortedKeys() {
			buff = appendUint64(buff, uint64(len(k)))
			buff = append(buff, k...)
			buff = appendHashBytes(buff, val[k])
		}
		return buff
	case PointValue:
		buff = append(buff, 7, byte(val.CRS))
		buff = appendUint64(buff, math.Float64bits(val.X))
		return appendUint64(buff, math.Float64bits(val.Y))
	default:
		panic("unreachable kind")
	}
}

func appendUint64(buff []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(buff, b[:]...)
}
