package values

import (
	"math"
	"strings"
)

// kindRank gives the order between values of different kinds. Numeric kinds
// share a rank so integers and floats compare numerically with each other.
func kindRank(k Kind) int {
	switch k {
	case KindNull:
		return 0
	case KindBool:
		return 1
	case KindInt64, KindFloat64:
		return 2
	case KindString:
		return 3
	case KindList:
		return 4
	case KindMap:
		return 5
	case KindPoint:
		return 6
	default:
		panic("unreachable kind")
	}
}

// Compare is a stateless total order over the value domain. Values of
// different kinds order by kind rank, except that all numbers compare
// numerically. Returns <0, 0 or >0.
func Compare(a Value, b Value) int {
	ra, rb := kindRank(a.Kind()), kindRank(b.Kind())
	if ra != rb {
		return ra - rb
	}
	switch a.Kind() {
	case KindNull:
		return 0
	case KindBool:
		av, bv := a.(BoolValue), b.(BoolValue)
		if av == bv {
			return 0
		}
		if !av {
			return -1
		}
		return 1
	case KindInt64, KindFloat64:
		return compareNumbers(a, b)
	case KindString:
		return strings.Compare(string(a.(StringValue)), string(b.(StringValue)))
	case KindList:
		return compareLists(a.(ListValue), b.(ListValue))
	case KindMap:
		return compareMaps(a.(MapValue), b.(MapValue))
	case KindPoint:
		return comparePoints(a.(PointValue), b.(PointValue))
	default:
		panic("unreachable kind")
	}
}

// Equal is equality under Compare, the relation index seeks use.
func Equal(a Value, b Value) bool {
	return Compare(a, b) == 0
}

func compareNumbers(a Value, b Value) int {
	ai, aIsInt := a.(Int64Value)
	bi, bIsInt := b.(Int64Value)
	if aIsInt && bIsInt {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		default:
			return 0
		}
	}
	af := asFloat(a)
	bf := asFloat(b)
	// NaN sorts after every number and equals only NaN, so float comparisons
	// returning false on NaN cannot collapse it into the rest of the numbers
	aNaN, bNaN := math.IsNaN(af), math.IsNaN(bf)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case af < bf:
		return -1
	case af > bf:
		return 1
	default:
		return 0
	}
}

func asFloat(v Value) float64 {
	if i, ok := v.(Int64Value); ok {
		return float64(i)
	}
	return float64(v.(Float64Value))
}

func compareLists(a ListValue, b ListValue) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func compareMaps(a MapValue, b MapValue) int {
	aKeys := a.sortedKeys()
	bKeys := b.sortedKeys()
	n := len(aKeys)
	if len(bKeys) < n {
		n = len(bKeys)
	}
	for i := 0; i < n; i++ {
		if c := strings.Compare(aKeys[i], bKeys[i]); c != 0 {
			return c
		}
		if c := Compare(a[aKeys[i]], b[bKeys[i]]); c != 0 {
			return c
		}
	}
	return len(aKeys) - len(bKeys)
}

func comparePoints(a PointValue, b PointValue) int {
	if a.CRS != b.CRS {
		return a.CRS.Code() - b.CRS.Code()
	}
	switch {
	case a.X < b.X:
		return -1
	case a.X > b.X:
		return 1
	case a.Y < b.Y:
		return -1
	case a.Y > b.Y:
		return 1
	default:
		return 0
	}
}
