package values

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies the concrete type of a Value. The set of kinds is closed:
// conversion from external objects happens at the boundary in Of and anything
// outside this set is rejected there.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindFloat64
	KindString
	KindList
	KindMap
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindPoint:
		return "point"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a runtime value flowing through morsel ref slots.
type Value interface {
	Kind() Kind
	String() string
}

type NullValue struct{}

func (NullValue) Kind() Kind     { return KindNull }
func (NullValue) String() string { return "NULL" }

type BoolValue bool

func (BoolValue) Kind() Kind { return KindBool }
func (v BoolValue) String() string {
	if v {
		return "true"
	}
	return "false"
}

type Int64Value int64

func (Int64Value) Kind() Kind       { return KindInt64 }
func (v Int64Value) String() string { return fmt.Sprintf("%d", int64(v)) }

type Float64Value float64

func (Float64Value) Kind() Kind       { return KindFloat64 }
func (v Float64Value) String() string { return fmt.Sprintf("%g", float64(v)) }

type StringValue string

func (StringValue) Kind() Kind       { return KindString }
func (v StringValue) String() string { return string(v) }

type ListValue []Value

func (ListValue) Kind() Kind { return KindList }
func (v ListValue) String() string {
	sb := strings.Builder{}
	sb.WriteString("[")
	for i, e := range v {
		if i != 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteString("]")
	return sb.String()
}

type MapValue map[string]Value

func (MapValue) Kind() Kind { return KindMap }
func (v MapValue) String() string {
	keys := v.sortedKeys()
	sb := strings.Builder{}
	sb.WriteString("{")
	for i, k := range keys {
		if i != 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", k, v[k].String()))
	}
	sb.WriteString("}")
	return sb.String()
}

// sortedKeys gives deterministic iteration order for printing, hashing and
// comparison.
func (v MapValue) sortedKeys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ConcatLists concatenates lists into a single new list.
func ConcatLists(lists ...ListValue) ListValue {
	totalSize := 0
	for _, l := range lists {
		totalSize += len(l)
	}
	res := make(ListValue, 0, totalSize)
	for _, l := range lists {
		res = append(res, l...)
	}
	return res
}

// CombineMaps merges a and b into a new map, entries of b winning on key
// collisions.
func CombineMaps(a MapValue, b MapValue) MapValue {
	res := make(MapValue, len(a)+len(b))
	for k, v := range a {
		res[k] = v
	}
	for k, v := range b {
		res[k] = v
	}
	return res
}

// AppendToList returns a new list with value appended.
func AppendToList(list ListValue, value Value) ListValue {
	res := make(ListValue, len(list)+1)
	copy(res, list)
	res[len(list)] = value
	return res
}

// PrependToList returns a new list with value at the front.
func PrependToList(list ListValue, value Value) ListValue {
	res := make(ListValue, len(list)+1)
	res[0] = value
	copy(res[1:], list)
	return res
}
