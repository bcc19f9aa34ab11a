package values

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueStrings(t *testing.T) {
	require.Equal(t, "NULL", NullValue{}.String())
	require.Equal(t, "true", BoolValue(true).String())
	require.Equal(t, "-7", Int64Value(-7).String())
	require.Equal(t, "2.5", Float64Value(2.5).String())
	require.Equal(t, "abc", StringValue("abc").String())
	require.Equal(t, "[1, a]", ListValue{Int64Value(1), StringValue("a")}.String())
	require.Equal(t, "{a: 1, b: 2}", MapValue{"b": Int64Value(2), "a": Int64Value(1)}.String())
}

func TestConcatLists(t *testing.T) {
	a := ListValue{Int64Value(1)}
	b := ListValue{Int64Value(2), Int64Value(3)}
	require.Equal(t, ListValue{Int64Value(1), Int64Value(2), Int64Value(3)}, ConcatLists(a, b))
	require.Equal(t, ListValue{}, ConcatLists())
	// the inputs stay untouched
	require.Equal(t, ListValue{Int64Value(1)}, a)
}

func TestCombineMaps(t *testing.T) {
	a := MapValue{"x": Int64Value(1), "y": Int64Value(2)}
	b := MapValue{"y": Int64Value(20), "z": Int64Value(30)}
	require.Equal(t, MapValue{
		"x": Int64Value(1),
		"y": Int64Value(20),
		"z": Int64Value(30),
	}, CombineMaps(a, b))
	require.Equal(t, MapValue{"y": Int64Value(2), "x": Int64Value(1)}, a)
}

func TestAppendPrependToList(t *testing.T) {
	list := ListValue{Int64Value(2)}
	require.Equal(t, ListValue{Int64Value(2), Int64Value(3)}, AppendToList(list, Int64Value(3)))
	require.Equal(t, ListValue{Int64Value(1), Int64Value(2)}, PrependToList(list, Int64Value(1)))
	require.Equal(t, ListValue{Int64Value(2)}, list)
}
