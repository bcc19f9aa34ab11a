package exec

import (
	"sync"

	"github.com/velograph/velograph/values"
)

// DistinctOperator is a non-leaf operator dropping rows whose key slots have
// been seen before, across every morsel of the pipeline. The seen-set is
// keyed by a murmur3 row hash with hash collisions confirmed by comparison.
// The set is the operator's only cross-invocation state and is lock-guarded
// because operator instances are shared across workers.
type DistinctOperator struct {
	longOffset   int
	refOffset    int
	keyLongSlots []int
	keyRefSlots  []int

	lock sync.Mutex
	seen map[uint64][][]values.Value
}

func NewDistinctOperator(longOffset int, refOffset int, keyLongSlots []int, keyRefSlots []int) *DistinctOperator {
	return &DistinctOperator{
		longOffset:   longOffset,
		refOffset:    refOffset,
		keyLongSlots: keyLongSlots,
		keyRefSlots:  keyRefSlots,
		seen:         make(map[uint64][][]values.Value),
	}
}

var _ Operator = &DistinctOperator{}

func (o *DistinctOperator) Operate(msg Message, morsel *Morsel, queryContext *QueryContext,
	queryState *QueryState) (Continuation, error) {
	if _, ok := msg.(StartLoop); !ok {
		protocolViolation("distinct", msg)
	}
	ctx := NewMorselExecutionContext(morsel, o.longOffset, o.refOffset)
	o.lock.Lock()
	defer o.lock.Unlock()
	writeRow := 0
	for row := 0; row < morsel.NumRows(); row++ {
		ctx.PositionAt(row)
		key := o.rowKey(ctx)
		if o.addIfUnseen(key) {
			morsel.CopyRow(row, writeRow)
			writeRow++
		}
	}
	morsel.SetNumRows(writeRow)
	return EndOfLoop{}, nil
}

func (o *DistinctOperator) Dependency(pipeline *Pipeline) Dependency {
	return NoDependency()
}

func (o *DistinctOperator) rowKey(ctx *MorselExecutionContext) []values.Value {
	key := make([]values.Value, 0, len(o.keyLongSlots)+len(o.keyRefSlots))
	for _, slot := range o.keyLongSlots {
		key = append(key, values.Int64Value(ctx.GetLong(slot)))
	}
	for _, slot := range o.keyRefSlots {
		v := ctx.GetRef(slot)
		if v == nil {
			v = values.NullValue{}
		}
		key = append(key, v)
	}
	return key
}

func (o *DistinctOperator) addIfUnseen(key []values.Value) bool {
	hash := values.HashRow(key)
	for _, prev := range o.seen[hash] {
		if rowsEqual(prev, key) {
			return false
		}
	}
	o.seen[hash] = append(o.seen[hash], key)
	return true
}

func rowsEqual(a []values.Value, b []values.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !values.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
