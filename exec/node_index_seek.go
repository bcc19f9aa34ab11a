package exec

import (
	"sync"

	"github.com/velograph/velograph/storage"
)

// NodeIndexSeekOperator is a leaf operator producing the node ids whose
// indexed property equals a runtime value. The seek value is evaluated
// against the current row already present in the morsel, so a correlated
// (nested-loop) seek can probe with an outer row's value.
//
// One operator instance is shared by every worker running its pipeline, so
// the resolved index reference is the only cross-invocation state and is
// memoized under a lock: resolution is a pure function of (label, property)
// and happens at most once per instance.
type NodeIndexSeekOperator struct {
	longOffset int
	refOffset  int
	labelID    int
	propertyID int
	valueExpr  Expression

	refLock  sync.Mutex
	indexRef *storage.IndexReference
}

// NewNodeIndexSeekOperator creates a seek against the (labelID, propertyID)
// index. The produced node id is written to long slot 0 at longOffset;
// valueExpr produces the seek value from the current row.
func NewNodeIndexSeekOperator(longOffset int, refOffset int, labelID int, propertyID int, valueExpr Expression) *NodeIndexSeekOperator {
	return &NodeIndexSeekOperator{
		longOffset: longOffset,
		refOffset:  refOffset,
		labelID:    labelID,
		propertyID: propertyID,
		valueExpr:  valueExpr,
	}
}

var _ Operator = &NodeIndexSeekOperator{}

func (o *NodeIndexSeekOperator) Operate(msg Message, morsel *Morsel, queryContext *QueryContext,
	queryState *QueryState) (Continuation, error) {
	var cursor storage.Cursor
	var iteration Iteration
	switch m := msg.(type) {
	case StartLeafLoop:
		iteration = m.Iteration
		ref, err := o.resolveIndex(queryContext)
		if err != nil {
			return nil, err
		}
		ctx := NewMorselExecutionContext(morsel, o.longOffset, o.refOffset)
		ctx.PositionAt(iteration.InputRow)
		seekValue, err := o.valueExpr.Eval(ctx, queryState)
		if err != nil {
			return nil, err
		}
		cursor, err = queryContext.Store.SeekExact(ref, seekValue)
		if err != nil {
			return nil, err
		}
		queryContext.countSeek()
	case ContinueLoopWith:
		cursor = m.Source
		iteration = m.Iteration
	default:
		protocolViolation("node index seek", msg)
	}
	return drainLeafCursor(cursor, iteration, morsel, o.longOffset, queryContext)
}

func (o *NodeIndexSeekOperator) Dependency(pipeline *Pipeline) Dependency {
	return NoDependency()
}

// resolveIndex is the cache-or-resolve step, single writer on first use.
func (o *NodeIndexSeekOperator) resolveIndex(queryContext *QueryContext) (storage.IndexReference, error) {
	o.refLock.Lock()
	defer o.refLock.Unlock()
	if o.indexRef == nil {
		ref, err := queryContext.Store.ResolveIndex(o.labelID, o.propertyID)
		if err != nil {
			return storage.IndexReference{}, err
		}
		o.indexRef = &ref
	}
	return *o.indexRef, nil
}

// drainLeafCursor writes one row per cursor match starting at the morsel's
// current row count, until the morsel fills or the cursor is exhausted. On
// exhaustion the cursor is closed exactly once and the terminal continuation
// returned; on a full morsel ownership of the open cursor passes to the
// returned continuation.
func drainLeafCursor(cursor storage.Cursor, iteration Iteration, morsel *Morsel, longOffset int,
	queryContext *QueryContext) (Continuation, error) {
	ctx := NewMorselExecutionContext(morsel, longOffset, 0)
	writeRow := morsel.NumRows()
	produced := 0
	for {
		if writeRow == morsel.Capacity() {
			queryContext.countRows(produced)
			queryContext.countSuspended()
			return &ContinueWithSource{Source: cursor, Iteration: iteration}, nil
		}
		if !cursor.Advance() {
			break
		}
		ctx.PositionAt(writeRow)
		ctx.SetLong(0, cursor.NodeID())
		writeRow++
		produced++
		morsel.SetNumRows(writeRow)
	}
	queryContext.countRows(produced)
	if err := cursor.Close(); err != nil {
		return nil, err
	}
	return EndOfLoop{}, nil
}
