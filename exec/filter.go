package exec

import (
	"github.com/velograph/velograph/errors"
	"github.com/velograph/velograph/values"
)

// FilterOperator is a non-leaf operator keeping only the rows for which a
// predicate evaluates to true, compacting the morsel in place. It owns no
// cursor and never suspends.
type FilterOperator struct {
	longOffset int
	refOffset  int
	predicate  Expression
}

func NewFilterOperator(longOffset int, refOffset int, predicate Expression) *FilterOperator {
	return &FilterOperator{longOffset: longOffset, refOffset: refOffset, predicate: predicate}
}

var _ Operator = &FilterOperator{}

func (o *FilterOperator) Operate(msg Message, morsel *Morsel, queryContext *QueryContext,
	queryState *QueryState) (Continuation, error) {
	if _, ok := msg.(StartLoop); !ok {
		protocolViolation("filter", msg)
	}
	ctx := NewMorselExecutionContext(morsel, o.longOffset, o.refOffset)
	writeRow := 0
	for row := 0; row < morsel.NumRows(); row++ {
		ctx.PositionAt(row)
		v, err := o.predicate.Eval(ctx, queryState)
		if err != nil {
			return nil, err
		}
		keep, err := asPredicateResult(v)
		if err != nil {
			return nil, err
		}
		if keep {
			morsel.CopyRow(row, writeRow)
			writeRow++
		}
	}
	morsel.SetNumRows(writeRow)
	return EndOfLoop{}, nil
}

func (o *FilterOperator) Dependency(pipeline *Pipeline) Dependency {
	return NoDependency()
}

func asPredicateResult(v values.Value) (bool, error) {
	switch val := v.(type) {
	case values.BoolValue:
		return bool(val), nil
	case values.NullValue:
		return false, nil
	default:
		return false, errors.NewEvaluationError("predicate did not evaluate to a boolean, got " + v.Kind().String())
	}
}
