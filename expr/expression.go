package expr

import (
	"github.com/velograph/velograph/errors"
	"github.com/velograph/velograph/exec"
	"github.com/velograph/velograph/values"
)

// Constant always evaluates to the same value.
type Constant struct {
	value values.Value
}

func NewConstant(value values.Value) *Constant {
	return &Constant{value: value}
}

func (e *Constant) Eval(ctx *exec.MorselExecutionContext, state *exec.QueryState) (values.Value, error) {
	return e.value, nil
}

// RefSlot reads the current row's ref slot at the given index. Supports
// correlated seeks where the probe value was bound by an earlier operator.
type RefSlot struct {
	slot int
}

func NewRefSlot(slot int) *RefSlot {
	return &RefSlot{slot: slot}
}

func (e *RefSlot) Eval(ctx *exec.MorselExecutionContext, state *exec.QueryState) (values.Value, error) {
	v := ctx.GetRef(e.slot)
	if v == nil {
		return values.NullValue{}, nil
	}
	return v, nil
}

// LongSlot reads the current row's long slot at the given index as an
// integer value.
type LongSlot struct {
	slot int
}

func NewLongSlot(slot int) *LongSlot {
	return &LongSlot{slot: slot}
}

func (e *LongSlot) Eval(ctx *exec.MorselExecutionContext, state *exec.QueryState) (values.Value, error) {
	return values.Int64Value(ctx.GetLong(e.slot)), nil
}

// Parameter looks up a named query parameter. A missing parameter is a
// query-level evaluation failure, not a bug.
type Parameter struct {
	name string
}

func NewParameter(name string) *Parameter {
	return &Parameter{name: name}
}

func (e *Parameter) Eval(ctx *exec.MorselExecutionContext, state *exec.QueryState) (values.Value, error) {
	v, ok := state.Params[e.name]
	if !ok {
		return nil, errors.NewMissingParameterError(e.name)
	}
	return v, nil
}

// Equals evaluates both operands and compares them under the value domain's
// equality.
type Equals struct {
	left  exec.Expression
	right exec.Expression
}

func NewEquals(left exec.Expression, right exec.Expression) *Equals {
	return &Equals{left: left, right: right}
}

func (e *Equals) Eval(ctx *exec.MorselExecutionContext, state *exec.QueryState) (values.Value, error) {
	l, err := e.left.Eval(ctx, state)
	if err != nil {
		return nil, err
	}
	r, err := e.right.Eval(ctx, state)
	if err != nil {
		return nil, err
	}
	if l.Kind() == values.KindNull || r.Kind() == values.KindNull {
		return values.NullValue{}, nil
	}
	return values.BoolValue(values.Equal(l, r)), nil
}

// LessThan evaluates both operands and orders them under the value domain's
// total order.
type LessThan struct {
	left  exec.Expression
	right exec.Expression
}

func NewLessThan(left exec.Expression, right exec.Expression) *LessThan {
	return &LessThan{left: left, right: right}
}

func (e *LessThan) Eval(ctx *exec.MorselExecutionContext, state *exec.QueryState) (values.Value, error) {
	l, err := e.left.Eval(ctx, state)
	if err != nil {
		return nil, err
	}
	r, err := e.right.Eval(ctx, state)
	if err != nil {
		return nil, err
	}
	if l.Kind() == values.KindNull || r.Kind() == values.KindNull {
		return values.NullValue{}, nil
	}
	return values.BoolValue(values.Compare(l, r) < 0), nil
}

var _ exec.Expression = &Constant{}
var _ exec.Expression = &RefSlot{}
var _ exec.Expression = &LongSlot{}
var _ exec.Expression = &Parameter{}
var _ exec.Expression = &Equals{}
var _ exec.Expression = &LessThan{}
