package exec

// ProjectOperator is a non-leaf operator evaluating an expression per row and
// writing the result into its assigned ref slot.
type ProjectOperator struct {
	longOffset int
	refOffset  int
	projection Expression
}

func NewProjectOperator(longOffset int, refOffset int, projection Expression) *ProjectOperator {
	return &ProjectOperator{longOffset: longOffset, refOffset: refOffset, projection: projection}
}

var _ Operator = &ProjectOperator{}

func (o *ProjectOperator) Operate(msg Message, morsel *Morsel, queryContext *QueryContext,
	queryState *QueryState) (Continuation, error) {
	if _, ok := msg.(StartLoop); !ok {
		protocolViolation("project", msg)
	}
	ctx := NewMorselExecutionContext(morsel, o.longOffset, o.refOffset)
	for row := 0; row < morsel.NumRows(); row++ {
		ctx.PositionAt(row)
		v, err := o.projection.Eval(ctx, queryState)
		if err != nil {
			return nil, err
		}
		ctx.SetRef(0, v)
	}
	return EndOfLoop{}, nil
}

func (o *ProjectOperator) Dependency(pipeline *Pipeline) Dependency {
	return NoDependency()
}
