package exec

import (
	"github.com/velograph/velograph/storage"
)

// NodeByLabelScanOperator is a leaf operator producing every node id carrying
// a label, in node id order. It exercises the same suspend/resume protocol as
// the index seek but needs no expression and no index resolution.
type NodeByLabelScanOperator struct {
	longOffset int
	labelID    int
}

func NewNodeByLabelScanOperator(longOffset int, labelID int) *NodeByLabelScanOperator {
	return &NodeByLabelScanOperator{longOffset: longOffset, labelID: labelID}
}

var _ Operator = &NodeByLabelScanOperator{}

func (o *NodeByLabelScanOperator) Operate(msg Message, morsel *Morsel, queryContext *QueryContext,
	queryState *QueryState) (Continuation, error) {
	var cursor storage.Cursor
	var iteration Iteration
	switch m := msg.(type) {
	case StartLeafLoop:
		iteration = m.Iteration
		var err error
		cursor, err = queryContext.Store.ScanLabel(o.labelID)
		if err != nil {
			return nil, err
		}
	case ContinueLoopWith:
		cursor = m.Source
		iteration = m.Iteration
	default:
		protocolViolation("node by label scan", msg)
	}
	return drainLeafCursor(cursor, iteration, morsel, o.longOffset, queryContext)
}

func (o *NodeByLabelScanOperator) Dependency(pipeline *Pipeline) Dependency {
	return NoDependency()
}
