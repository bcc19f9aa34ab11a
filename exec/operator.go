package exec

import (
	"github.com/velograph/velograph/metrics"
	"github.com/velograph/velograph/storage"
	"github.com/velograph/velograph/values"
)

// Operator is one pipeline stage. Leaf (source) operators own an external
// cursor and implement the full fresh/open/closed protocol; non-leaf
// operators consume an already-populated morsel under StartLoop and never
// suspend.
//
// Operate runs to completion on the calling thread. Suspension is expressed
// only by the returned continuation, never by blocking.
type Operator interface {
	Operate(msg Message, morsel *Morsel, queryContext *QueryContext, queryState *QueryState) (Continuation, error)

	// Dependency is evaluated once at pipeline build time and determines
	// scheduling order relative to other pipelines.
	Dependency(pipeline *Pipeline) Dependency
}

// Expression produces a runtime value from the context's current row. It is
// the evaluation capability consumed, not implemented, by operators; the
// expr package provides the implementations.
type Expression interface {
	Eval(ctx *MorselExecutionContext, state *QueryState) (values.Value, error)
}

// QueryContext carries the per-query capabilities operators consume.
type QueryContext struct {
	Store   storage.IndexStore
	Metrics *metrics.Server
}

func NewQueryContext(store storage.IndexStore) *QueryContext {
	return &QueryContext{Store: store}
}

func (q *QueryContext) countSeek() {
	if q.Metrics != nil {
		q.Metrics.IndexSeeks.Inc()
	}
}

func (q *QueryContext) countRows(n int) {
	if q.Metrics != nil {
		q.Metrics.RowsProduced.Add(float64(n))
	}
}

func (q *QueryContext) countSuspended() {
	if q.Metrics != nil {
		q.Metrics.ContinuationsSuspended.Inc()
	}
}

// QueryState is the per-execution runtime state visible to expressions.
type QueryState struct {
	Params map[string]values.Value
}

func NewQueryState() *QueryState {
	return &QueryState{Params: make(map[string]values.Value)}
}
