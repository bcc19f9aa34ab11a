package sched

import (
	"context"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/velograph/velograph/errors"
	"github.com/velograph/velograph/exec"
)

// Sink receives each morsel a pipeline has fully processed.
type Sink func(pipeline *exec.Pipeline, morsel *exec.Morsel) error

// Scheduler drives a plan's pipelines with a pool of workers. Workers pull
// (pipeline, morsel, message) items from a queue and run one operator
// invocation to completion; a suspension comes back as a continuation which
// is re-queued as a ContinueLoopWith item, so any worker can resume the scan.
// A cursor is owned by exactly one queued item or running invocation at a
// time, no locking around cursors is needed.
type Scheduler struct {
	workers int
	logger  *zap.Logger
}

func NewScheduler(workers int, logger *zap.Logger) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	return &Scheduler{workers: workers, logger: logger}
}

type workItem struct {
	pipeline *exec.Pipeline
	morsel   *exec.Morsel
	message  exec.Message
}

type run struct {
	sched        *Scheduler
	ctx          context.Context
	queryContext *exec.QueryContext
	queryState   *exec.QueryState
	sink         Sink

	items   chan *workItem
	itemsWG sync.WaitGroup

	aborted atomic.Bool
	errLock sync.Mutex
	runErr  error

	depLock    sync.Mutex
	waitingOn  map[*exec.Pipeline]int
	dependents map[*exec.Pipeline][]*exec.Pipeline
}

// RunPlan executes every pipeline of the plan and blocks until the plan has
// drained, an operator failed, or ctx was cancelled. Pipelines with a full
// dependency are not started before their upstream has drained. On abort,
// every in-flight continuation is disposed so no cursor leaks.
func (s *Scheduler) RunPlan(ctx context.Context, plan *exec.Plan, queryContext *exec.QueryContext,
	queryState *exec.QueryState, sink Sink) error {
	pipelines := plan.Pipelines()
	r := &run{
		sched:        s,
		ctx:          ctx,
		queryContext: queryContext,
		queryState:   queryState,
		sink:         sink,
		// one leaf loop chain per pipeline, so at most one outstanding item
		// per pipeline at any time
		items:      make(chan *workItem, len(pipelines)),
		waitingOn:  make(map[*exec.Pipeline]int),
		dependents: make(map[*exec.Pipeline][]*exec.Pipeline),
	}
	for _, p := range pipelines {
		ups := p.Upstreams()
		r.waitingOn[p] = len(ups)
		for _, up := range ups {
			r.dependents[up] = append(r.dependents[up], p)
		}
	}

	var workersWG sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		workersWG.Add(1)
		go func() {
			defer workersWG.Done()
			r.workerLoop()
		}()
	}

	for _, p := range pipelines {
		if r.waitingOn[p] == 0 {
			r.enqueueStart(p)
		}
	}

	r.itemsWG.Wait()
	close(r.items)
	workersWG.Wait()

	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}
	r.errLock.Lock()
	defer r.errLock.Unlock()
	return r.runErr
}

func (r *run) workerLoop() {
	for item := range r.items {
		r.process(item)
		r.itemsWG.Done()
	}
}

func (r *run) process(item *workItem) {
	if r.aborted.Load() || r.ctx.Err() != nil {
		r.disposeItem(item)
		return
	}
	if _, resumed := item.message.(exec.ContinueLoopWith); resumed {
		r.countResumed()
	}
	cont, err := item.pipeline.Leaf().Operate(item.message, item.morsel, r.queryContext, r.queryState)
	if err != nil {
		r.abort(err)
		return
	}
	if err := item.pipeline.RunDownstream(item.morsel, r.queryContext, r.queryState); err != nil {
		r.disposeContinuation(cont)
		r.abort(err)
		return
	}
	if err := r.sink(item.pipeline, item.morsel); err != nil {
		r.disposeContinuation(cont)
		r.abort(err)
		return
	}
	r.countMorsel()
	if cont.HasMore() {
		source, ok := cont.(*exec.ContinueWithSource)
		if !ok {
			panic(errors.NewProtocolViolationError("suspending continuation of unknown type"))
		}
		r.enqueue(&workItem{
			pipeline: item.pipeline,
			morsel:   item.pipeline.NewMorsel(),
			message:  exec.ContinueLoopWith{Source: source.Source, Iteration: source.Iteration},
		})
		return
	}
	r.pipelineDrained(item.pipeline)
}

func (r *run) enqueueStart(p *exec.Pipeline) {
	r.enqueue(&workItem{
		pipeline: p,
		morsel:   p.NewMorsel(),
		message:  exec.StartLeafLoop{},
	})
}

func (r *run) enqueue(item *workItem) {
	r.itemsWG.Add(1)
	r.items <- item
}

func (r *run) pipelineDrained(p *exec.Pipeline) {
	r.depLock.Lock()
	var ready []*exec.Pipeline
	for _, dep := range r.dependents[p] {
		r.waitingOn[dep]--
		if r.waitingOn[dep] == 0 {
			ready = append(ready, dep)
		}
	}
	r.depLock.Unlock()
	for _, dep := range ready {
		r.enqueueStart(dep)
	}
}

// disposeItem releases the cursor of a queued-but-never-run resumption. This
// is the abandonment path for aborted and cancelled plans.
func (r *run) disposeItem(item *workItem) {
	msg, ok := item.message.(exec.ContinueLoopWith)
	if !ok {
		return
	}
	r.countAbandoned()
	if err := msg.Source.Close(); err != nil {
		r.sched.logger.Error("Failed to close abandoned cursor", zap.Error(err))
	}
}

func (r *run) disposeContinuation(cont exec.Continuation) {
	if !cont.HasMore() {
		return
	}
	r.countAbandoned()
	if err := cont.Dispose(); err != nil {
		r.sched.logger.Error("Failed to dispose continuation", zap.Error(err))
	}
}

func (r *run) abort(err error) {
	r.errLock.Lock()
	if r.runErr == nil {
		r.runErr = err
	}
	r.errLock.Unlock()
	r.aborted.Store(true)
	r.sched.logger.Error("Aborting plan execution", zap.Error(err))
}

func (r *run) countMorsel() {
	if r.queryContext.Metrics != nil {
		r.queryContext.Metrics.MorselsProcessed.Inc()
	}
}

func (r *run) countResumed() {
	if r.queryContext.Metrics != nil {
		r.queryContext.Metrics.ContinuationsResumed.Inc()
	}
}

func (r *run) countAbandoned() {
	if r.queryContext.Metrics != nil {
		r.queryContext.Metrics.ContinuationsAbandoned.Inc()
	}
}
