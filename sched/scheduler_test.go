package sched

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/velograph/velograph/errors"
	"github.com/velograph/velograph/exec"
	"github.com/velograph/velograph/expr"
	"github.com/velograph/velograph/metrics"
	"github.com/velograph/velograph/storage"
	"github.com/velograph/velograph/values"
)

const (
	testLabelID    = 1
	testPropertyID = 2
)

func setupStore(t *testing.T, nodeIDs []int64) *storage.CountingStore {
	t.Helper()
	store := storage.NewCountingStore()
	_, err := store.CreateIndex(testLabelID, testPropertyID)
	require.NoError(t, err)
	for _, id := range nodeIDs {
		require.NoError(t, store.AddEntry(testLabelID, testPropertyID, values.StringValue("bob"), id))
	}
	return store
}

func seekPipeline(id int) *exec.Pipeline {
	seek := exec.NewNodeIndexSeekOperator(0, 0, testLabelID, testPropertyID,
		expr.NewConstant(values.StringValue("bob")))
	return exec.NewPipeline(id, 2, 1, 0, seek)
}

type collectingSink struct {
	lock  sync.Mutex
	order []int
	ids   []int64
}

func (s *collectingSink) sink(p *exec.Pipeline, m *exec.Morsel) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	ctx := exec.NewMorselExecutionContext(m, 0, 0)
	for row := 0; row < m.NumRows(); row++ {
		ctx.PositionAt(row)
		s.ids = append(s.ids, ctx.GetLong(0))
	}
	s.order = append(s.order, p.ID())
	return nil
}

func TestRunPlanDrainsWithSuspensions(t *testing.T) {
	store := setupStore(t, []int64{1, 2, 3, 4, 5})
	qctx := exec.NewQueryContext(store)
	mServer, err := metrics.NewServer(metrics.NewFakeFactory())
	require.NoError(t, err)
	qctx.Metrics = mServer

	plan, err := exec.NewPlan(seekPipeline(0))
	require.NoError(t, err)

	s := NewScheduler(4, zap.NewNop())
	sink := &collectingSink{}
	require.NoError(t, s.RunPlan(context.Background(), plan, qctx, exec.NewQueryState(), sink.sink))

	// resumptions of one cursor preserve index order
	require.Equal(t, []int64{1, 2, 3, 4, 5}, sink.ids)
	require.Equal(t, int32(1), store.Opens.Load())
	require.Equal(t, int32(1), store.Closes.Load())
	require.Equal(t, float64(2), metrics.Count(mServer.ContinuationsSuspended))
	require.Equal(t, float64(2), metrics.Count(mServer.ContinuationsResumed))
	require.Equal(t, float64(5), metrics.Count(mServer.RowsProduced))
}

type dependentLeaf struct {
	*exec.NodeByLabelScanOperator
	upstream *exec.Pipeline
}

func (o *dependentLeaf) Dependency(pipeline *exec.Pipeline) exec.Dependency {
	return exec.FullDependency(o.upstream)
}

func TestRunPlanHonorsDependencies(t *testing.T) {
	store := setupStore(t, []int64{1, 2, 3, 4, 5})
	require.NoError(t, store.AddNode(9, 100))
	require.NoError(t, store.AddNode(9, 101))

	producer := seekPipeline(0)
	consumer := exec.NewPipeline(1, 2, 1, 0, &dependentLeaf{
		NodeByLabelScanOperator: exec.NewNodeByLabelScanOperator(0, 9),
		upstream:                producer,
	})
	plan, err := exec.NewPlan(producer, consumer)
	require.NoError(t, err)

	s := NewScheduler(4, zap.NewNop())
	sink := &collectingSink{}
	require.NoError(t, s.RunPlan(context.Background(), plan, exec.NewQueryContext(store), exec.NewQueryState(), sink.sink))

	// every morsel of the producer lands before any of the consumer
	lastProducer := -1
	firstConsumer := len(sink.order)
	for i, id := range sink.order {
		if id == 0 && i > lastProducer {
			lastProducer = i
		}
		if id == 1 && i < firstConsumer {
			firstConsumer = i
		}
	}
	require.Less(t, lastProducer, firstConsumer)
	require.Equal(t, []int64{1, 2, 3, 4, 5, 100, 101}, sink.ids)
}

func TestRunPlanAbortDisposesContinuation(t *testing.T) {
	store := setupStore(t, []int64{1, 2, 3, 4, 5})
	plan, err := exec.NewPlan(seekPipeline(0))
	require.NoError(t, err)

	s := NewScheduler(1, zap.NewNop())
	failed := errors.New("sink failed")
	err = s.RunPlan(context.Background(), plan, exec.NewQueryContext(store), exec.NewQueryState(),
		func(p *exec.Pipeline, m *exec.Morsel) error {
			return failed
		})
	require.Error(t, err)
	require.Equal(t, failed, err)

	// the suspended cursor was abandoned, not leaked
	require.Equal(t, store.Opens.Load(), store.Closes.Load())
}

func TestRunPlanCancelledContext(t *testing.T) {
	store := setupStore(t, []int64{1, 2, 3})
	plan, err := exec.NewPlan(seekPipeline(0))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewScheduler(2, zap.NewNop())
	err = s.RunPlan(ctx, plan, exec.NewQueryContext(store), exec.NewQueryState(),
		func(p *exec.Pipeline, m *exec.Morsel) error { return nil })
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled))

	// nothing ran, so nothing was opened
	require.Equal(t, int32(0), store.Opens.Load())
}

func TestRunPlanEvaluationErrorSurfaces(t *testing.T) {
	store := setupStore(t, []int64{1})
	seek := exec.NewNodeIndexSeekOperator(0, 0, testLabelID, testPropertyID, expr.NewParameter("missing"))
	plan, err := exec.NewPlan(exec.NewPipeline(0, 2, 1, 0, seek))
	require.NoError(t, err)

	s := NewScheduler(2, zap.NewNop())
	err = s.RunPlan(context.Background(), plan, exec.NewQueryContext(store), exec.NewQueryState(),
		func(p *exec.Pipeline, m *exec.Morsel) error { return nil })
	require.Error(t, err)
	code, ok := errors.Code(err)
	require.True(t, ok)
	require.Equal(t, errors.ErrorCode(errors.MissingParameter), code)
}
