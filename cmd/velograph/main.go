package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
	log "github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/velograph/velograph/conf"
	"github.com/velograph/velograph/exec"
	"github.com/velograph/velograph/expr"
	"github.com/velograph/velograph/metrics"
	"github.com/velograph/velograph/metrics/prometheus"
	"github.com/velograph/velograph/sched"
	"github.com/velograph/velograph/storage"
	"github.com/velograph/velograph/values"
)

// velograph seek runs one index-backed equality seek against a store and
// prints the matching node ids. It is the operational entry point for
// inspecting an index without embedding the runtime.
var arguments struct {
	conf.Config

	Label    int    `help:"Label id to seek within." required:""`
	Property int    `help:"Property id of the index." required:""`
	Value    string `help:"Value to seek (string form)."`
}

func main() {
	kctx := kong.Parse(&arguments)
	kctx.FatalIfErrorf(run())
}

func run() error {
	cfg := arguments.Config
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Log.Configure(); err != nil {
		return err
	}

	var store storage.IndexStore
	var err error
	switch cfg.StoreType {
	case conf.StoreTypePebble:
		store, err = storage.OpenPebbleStore(cfg.DataDir)
		if err != nil {
			return err
		}
	default:
		store = storage.NewMemStore()
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Errorf("failed to close store %v", err)
		}
	}()

	queryContext := exec.NewQueryContext(store)
	if cfg.EnableMetrics {
		factory := prometheus.NewFactory(cfg.MetricsHTTPListenAddr)
		if err := factory.Start(); err != nil {
			return err
		}
		defer func() {
			if err := factory.Stop(); err != nil {
				log.Errorf("failed to stop metrics %v", err)
			}
		}()
		server, err := metrics.NewServer(factory)
		if err != nil {
			return err
		}
		queryContext.Metrics = server
	}

	seek := exec.NewNodeIndexSeekOperator(0, 0, arguments.Label, arguments.Property,
		expr.NewConstant(values.StringValue(arguments.Value)))
	pipeline := exec.NewPipeline(0, cfg.MorselSize, 1, 0, seek)
	plan, err := exec.NewPlan(pipeline)
	if err != nil {
		return err
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() {
		_ = zapLogger.Sync()
	}()
	scheduler := sched.NewScheduler(cfg.Workers(), zapLogger)
	return scheduler.RunPlan(context.Background(), plan, queryContext, exec.NewQueryState(),
		func(p *exec.Pipeline, m *exec.Morsel) error {
			ctx := exec.NewMorselExecutionContext(m, 0, 0)
			for row := 0; row < m.NumRows(); row++ {
				ctx.PositionAt(row)
				fmt.Println(ctx.GetLong(0))
			}
			return nil
		})
}
