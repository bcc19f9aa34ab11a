package conf

import (
	"runtime"

	"github.com/velograph/velograph/errors"
	vlog "github.com/velograph/velograph/log"
)

const (
	DefaultMorselSize = 1024

	StoreTypeMemory = "memory"
	StoreTypePebble = "pebble"
)

type Config struct {
	// MorselSize is the row capacity of each morsel handed to workers.
	MorselSize int `json:"morsel_size,omitempty" help:"Row capacity of each morsel" default:"1024"`

	// WorkerCount is the number of workers pulling pipeline work items.
	// Zero means one worker per CPU.
	WorkerCount int `json:"worker_count,omitempty" help:"Number of executor workers, 0 means one per CPU"`

	StoreType string `json:"store_type,omitempty" help:"Index store backend" enum:"memory,pebble" default:"memory"`

	// DataDir holds the pebble store, required when StoreType is pebble.
	DataDir string `json:"data_dir,omitempty" help:"Data directory for the pebble store"`

	EnableMetrics         bool   `json:"enable_metrics,omitempty" help:"Expose prometheus metrics over HTTP"`
	MetricsHTTPListenAddr string `json:"metrics_http_listen_addr,omitempty" help:"Listen address of the metrics HTTP endpoint" default:"localhost:2112"`

	Log vlog.Config `json:"log,omitempty" embed:"" prefix:"log-"`
}

func NewDefaultConfig() Config {
	return Config{
		MorselSize: DefaultMorselSize,
		StoreType:  StoreTypeMemory,
	}
}

func (c *Config) Validate() error {
	if c.MorselSize < 1 {
		return errors.NewInvalidConfigurationError("MorselSize must be >= 1")
	}
	if c.WorkerCount < 0 {
		return errors.NewInvalidConfigurationError("WorkerCount must be >= 0")
	}
	switch c.StoreType {
	case StoreTypeMemory:
	case StoreTypePebble:
		if c.DataDir == "" {
			return errors.NewInvalidConfigurationError("DataDir must be specified for the pebble store")
		}
	default:
		return errors.NewInvalidConfigurationError("StoreType must be memory or pebble")
	}
	if c.EnableMetrics && c.MetricsHTTPListenAddr == "" {
		return errors.NewInvalidConfigurationError("MetricsHTTPListenAddr must be specified when metrics are enabled")
	}
	return nil
}

// Workers resolves WorkerCount to the effective worker pool size.
func (c *Config) Workers() int {
	if c.WorkerCount > 0 {
		return c.WorkerCount
	}
	return runtime.NumCPU()
}
