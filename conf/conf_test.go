package conf

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/velograph/velograph/errors"
)

func invalidConfigs() map[string]Config {
	configs := make(map[string]Config)

	cnf := NewDefaultConfig()
	cnf.MorselSize = 0
	configs["zero morsel size"] = cnf

	cnf = NewDefaultConfig()
	cnf.WorkerCount = -1
	configs["negative worker count"] = cnf

	cnf = NewDefaultConfig()
	cnf.StoreType = "rocksdb"
	configs["unknown store type"] = cnf

	cnf = NewDefaultConfig()
	cnf.StoreType = StoreTypePebble
	configs["pebble store without data dir"] = cnf

	cnf = NewDefaultConfig()
	cnf.EnableMetrics = true
	configs["metrics without listen address"] = cnf

	return configs
}

func TestValidate(t *testing.T) {
	cnf := NewDefaultConfig()
	require.NoError(t, cnf.Validate())

	cnf = NewDefaultConfig()
	cnf.StoreType = StoreTypePebble
	cnf.DataDir = "/tmp/velograph"
	require.NoError(t, cnf.Validate())

	for name, invalid := range invalidConfigs() {
		invalid := invalid
		t.Run(name, func(t *testing.T) {
			err := invalid.Validate()
			require.Error(t, err)
			code, ok := errors.Code(err)
			require.True(t, ok)
			require.Equal(t, errors.ErrorCode(errors.InvalidConfiguration), code)
		})
	}
}

func TestWorkers(t *testing.T) {
	cnf := NewDefaultConfig()
	cnf.WorkerCount = 4
	require.Equal(t, 4, cnf.Workers())

	cnf.WorkerCount = 0
	require.True(t, cnf.Workers() >= 1)
}
