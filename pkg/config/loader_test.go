package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatchkit/pkg/config"
)

type pushConfig struct {
	URL     string        `env:"TEST_PUSH_URL,required"`
	Timeout time.Duration `env:"TEST_PUSH_TIMEOUT" envDefault:"5s"`
}

type workerConfig struct {
	Workers int `env:"TEST_DISPATCH_WORKERS" envDefault:"16"`
}

type fileConfig struct {
	Secret string `env:"TEST_FILE_SECRET"`
}

func TestLoad(t *testing.T) {
	t.Run("parses and caches", func(t *testing.T) {
		config.Reset()
		t.Setenv("TEST_PUSH_URL", "https://push.example")
		t.Setenv("TEST_PUSH_TIMEOUT", "2s")

		cfg, err := config.Load[pushConfig]()
		require.NoError(t, err)
		assert.Equal(t, "https://push.example", cfg.URL)
		assert.Equal(t, 2*time.Second, cfg.Timeout)

		t.Setenv("TEST_PUSH_URL", "https://other.example")
		cached, err := config.Load[pushConfig]()
		require.NoError(t, err)
		assert.Equal(t, cfg, cached)
	})

	t.Run("defaults", func(t *testing.T) {
		config.Reset()
		cfg, err := config.Load[workerConfig]()
		require.NoError(t, err)
		assert.Equal(t, 16, cfg.Workers)
	})

	t.Run("missing required", func(t *testing.T) {
		config.Reset()
		os.Unsetenv("TEST_PUSH_URL")

		_, err := config.Load[pushConfig]()
		assert.ErrorIs(t, err, config.ErrParsingConfig)
		assert.Panics(t, func() { config.MustLoad[pushConfig]() })
	})

	t.Run("env file", func(t *testing.T) {
		config.Reset()
		path := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(path, []byte("TEST_FILE_SECRET=from-file\n"), 0o600))
		t.Cleanup(func() { os.Unsetenv("TEST_FILE_SECRET") })

		cfg, err := config.Load[fileConfig](path)
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.Secret)
	})

	t.Run("missing env file", func(t *testing.T) {
		config.Reset()
		_, err := config.Load[fileConfig](filepath.Join(t.TempDir(), "nope.env"))
		assert.ErrorIs(t, err, config.ErrEnvFile)
	})
}
