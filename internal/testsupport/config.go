package testsupport

import (
	"path/filepath"
	"testing"

	"darkroom/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with a unique temp download directory
// per test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.API.APIKey = "test-key"
	cfg.Download.Dir = filepath.Join(t.TempDir(), "edited")
	cfg.Upload.RetryAttempts = 1
	cfg.Download.RetryAttempts = 1
	cfg.Polling.EditIntervalSeconds = 1
	cfg.Polling.ExportIntervalSeconds = 1

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithMaxConcurrent caps the transfer worker pools.
func WithMaxConcurrent(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Upload.MaxConcurrent = n
		cfg.Download.MaxConcurrent = n
	}
}
