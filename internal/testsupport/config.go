package testsupport

import (
	"path/filepath"
	"testing"

	"prospect/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Provider.APIKey = "test"
	cfg.Notifications.NtfyTopic = ""

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithProviderKey sets the provider API key on the test config.
func WithProviderKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Provider.APIKey = key
	}
}

// WithDiscoveryQueries seeds bulk-run queries on the test config.
func WithDiscoveryQueries(queries ...config.DiscoveryQuery) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Discovery.Queries = queries
	}
}
