package testsupport

import (
	"testing"

	"prospect/internal/config"
	"prospect/internal/directory"
	"prospect/internal/staging"
)

// MustOpenStaging opens the staging store for a test config and registers
// cleanup.
func MustOpenStaging(t testing.TB, cfg *config.Config) *staging.Store {
	t.Helper()
	store, err := staging.Open(cfg)
	if err != nil {
		t.Fatalf("open staging store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// MustOpenDirectory opens the directory store for a test config and
// registers cleanup.
func MustOpenDirectory(t testing.TB, cfg *config.Config) *directory.Store {
	t.Helper()
	store, err := directory.Open(cfg)
	if err != nil {
		t.Fatalf("open directory store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
