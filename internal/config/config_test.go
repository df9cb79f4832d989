package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"prospect/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected resolved path %q, got %q (exists=%v)", path, resolved, exists)
	}
	if cfg.Provider.BaseURL == "" || cfg.Provider.TimeoutSeconds <= 0 {
		t.Fatalf("provider defaults not applied: %+v", cfg.Provider)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("logging defaults not applied: %+v", cfg.Logging)
	}
	if cfg.ImageValidation.MinBytes <= 0 || cfg.ImageValidation.UserAgent == "" {
		t.Fatalf("image validation defaults not applied: %+v", cfg.ImageValidation)
	}
}

func TestLoadRejectsBadLogFormat(t *testing.T) {
	path := writeConfig(t, "[logging]\nformat = \"xml\"\n")
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestLoadDropsBlankDiscoveryQueries(t *testing.T) {
	path := writeConfig(t, `
[[discovery.queries]]
category_id = "cat-1"
text = "restaurants in Cairo"

[[discovery.queries]]
category_id = ""
text = "orphan query"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Discovery.Queries) != 1 {
		t.Fatalf("expected one query, got %d", len(cfg.Discovery.Queries))
	}
	if cfg.Discovery.Queries[0].CategoryID != "cat-1" {
		t.Fatalf("unexpected query: %+v", cfg.Discovery.Queries[0])
	}
}

func TestLoadRejectsConflictingQueries(t *testing.T) {
	path := writeConfig(t, `
[[discovery.queries]]
category_id = "cat-1"
text = "restaurants in Cairo"

[[discovery.queries]]
category_id = "cat-1"
text = "cafes in Cairo"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for conflicting category queries")
	}
}

func TestEnvOverridesProviderKey(t *testing.T) {
	t.Setenv("PROSPECT_PROVIDER_API_KEY", "env-key")
	path := writeConfig(t, "[provider]\napi_key = \"file-key\"\n")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider.APIKey != "env-key" {
		t.Fatalf("expected env override, got %q", cfg.Provider.APIKey)
	}
}

func TestDBPathsUnderDataDir(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, "[paths]\ndata_dir = \""+dir+"\"\n")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if filepath.Dir(cfg.StagingDBPath()) != dir || filepath.Dir(cfg.DirectoryDBPath()) != dir {
		t.Fatalf("expected stores under %s, got %s and %s", dir, cfg.StagingDBPath(), cfg.DirectoryDBPath())
	}
}
