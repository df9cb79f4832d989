package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Provider contains configuration for the place-search provider API.
type Provider struct {
	Name           string `toml:"name"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Locale         string `toml:"locale"`
	Region         string `toml:"region"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ImageSearch contains configuration for the auxiliary image-search backend.
type ImageSearch struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	MaxResults     int    `toml:"max_results"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ImageValidation contains thresholds for the image URL validator.
type ImageValidation struct {
	MinBytes       int    `toml:"min_bytes"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent"`
}

// Categories points at the externally maintained keyword fallback rules.
type Categories struct {
	RulesPath string `toml:"rules_path"`
}

// Translate contains configuration for the slug transliteration service.
type Translate struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	TargetLanguage string `toml:"target_language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// DiscoveryQuery pairs an internal category with the search text used to
// discover listings for it during a bulk run.
type DiscoveryQuery struct {
	CategoryID string `toml:"category_id"`
	Text       string `toml:"text"`
}

// Discovery configures bulk discovery runs.
type Discovery struct {
	DefaultAreaID string           `toml:"default_area_id"`
	Queries       []DiscoveryQuery `toml:"queries"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Runs           bool   `toml:"runs"`
	Approvals      bool   `toml:"approvals"`
	Sweeps         bool   `toml:"sweeps"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Prospect.
//
// Sections by subsystem:
//   - Paths: data and log directories
//   - Provider: place-search API connection
//   - ImageSearch: auxiliary image enrichment backend
//   - ImageValidation: URL validator thresholds
//   - Categories: keyword fallback rules file
//   - Translate: slug transliteration service
//   - Discovery: bulk-run category queries
//   - Notifications: ntfy push settings
//   - Logging: log format and level
type Config struct {
	Paths           Paths           `toml:"paths"`
	Provider        Provider        `toml:"provider"`
	ImageSearch     ImageSearch     `toml:"image_search"`
	ImageValidation ImageValidation `toml:"image_validation"`
	Categories      Categories      `toml:"categories"`
	Translate       Translate       `toml:"translate"`
	Discovery       Discovery       `toml:"discovery"`
	Notifications   Notifications   `toml:"notifications"`
	Logging         Logging         `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/prospect/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. Provider and image
// search API keys may also arrive via PROSPECT_PROVIDER_API_KEY and
// PROSPECT_IMAGE_API_KEY so secrets can stay out of the file.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func (c *Config) applyEnvOverrides() {
	if key := strings.TrimSpace(os.Getenv("PROSPECT_PROVIDER_API_KEY")); key != "" {
		c.Provider.APIKey = key
	}
	if key := strings.TrimSpace(os.Getenv("PROSPECT_IMAGE_API_KEY")); key != "" {
		c.ImageSearch.APIKey = key
	}
	if key := strings.TrimSpace(os.Getenv("PROSPECT_TRANSLATE_API_KEY")); key != "" {
		c.Translate.APIKey = key
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("prospect.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StagingDBPath returns the staging store database location.
func (c *Config) StagingDBPath() string {
	return filepath.Join(c.Paths.DataDir, "staging.db")
}

// DirectoryDBPath returns the production directory database location.
func (c *Config) DirectoryDBPath() string {
	return filepath.Join(c.Paths.DataDir, "directory.db")
}

// RunLockPath returns the file lock taken by bulk discovery runs.
func (c *Config) RunLockPath() string {
	return filepath.Join(c.Paths.DataDir, "discover.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
