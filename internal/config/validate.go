package config

import (
	"fmt"
	"strings"
)

var validLogFormats = map[string]struct{}{
	"console": {},
	"json":    {},
}

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate checks configuration invariants that normalize cannot repair.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return fmt.Errorf("paths.data_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return fmt.Errorf("paths.log_dir must not be empty")
	}
	if _, ok := validLogFormats[c.Logging.Format]; !ok {
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	if _, ok := validLogLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	seen := make(map[string]string, len(c.Discovery.Queries))
	for _, q := range c.Discovery.Queries {
		if prev, ok := seen[q.CategoryID]; ok && prev != q.Text {
			return fmt.Errorf("discovery.queries: category %q listed with conflicting queries", q.CategoryID)
		}
		seen[q.CategoryID] = q.Text
	}
	return nil
}
