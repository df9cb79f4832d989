package category

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

//go:embed sample_rules.toml
var sampleRules string

type rulesFile struct {
	Rules []Rule `toml:"rules"`
}

// LoadRules reads the ordered keyword fallback rules from a TOML file. The
// identifiers in the file are deployment-specific, which is why the rules ship
// as data instead of compiled-in tables. A missing file yields an empty rule
// list so deployments without a keyword tier still run.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read category rules: %w", err)
	}

	var file rulesFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse category rules: %w", err)
	}

	rules := make([]Rule, 0, len(file.Rules))
	for i, rule := range file.Rules {
		rule.CategoryID = strings.TrimSpace(rule.CategoryID)
		if rule.CategoryID == "" {
			return nil, fmt.Errorf("category rules: rule %d missing category_id", i+1)
		}
		keywords := rule.Keywords[:0]
		for _, keyword := range rule.Keywords {
			if keyword = strings.TrimSpace(keyword); keyword != "" {
				keywords = append(keywords, keyword)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("category rules: rule %d (%s) has no keywords", i+1, rule.CategoryID)
		}
		rule.Keywords = keywords
		rules = append(rules, rule)
	}
	return rules, nil
}

// CreateSampleRules writes a sample rules file to the specified location.
func CreateSampleRules(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create rules directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleRules), 0o644); err != nil {
		return fmt.Errorf("write sample rules: %w", err)
	}
	return nil
}
