package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProvider()
	c.normalizeImageSearch()
	c.normalizeImageValidation()
	if err := c.normalizeCategories(); err != nil {
		return err
	}
	c.normalizeTranslate()
	c.normalizeDiscovery()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeProvider() {
	c.Provider.Name = strings.ToLower(strings.TrimSpace(c.Provider.Name))
	if c.Provider.Name == "" {
		c.Provider.Name = defaultProviderName
	}
	c.Provider.APIKey = strings.TrimSpace(c.Provider.APIKey)
	c.Provider.BaseURL = strings.TrimRight(strings.TrimSpace(c.Provider.BaseURL), "/")
	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = defaultProviderBaseURL
	}
	c.Provider.Locale = strings.TrimSpace(c.Provider.Locale)
	if c.Provider.Locale == "" {
		c.Provider.Locale = defaultProviderLocale
	}
	c.Provider.Region = strings.TrimSpace(c.Provider.Region)
	if c.Provider.TimeoutSeconds <= 0 {
		c.Provider.TimeoutSeconds = defaultProviderTimeout
	}
}

func (c *Config) normalizeImageSearch() {
	c.ImageSearch.BaseURL = strings.TrimRight(strings.TrimSpace(c.ImageSearch.BaseURL), "/")
	c.ImageSearch.APIKey = strings.TrimSpace(c.ImageSearch.APIKey)
	if c.ImageSearch.MaxResults <= 0 {
		c.ImageSearch.MaxResults = defaultImageSearchResults
	}
	if c.ImageSearch.TimeoutSeconds <= 0 {
		c.ImageSearch.TimeoutSeconds = defaultImageSearchTimeout
	}
	if c.ImageSearch.BaseURL == "" {
		c.ImageSearch.Enabled = false
	}
}

func (c *Config) normalizeImageValidation() {
	if c.ImageValidation.MinBytes <= 0 {
		c.ImageValidation.MinBytes = defaultImageMinBytes
	}
	if c.ImageValidation.TimeoutSeconds <= 0 {
		c.ImageValidation.TimeoutSeconds = defaultImageCheckTimeout
	}
	if strings.TrimSpace(c.ImageValidation.UserAgent) == "" {
		c.ImageValidation.UserAgent = defaultImageCheckUserAgent
	}
}

func (c *Config) normalizeCategories() error {
	var err error
	if strings.TrimSpace(c.Categories.RulesPath) == "" {
		c.Categories.RulesPath = defaultCategoryRulesPath
	}
	if c.Categories.RulesPath, err = expandPath(c.Categories.RulesPath); err != nil {
		return fmt.Errorf("categories.rules_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTranslate() {
	c.Translate.BaseURL = strings.TrimRight(strings.TrimSpace(c.Translate.BaseURL), "/")
	c.Translate.APIKey = strings.TrimSpace(c.Translate.APIKey)
	c.Translate.TargetLanguage = strings.TrimSpace(c.Translate.TargetLanguage)
	if c.Translate.TargetLanguage == "" {
		c.Translate.TargetLanguage = defaultTranslateLanguage
	}
	if c.Translate.TimeoutSeconds <= 0 {
		c.Translate.TimeoutSeconds = defaultTranslateTimeout
	}
	if c.Translate.BaseURL == "" {
		c.Translate.Enabled = false
	}
}

func (c *Config) normalizeDiscovery() {
	c.Discovery.DefaultAreaID = strings.TrimSpace(c.Discovery.DefaultAreaID)
	queries := c.Discovery.Queries[:0]
	for _, q := range c.Discovery.Queries {
		q.CategoryID = strings.TrimSpace(q.CategoryID)
		q.Text = strings.TrimSpace(q.Text)
		if q.CategoryID == "" || q.Text == "" {
			continue
		}
		queries = append(queries, q)
	}
	c.Discovery.Queries = queries
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
