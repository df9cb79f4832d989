package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"prospect/internal/category"
	"prospect/internal/config"
	"prospect/internal/directory"
	"prospect/internal/imagecheck"
	"prospect/internal/imagesearch"
	"prospect/internal/importer"
	"prospect/internal/logging"
	"prospect/internal/notifications"
	"prospect/internal/provider"
	"prospect/internal/provider/places"
	"prospect/internal/staging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// stores opens both databases and hands them to fn, closing on return.
func (c *commandContext) stores(fn func(cfg *config.Config, staged *staging.Store, published *directory.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	staged, err := staging.Open(cfg)
	if err != nil {
		return fmt.Errorf("open staging store: %w", err)
	}
	defer staged.Close()

	published, err := directory.Open(cfg)
	if err != nil {
		return fmt.Errorf("open directory store: %w", err)
	}
	defer published.Close()

	return fn(cfg, staged, published)
}

// buildAdapter constructs the configured provider adapter wrapped in the
// fail-soft contract.
func (c *commandContext) buildAdapter(cfg *config.Config, logger *slog.Logger) (provider.Adapter, error) {
	switch cfg.Provider.Name {
	case "places":
		client, err := places.New(
			cfg.Provider.APIKey,
			cfg.Provider.BaseURL,
			cfg.Provider.Locale,
			cfg.Provider.Region,
			places.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Provider.TimeoutSeconds) * time.Second}),
		)
		if err != nil {
			return nil, fmt.Errorf("configure places provider: %w", err)
		}
		return provider.NewFailSoft(client, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Name)
	}
}

func (c *commandContext) buildValidator(cfg *config.Config, logger *slog.Logger) *imagecheck.Validator {
	return imagecheck.New(
		cfg.ImageValidation.MinBytes,
		time.Duration(cfg.ImageValidation.TimeoutSeconds)*time.Second,
		cfg.ImageValidation.UserAgent,
		nil,
		logger,
	)
}

// buildImporter assembles the full discovery pipeline from config.
func (c *commandContext) buildImporter(ctx context.Context, cfg *config.Config, staged *staging.Store, published *directory.Store, logger *slog.Logger) (*importer.Importer, error) {
	adapter, err := c.buildAdapter(cfg, logger)
	if err != nil {
		return nil, err
	}

	var harvester importer.ImageHarvester
	if cfg.ImageSearch.Enabled && cfg.ImageSearch.BaseURL != "" {
		harvester = imagesearch.New(
			cfg.ImageSearch.BaseURL,
			cfg.ImageSearch.APIKey,
			cfg.ImageValidation.UserAgent,
			&http.Client{Timeout: time.Duration(cfg.ImageSearch.TimeoutSeconds) * time.Second},
			logger,
		)
	}

	matcher, err := c.buildMatcher(ctx, cfg, published)
	if err != nil {
		return nil, err
	}

	return importer.New(importer.Deps{
		Adapter:       adapter,
		Harvester:     harvester,
		Validator:     c.buildValidator(cfg, logger),
		Matcher:       matcher,
		Staged:        staged,
		Published:     published,
		Notifier:      notifications.NewService(cfg),
		Logger:        logger,
		DefaultAreaID: cfg.Discovery.DefaultAreaID,
		MaxImages:     cfg.ImageSearch.MaxResults,
	})
}

// buildMatcher combines the directory's token mappings with the external
// keyword rules file.
func (c *commandContext) buildMatcher(ctx context.Context, cfg *config.Config, published *directory.Store) (*category.Matcher, error) {
	mappings, err := published.CategoryMappings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load category mappings: %w", err)
	}
	rules, err := category.LoadRules(cfg.Categories.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("load category rules: %w", err)
	}
	return category.NewMatcher(mappings, rules), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
