package main

import (
	"fmt"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"prospect/internal/config"
	"prospect/internal/directory"
	"prospect/internal/staging"
)

func newDiscoverCommand(cmdCtx *commandContext) *cobra.Command {
	var categoryFilter string

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Run bulk discovery across configured category queries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.stores(func(cfg *config.Config, staged *staging.Store, published *directory.Store) error {
				logger, err := cmdCtx.ensureLogger()
				if err != nil {
					return err
				}

				queries := cfg.Discovery.Queries
				if categoryFilter != "" {
					queries = filterQueries(queries, categoryFilter)
					if len(queries) == 0 {
						return fmt.Errorf("no discovery query configured for category %q", categoryFilter)
					}
				}
				if len(queries) == 0 {
					return fmt.Errorf("no discovery queries configured; add [[discovery.queries]] entries to the config")
				}

				// One run at a time; two concurrent runs would race on the
				// same staged rows.
				lock := flock.New(cfg.RunLockPath())
				locked, err := lock.TryLock()
				if err != nil {
					return fmt.Errorf("acquire run lock: %w", err)
				}
				if !locked {
					return fmt.Errorf("another discovery run is already in progress (lock: %s)", cfg.RunLockPath())
				}
				defer func() { _ = lock.Unlock() }()

				imp, err := cmdCtx.buildImporter(cmd.Context(), cfg, staged, published, logger)
				if err != nil {
					return err
				}

				summary, err := imp.RunBulk(cmd.Context(), queries)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run %s finished in %s\n", summary.RunID, summary.Duration.Round(summaryPrecision))
				fmt.Fprintf(out, "Staged %d new, %d already queued, skipped %d already published\n",
					summary.Staged, summary.AlreadyQueued, summary.Skipped)
				for _, catErr := range summary.Errors {
					fmt.Fprintf(out, "Failed: %s\n", catErr.Error())
				}
				if len(summary.Errors) > 0 {
					return fmt.Errorf("%d failures across %d categories", len(summary.Errors), len(queries))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&categoryFilter, "category", "", "Limit the run to a single category id")
	return cmd
}

func filterQueries(queries []config.DiscoveryQuery, categoryID string) []config.DiscoveryQuery {
	var filtered []config.DiscoveryQuery
	for _, query := range queries {
		if query.CategoryID == categoryID {
			filtered = append(filtered, query)
		}
	}
	return filtered
}
