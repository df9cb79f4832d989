package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"prospect/internal/config"
	"prospect/internal/directory"
	"prospect/internal/imagecheck"
	"prospect/internal/notifications"
	"prospect/internal/staging"
)

func newSweepCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		stagingOnly   bool
		directoryOnly bool
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Revalidate stored image URLs and drop dead ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			if stagingOnly && directoryOnly {
				return fmt.Errorf("--staging and --directory are mutually exclusive")
			}
			return cmdCtx.stores(func(cfg *config.Config, staged *staging.Store, published *directory.Store) error {
				logger, err := cmdCtx.ensureLogger()
				if err != nil {
					return err
				}
				validator := cmdCtx.buildValidator(cfg, logger)

				var total imagecheck.SweepSummary
				if !directoryOnly {
					summary, err := validator.Sweep(cmd.Context(), staged)
					if err != nil {
						return fmt.Errorf("sweep staging: %w", err)
					}
					total.Add(summary)
				}
				if !stagingOnly {
					summary, err := validator.Sweep(cmd.Context(), published)
					if err != nil {
						return fmt.Errorf("sweep directory: %w", err)
					}
					total.Add(summary)
				}

				notifier := notifications.NewService(cfg)
				if notifyErr := notifier.NotifySweepCompleted(cmd.Context(), total.Records, total.Dropped); notifyErr != nil {
					logger.Warn("sweep notification failed", "error", notifyErr)
				}

				fmt.Fprintf(cmd.OutOrStdout(),
					"Swept %d records: dropped %d dead image URLs, updated %d records\n",
					total.Records, total.Dropped, total.Updated)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&stagingOnly, "staging", false, "Only sweep staged candidates")
	cmd.Flags().BoolVar(&directoryOnly, "directory", false, "Only sweep published listings")
	return cmd
}
