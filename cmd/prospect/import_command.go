package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"prospect/internal/config"
	"prospect/internal/directory"
	"prospect/internal/importer"
	"prospect/internal/staging"
)

const summaryPrecision = time.Second

func newImportCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		urlFlag      string
		categoryFlag string
		areaFlag     string
	)

	cmd := &cobra.Command{
		Use:   "import [external-id]",
		Short: "Stage a single listing by provider id or shared URL",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && urlFlag == "" {
				return fmt.Errorf("provide an external id or --url")
			}
			if len(args) == 1 && urlFlag != "" {
				return fmt.Errorf("provide either an external id or --url, not both")
			}

			return cmdCtx.stores(func(cfg *config.Config, staged *staging.Store, published *directory.Store) error {
				logger, err := cmdCtx.ensureLogger()
				if err != nil {
					return err
				}
				imp, err := cmdCtx.buildImporter(cmd.Context(), cfg, staged, published, logger)
				if err != nil {
					return err
				}

				opts := importer.Options{
					Status:           staging.StatusPending,
					CategoryOverride: categoryFlag,
					AreaID:           areaFlag,
					SourceTag:        "manual",
				}

				var result *importer.Result
				if urlFlag != "" {
					result, err = imp.ImportByURL(cmd.Context(), urlFlag, opts)
				} else {
					result, err = imp.ImportOne(cmd.Context(), args[0], opts)
				}
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if result.SkippedExisting {
					fmt.Fprintf(out, "%s: %s\n", result.Name, result.Message)
					return nil
				}
				fmt.Fprintf(out, "%s %s (staged id %d, score %.1f", result.Name, result.Message, result.StagedID, result.ConfidenceScore)
				if result.CategoryID != "" {
					fmt.Fprintf(out, ", category %s", result.CategoryID)
				}
				fmt.Fprintln(out, ")")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&urlFlag, "url", "", "Shared maps URL to resolve instead of an external id")
	cmd.Flags().StringVar(&categoryFlag, "category", "", "Pin the category instead of inferring one")
	cmd.Flags().StringVar(&areaFlag, "area", "", "Assign the candidate to an area")
	return cmd
}
