package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"prospect/internal/approval"
	"prospect/internal/config"
	"prospect/internal/directory"
	"prospect/internal/notifications"
	"prospect/internal/staging"
	"prospect/internal/translate"
)

func newReviewCommand(cmdCtx *commandContext) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Inspect and decide on staged candidates",
	}

	reviewCmd.AddCommand(newReviewListCommand(cmdCtx))
	reviewCmd.AddCommand(newReviewApproveCommand(cmdCtx))
	reviewCmd.AddCommand(newReviewRejectCommand(cmdCtx))
	reviewCmd.AddCommand(newReviewPurgeCommand(cmdCtx))
	return reviewCmd
}

func newReviewListCommand(cmdCtx *commandContext) *cobra.Command {
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List staged candidates, best confidence first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.stores(func(cfg *config.Config, staged *staging.Store, published *directory.Store) error {
				var statuses []staging.Status
				if statusFlag != "" {
					for _, raw := range strings.Split(statusFlag, ",") {
						status, ok := staging.ParseStatus(raw)
						if !ok {
							return fmt.Errorf("unknown status %q (valid: %v)", raw, staging.AllStatuses())
						}
						statuses = append(statuses, status)
					}
				} else {
					statuses = []staging.Status{staging.StatusPending, staging.StatusAutoPending}
				}

				candidates, err := staged.ListByStatus(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(candidates) == 0 {
					fmt.Fprintln(out, "No staged candidates match")
					return nil
				}

				rows := make([][]string, 0, len(candidates))
				for _, c := range candidates {
					rows = append(rows, []string{
						strconv.FormatInt(c.ID, 10),
						c.Name,
						fmt.Sprintf("%.1f", c.ConfidenceScore),
						valueOrDash(c.InferredCategoryID),
						string(c.Status),
						strconv.Itoa(len(c.Images)),
						valueOrDash(c.Phone),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Name", "Score", "Category", "Status", "Images", "Phone"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Comma-separated statuses to show (default pending,auto_pending)")
	return cmd
}

func newReviewApproveCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		categoryFlag string
		areaFlag     string
	)

	cmd := &cobra.Command{
		Use:   "approve <staged-id>",
		Short: "Publish a staged candidate to the directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stagedID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid staged id %q", args[0])
			}

			return cmdCtx.stores(func(cfg *config.Config, staged *staging.Store, published *directory.Store) error {
				logger, err := cmdCtx.ensureLogger()
				if err != nil {
					return err
				}

				slugger, err := buildSlugger(cfg, logger)
				if err != nil {
					return err
				}

				svc := approval.NewService(staged, published, slugger, logger)
				listing, err := svc.Approve(cmd.Context(), stagedID, approval.Overrides{
					CategoryID: categoryFlag,
					AreaID:     areaFlag,
				})
				if err != nil {
					return err
				}

				notifier := notifications.NewService(cfg)
				if notifyErr := notifier.NotifyApproval(cmd.Context(), listing.Name, listing.Slug); notifyErr != nil {
					logger.Warn("approval notification failed", "error", notifyErr)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Published %q as /%s (listing id %d)\n",
					listing.Name, listing.Slug, listing.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "Override the inferred category")
	cmd.Flags().StringVar(&areaFlag, "area", "", "Override the assigned area")
	return cmd
}

func newReviewRejectCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reject <staged-id>",
		Short: "Reject a staged candidate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stagedID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid staged id %q", args[0])
			}

			return cmdCtx.stores(func(cfg *config.Config, staged *staging.Store, published *directory.Store) error {
				logger, err := cmdCtx.ensureLogger()
				if err != nil {
					return err
				}
				svc := approval.NewService(staged, published, nil, logger)
				if err := svc.Reject(cmd.Context(), stagedID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rejected staged candidate %d\n", stagedID)
				return nil
			})
		},
	}
}

func newReviewPurgeCommand(cmdCtx *commandContext) *cobra.Command {
	var olderThanDays int

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete old rejected candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThanDays < 0 {
				return fmt.Errorf("--older-than must be zero or positive")
			}
			return cmdCtx.stores(func(cfg *config.Config, staged *staging.Store, published *directory.Store) error {
				cutoff := time.Now().Add(-time.Duration(olderThanDays) * 24 * time.Hour)
				removed, err := staged.PurgeRejected(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Purged %d rejected candidates older than %d days\n", removed, olderThanDays)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&olderThanDays, "older-than", 30, "Minimum age in days for purged candidates")
	return cmd
}

// buildSlugger wires the optional translation service into slug derivation.
func buildSlugger(cfg *config.Config, logger *slog.Logger) (*translate.Slugger, error) {
	if !cfg.Translate.Enabled || cfg.Translate.BaseURL == "" {
		return translate.NewSlugger(nil, logger), nil
	}
	client, err := translate.New(
		cfg.Translate.BaseURL,
		cfg.Translate.APIKey,
		cfg.Translate.TargetLanguage,
		translate.WithTimeout(time.Duration(cfg.Translate.TimeoutSeconds)*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("configure translate service: %w", err)
	}
	return translate.NewSlugger(client, logger), nil
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
