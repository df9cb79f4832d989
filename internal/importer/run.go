package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"prospect/internal/config"
	"prospect/internal/logging"
	"prospect/internal/staging"
)

// CategoryError records a category whose discovery failed mid-run.
type CategoryError struct {
	CategoryID string
	Query      string
	Err        error
}

func (e CategoryError) Error() string {
	return fmt.Sprintf("category %s (%q): %v", e.CategoryID, e.Query, e.Err)
}

// RunSummary aggregates a bulk discovery run.
type RunSummary struct {
	RunID         string
	Staged        int
	AlreadyQueued int
	Skipped       int
	Errors        []CategoryError
	Duration      time.Duration
}

// RunBulk executes one discovery pass over the configured category queries,
// sequentially. Each query's results are staged as auto_pending with the
// query's category pinned, provider taxonomy notwithstanding. A failing
// category or single candidate is recorded and the run moves on; only zero
// queries is an error.
func (i *Importer) RunBulk(ctx context.Context, queries []config.DiscoveryQuery) (*RunSummary, error) {
	if len(queries) == 0 {
		return nil, fmt.Errorf("no discovery queries configured")
	}

	runID := uuid.NewString()
	sourceTag := fmt.Sprintf("%s:%s", i.adapter.Name(), runID)
	started := time.Now()
	summary := &RunSummary{RunID: runID}

	i.logger.Info("discovery run started",
		logging.String("run_id", runID),
		logging.String("provider", i.adapter.Name()),
		logging.Int("queries", len(queries)))
	if err := i.notifier.NotifyRunStarted(ctx, i.adapter.Name(), len(queries)); err != nil {
		i.logger.Warn("run start notification failed", logging.Error(err))
	}

	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(started)
			return summary, err
		}
		if err := i.runQuery(ctx, query, sourceTag, summary); err != nil {
			summary.Errors = append(summary.Errors, CategoryError{
				CategoryID: query.CategoryID,
				Query:      query.Text,
				Err:        err,
			})
			i.logger.Error("category discovery failed",
				logging.String("category", query.CategoryID),
				logging.String("query", query.Text),
				logging.Error(err))
			if notifyErr := i.notifier.NotifyError(ctx, err, "category "+query.CategoryID); notifyErr != nil {
				i.logger.Warn("error notification failed", logging.Error(notifyErr))
			}
		}
	}

	summary.Duration = time.Since(started)
	i.logger.Info("discovery run completed",
		logging.String("run_id", runID),
		logging.Int("staged", summary.Staged),
		logging.Int("already_queued", summary.AlreadyQueued),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failures", len(summary.Errors)),
		logging.Duration("duration", summary.Duration))
	if err := i.notifier.NotifyRunCompleted(ctx, summary.Staged, len(summary.Errors), summary.Duration); err != nil {
		i.logger.Warn("run completion notification failed", logging.Error(err))
	}
	return summary, nil
}

func (i *Importer) runQuery(ctx context.Context, query config.DiscoveryQuery, sourceTag string, summary *RunSummary) error {
	text := strings.TrimSpace(query.Text)
	if text == "" {
		return fmt.Errorf("query text is empty")
	}

	candidates, err := i.adapter.Search(ctx, text)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	for idx := range candidates {
		candidate := candidates[idx]
		result, err := i.ImportOne(ctx, candidate.ExternalID, Options{
			Status:           staging.StatusAutoPending,
			CategoryOverride: query.CategoryID,
			SourceTag:        sourceTag,
			Prefetched:       &candidate,
		})
		if err != nil {
			// One bad candidate must not abort the rest of its category.
			summary.Errors = append(summary.Errors, CategoryError{
				CategoryID: query.CategoryID,
				Query:      query.Text,
				Err:        fmt.Errorf("stage %q: %w", candidate.ExternalID, err),
			})
			i.logger.Warn("candidate staging failed",
				logging.String("category", query.CategoryID),
				logging.String("external_id", candidate.ExternalID),
				logging.Error(err))
			continue
		}
		switch {
		case result.SkippedExisting:
			summary.Skipped++
		case result.AlreadyStaged:
			summary.AlreadyQueued++
		default:
			summary.Staged++
		}
	}
	return nil
}
