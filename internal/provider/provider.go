// Package provider defines the uniform contract over external place-search
// backends and the fail-soft wrapper the orchestrator consumes. Concrete
// clients live in subpackages and surface transport errors normally; FailSoft
// converts those errors into the "no data" outcomes the pipeline branches on.
package provider

import (
	"context"
	"log/slog"

	"prospect/internal/listing"
	"prospect/internal/logging"
)

// Adapter is the capability set every place-search backend must implement.
// Implementations return transport and decode failures as errors; use
// FailSoft when callers want uniform empty/nil degradation instead.
type Adapter interface {
	// Name identifies the backend for provenance tags.
	Name() string
	// Search returns candidates for a free-text query.
	Search(ctx context.Context, query string) ([]listing.Candidate, error)
	// Details returns the full candidate for a provider-scoped external id,
	// or nil when the provider does not know the id.
	Details(ctx context.Context, externalID string) (*listing.Candidate, error)
	// ResolveByURL follows redirects on a (possibly shortened) map URL and
	// returns the candidate behind it, or nil when no stable identifier can
	// be extracted from the resolved URL.
	ResolveByURL(ctx context.Context, rawURL string) (*listing.Candidate, error)
}

// FailSoft wraps an Adapter so provider failures degrade to empty results:
// Search yields an empty slice, Details and ResolveByURL yield nil. Failures
// are logged, never propagated, so callers treat "no data" uniformly.
type FailSoft struct {
	inner  Adapter
	logger *slog.Logger
}

// NewFailSoft wraps adapter with fail-soft semantics.
func NewFailSoft(adapter Adapter, logger *slog.Logger) *FailSoft {
	return &FailSoft{
		inner:  adapter,
		logger: logging.NewComponentLogger(logger, "provider"),
	}
}

func (f *FailSoft) Name() string {
	return f.inner.Name()
}

func (f *FailSoft) Search(ctx context.Context, query string) ([]listing.Candidate, error) {
	results, err := f.inner.Search(ctx, query)
	if err != nil {
		f.logger.Warn("search degraded to empty result",
			logging.String("query", query),
			logging.Error(err))
		return nil, nil
	}
	return results, nil
}

func (f *FailSoft) Details(ctx context.Context, externalID string) (*listing.Candidate, error) {
	candidate, err := f.inner.Details(ctx, externalID)
	if err != nil {
		f.logger.Warn("details degraded to nil",
			logging.String("external_id", externalID),
			logging.Error(err))
		return nil, nil
	}
	return candidate, nil
}

func (f *FailSoft) ResolveByURL(ctx context.Context, rawURL string) (*listing.Candidate, error) {
	candidate, err := f.inner.ResolveByURL(ctx, rawURL)
	if err != nil {
		f.logger.Warn("url resolution degraded to nil",
			logging.String("url", rawURL),
			logging.Error(err))
		return nil, nil
	}
	return candidate, nil
}

var _ Adapter = (*FailSoft)(nil)
