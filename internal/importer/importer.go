// Package importer orchestrates the discovery pipeline: provider lookup,
// image enrichment and validation, category inference, confidence scoring,
// and idempotent staging. Everything upstream of the reviewer runs through
// here.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"prospect/internal/category"
	"prospect/internal/directory"
	"prospect/internal/listing"
	"prospect/internal/logging"
	"prospect/internal/notifications"
	"prospect/internal/provider"
	"prospect/internal/scoring"
	"prospect/internal/services"
	"prospect/internal/staging"
)

const component = "importer"

// defaultMaxImages caps harvested images per candidate.
const defaultMaxImages = 6

// ImageHarvester finds candidate image URLs for a listing that has none.
type ImageHarvester interface {
	Harvest(ctx context.Context, query string, limit int) []string
}

// ImageValidator filters image URLs down to ones worth keeping.
type ImageValidator interface {
	Validate(ctx context.Context, rawURL string) bool
}

// Deps wires an Importer. Adapter, Staged, and Published are required;
// Harvester, Validator, and Matcher degrade gracefully when nil.
type Deps struct {
	Adapter       provider.Adapter
	Harvester     ImageHarvester
	Validator     ImageValidator
	Matcher       *category.Matcher
	Staged        *staging.Store
	Published     *directory.Store
	Notifier      notifications.Service
	Logger        *slog.Logger
	DefaultAreaID string
	MaxImages     int
}

// Importer stages discovered listings.
type Importer struct {
	adapter       provider.Adapter
	harvester     ImageHarvester
	validator     ImageValidator
	matcher       *category.Matcher
	staged        *staging.Store
	published     *directory.Store
	notifier      notifications.Service
	logger        *slog.Logger
	defaultAreaID string
	maxImages     int
}

// New creates an Importer from its dependencies.
func New(deps Deps) (*Importer, error) {
	if deps.Adapter == nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "provider adapter is required", nil)
	}
	if deps.Staged == nil || deps.Published == nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "staging and directory stores are required", nil)
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	maxImages := deps.MaxImages
	if maxImages <= 0 {
		maxImages = defaultMaxImages
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notifications.Noop()
	}
	return &Importer{
		adapter:       deps.Adapter,
		harvester:     deps.Harvester,
		validator:     deps.Validator,
		matcher:       deps.Matcher,
		staged:        deps.Staged,
		published:     deps.Published,
		notifier:      notifier,
		logger:        logging.NewComponentLogger(logger, component),
		defaultAreaID: deps.DefaultAreaID,
		maxImages:     maxImages,
	}, nil
}

// Options adjusts a single import.
type Options struct {
	// Status is the initial review status for a newly staged candidate.
	// Defaults to pending. Existing rows keep their status either way.
	Status staging.Status
	// CategoryOverride pins the category instead of inferring one.
	CategoryOverride string
	// AreaID assigns the candidate to an area; falls back to the default.
	AreaID string
	// SourceTag records which run staged the candidate.
	SourceTag string
	// Prefetched skips the provider details call when the caller already
	// holds the full record, as bulk search does.
	Prefetched *listing.Candidate
}

// Result describes what a single import did.
type Result struct {
	StagedID        int64
	ExternalID      string
	Name            string
	ConfidenceScore float64
	CategoryID      string
	AlreadyStaged   bool
	SkippedExisting bool
	Message         string
}

// ImportOne stages a single listing by provider external id. A listing
// already published in the directory is skipped, and a listing already
// staged is an idempotent no-op reporting the existing row — neither case
// touches the provider, so re-running ingestion never rewrites a queued
// candidate or fails because the provider forgot a record. The provider's
// fail-soft contract means an unknown external id surfaces as a not-found
// error rather than a provider failure.
func (i *Importer) ImportOne(ctx context.Context, externalID string, opts Options) (*Result, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, services.Wrap(services.ErrValidation, component, "import", "external id is required", nil)
	}
	if opts.Status == "" {
		opts.Status = staging.StatusPending
	}

	published, err := i.published.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, component, "import", "check directory", err)
	}
	if published != nil {
		i.logger.Debug("skipping already published listing",
			logging.String("external_id", externalID),
			logging.String("slug", published.Slug))
		return &Result{
			ExternalID:      externalID,
			Name:            published.Name,
			SkippedExisting: true,
			Message:         fmt.Sprintf("already published as %q", published.Slug),
		}, nil
	}

	existing, err := i.staged.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, component, "import", "check staging", err)
	}
	if existing != nil {
		i.logger.Debug("candidate already staged",
			logging.String("external_id", externalID),
			logging.Int64("staged_id", existing.ID))
		return &Result{
			StagedID:        existing.ID,
			ExternalID:      externalID,
			Name:            existing.Name,
			ConfidenceScore: existing.ConfidenceScore,
			CategoryID:      existing.InferredCategoryID,
			AlreadyStaged:   true,
			Message:         "already queued for review",
		}, nil
	}

	candidate := opts.Prefetched
	if candidate == nil {
		candidate, err = i.adapter.Details(ctx, externalID)
		if err != nil {
			return nil, services.Wrap(services.ErrExternalTool, component, "import", "fetch details", err)
		}
	}
	if candidate == nil {
		return nil, services.Wrap(services.ErrNotFound, component, "import",
			fmt.Sprintf("provider has no record for %q", externalID), nil)
	}

	i.enrichImages(ctx, candidate)

	categoryID := strings.TrimSpace(opts.CategoryOverride)
	if categoryID == "" && i.matcher != nil {
		categoryID = i.matcher.Match(candidate.TaxonomyTokens, candidate.Name)
	}

	areaID := strings.TrimSpace(opts.AreaID)
	if areaID == "" {
		areaID = i.defaultAreaID
	}

	opens, closes := listing.RepresentativeHours(candidate.OpeningHours)
	score := scoring.Score(*candidate)

	staged, err := i.staged.Upsert(ctx, &staging.Candidate{
		ExternalID:         externalID,
		Name:               candidate.Name,
		Address:            candidate.Address,
		Phone:              candidate.Phone,
		Website:            candidate.Website,
		MapURL:             candidate.MapURL,
		Rating:             candidate.Rating,
		ReviewCount:        candidate.ReviewCount,
		Images:             candidate.Images,
		TaxonomyTokens:     candidate.TaxonomyTokens,
		InferredCategoryID: categoryID,
		AreaID:             areaID,
		ConfidenceScore:    score,
		OpensAt:            opens,
		ClosesAt:           closes,
		Status:             opts.Status,
		SourceTag:          opts.SourceTag,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, component, "import", "stage candidate", err)
	}

	result := &Result{
		StagedID:        staged.ID,
		ExternalID:      externalID,
		Name:            staged.Name,
		ConfidenceScore: staged.ConfidenceScore,
		CategoryID:      staged.InferredCategoryID,
		Message:         "staged for review",
	}

	i.logger.Info("candidate staged",
		logging.String("external_id", externalID),
		logging.String("name", staged.Name),
		logging.Float64("score", staged.ConfidenceScore),
		logging.String("category", staged.InferredCategoryID))
	return result, nil
}

// ImportByURL resolves a share or maps URL to a provider record and stages
// it. A URL the provider cannot resolve is a not-found error.
func (i *Importer) ImportByURL(ctx context.Context, rawURL string, opts Options) (*Result, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, services.Wrap(services.ErrValidation, component, "import", "url is required", nil)
	}

	candidate, err := i.adapter.ResolveByURL(ctx, rawURL)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, component, "import", "resolve url", err)
	}
	if candidate == nil {
		return nil, services.Wrap(services.ErrNotFound, component, "import",
			fmt.Sprintf("could not resolve a listing from %q", rawURL), nil)
	}

	opts.Prefetched = candidate
	return i.ImportOne(ctx, candidate.ExternalID, opts)
}

// enrichImages validates provider images and, when none survive, harvests
// replacements. Validation failures drop URLs silently; the scorer treats a
// missing image as one lost signal, never a fatal condition.
func (i *Importer) enrichImages(ctx context.Context, candidate *listing.Candidate) {
	candidate.Images = i.filterImages(ctx, candidate.Images)

	if candidate.HasImages() || i.harvester == nil {
		return
	}

	query := candidate.Name
	if candidate.Address != "" {
		query += " " + candidate.Address
	}
	harvested := i.harvester.Harvest(ctx, query, i.maxImages)
	candidate.MergeImages(i.filterImages(ctx, harvested))
}

func (i *Importer) filterImages(ctx context.Context, urls []string) []string {
	if i.validator == nil || len(urls) == 0 {
		return urls
	}
	kept := urls[:0]
	for _, rawURL := range urls {
		if len(kept) >= i.maxImages {
			break
		}
		if i.validator.Validate(ctx, rawURL) {
			kept = append(kept, rawURL)
		}
	}
	return kept
}
