// Package approval promotes staged candidates into the published directory
// or rejects them. Approval is the only path that creates listings from
// staged data, and both outcomes are terminal: once a candidate is
// approved or rejected it never re-enters review.
package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"prospect/internal/directory"
	"prospect/internal/logging"
	"prospect/internal/services"
	"prospect/internal/staging"
	"prospect/internal/translate"
)

const component = "approval"

// Overrides carries reviewer-supplied corrections applied at approval time.
// Empty fields keep the staged values.
type Overrides struct {
	CategoryID string
	AreaID     string
}

// Service reviews staged candidates.
type Service struct {
	staged    *staging.Store
	published *directory.Store
	slugger   *translate.Slugger
	logger    *slog.Logger
}

// NewService wires the approval workflow.
func NewService(staged *staging.Store, published *directory.Store, slugger *translate.Slugger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	if slugger == nil {
		slugger = translate.NewSlugger(nil, logger)
	}
	return &Service{
		staged:    staged,
		published: published,
		slugger:   slugger,
		logger:    logging.NewComponentLogger(logger, component),
	}
}

// Approve promotes a staged candidate into the directory. The candidate
// must still be reviewable, and the resulting listing must carry a known
// category: a candidate with no inferred category and no override cannot be
// approved. On success the staged row is marked approved and the new
// listing is returned.
func (s *Service) Approve(ctx context.Context, stagedID int64, overrides Overrides) (*directory.Listing, error) {
	candidate, err := s.staged.GetByID(ctx, stagedID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, component, "approve", "load candidate", err)
	}
	if candidate == nil {
		return nil, services.Wrap(services.ErrNotFound, component, "approve", fmt.Sprintf("id %d", stagedID), nil)
	}
	if candidate.Status.IsTerminal() {
		return nil, services.Wrap(services.ErrConflict, component, "approve",
			fmt.Sprintf("id %d is already %s", stagedID, candidate.Status), nil)
	}

	categoryID := strings.TrimSpace(overrides.CategoryID)
	if categoryID == "" {
		categoryID = candidate.InferredCategoryID
	}
	if categoryID == "" {
		return nil, services.Wrap(services.ErrValidation, component, "approve",
			"candidate has no category; supply one to approve", nil)
	}
	exists, err := s.published.CategoryExists(ctx, categoryID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, component, "approve", "check category", err)
	}
	if !exists {
		return nil, services.Wrap(services.ErrValidation, component, "approve",
			fmt.Sprintf("category %q does not exist", categoryID), nil)
	}

	areaID := strings.TrimSpace(overrides.AreaID)
	if areaID == "" {
		areaID = candidate.AreaID
	}

	slug, err := s.uniqueSlug(ctx, candidate.Name)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, component, "approve", "derive slug", err)
	}

	listing, err := s.published.CreateListing(ctx, &directory.Listing{
		Slug:        slug,
		Name:        candidate.Name,
		Address:     candidate.Address,
		Phone:       candidate.Phone,
		Website:     candidate.Website,
		MapURL:      candidate.MapURL,
		Rating:      candidate.Rating,
		ReviewCount: candidate.ReviewCount,
		CategoryID:  categoryID,
		AreaID:      areaID,
		ExternalID:  candidate.ExternalID,
		Images:      candidate.Images,
		OpensAt:     candidate.OpensAt,
		ClosesAt:    candidate.ClosesAt,
		SourceTag:   candidate.SourceTag,
		Status:      directory.StatusActive,
	})
	if err != nil {
		if errors.Is(err, directory.ErrUnknownCategory) {
			return nil, services.Wrap(services.ErrValidation, component, "approve", "create listing", err)
		}
		return nil, services.Wrap(services.ErrTransient, component, "approve", "create listing", err)
	}

	if err := s.staged.SetStatus(ctx, stagedID, staging.StatusApproved); err != nil {
		// The listing exists; surface the inconsistency instead of hiding it.
		return listing, services.Wrap(services.ErrTransient, component, "approve",
			fmt.Sprintf("listing %d created but candidate %d not marked approved", listing.ID, stagedID), err)
	}

	s.logger.Info("candidate approved",
		logging.Int64("staged_id", stagedID),
		logging.Int64("listing_id", listing.ID),
		logging.String("slug", listing.Slug),
		logging.String("category", listing.CategoryID))
	return listing, nil
}

// Reject marks a staged candidate as rejected. No listing is created and
// the decision is terminal.
func (s *Service) Reject(ctx context.Context, stagedID int64) error {
	err := s.staged.SetStatus(ctx, stagedID, staging.StatusRejected)
	switch {
	case err == nil:
		s.logger.Info("candidate rejected", logging.Int64("staged_id", stagedID))
		return nil
	case errors.Is(err, staging.ErrNotFound):
		return services.Wrap(services.ErrNotFound, component, "reject", fmt.Sprintf("id %d", stagedID), nil)
	case errors.Is(err, staging.ErrTerminalState):
		return services.Wrap(services.ErrConflict, component, "reject", "", err)
	default:
		return services.Wrap(services.ErrTransient, component, "reject", "", err)
	}
}

// uniqueSlug derives a slug from the candidate name and disambiguates
// collisions with a short random suffix. Names with no Latin rendering at
// all fall back to a generic stem so approval never blocks on slugging.
func (s *Service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := s.slugger.Slug(ctx, name)
	if base == "" {
		base = "listing"
	}

	taken, err := s.published.SlugExists(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}

	for attempt := 0; attempt < 5; attempt++ {
		suffix := strings.Split(uuid.NewString(), "-")[0]
		candidate := base + "-" + suffix
		taken, err := s.published.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not find a free slug for %q", base)
}
