package translate

import (
	"context"
	"log/slog"

	"prospect/internal/logging"
	"prospect/internal/textutil"
)

// Slugger derives URL slugs from listing names. Names go through the
// translation service first so the slug reads well in the target language;
// when the service is disabled, fails, or yields nothing usable, the
// original text is slugified directly. A name with no Latin rendering at
// all degrades to an empty slug rather than an error, leaving the caller
// to pick a fallback stem.
type Slugger struct {
	client *Client
	logger *slog.Logger
}

// NewSlugger creates a Slugger. The client may be nil when translation is
// disabled.
func NewSlugger(client *Client, logger *slog.Logger) *Slugger {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Slugger{client: client, logger: logger}
}

// Slug returns a slug for the name, or empty when no Latin rendering could
// be produced.
func (s *Slugger) Slug(ctx context.Context, name string) string {
	if s.client != nil {
		translated, err := s.client.Translate(ctx, name)
		if err != nil {
			s.logger.Warn("name translation failed, slugifying original",
				logging.String("name", name),
				logging.Error(err))
		} else if slug := textutil.Slugify(translated); slug != "" {
			return slug
		}
	}
	return textutil.Slugify(name)
}
