// Package scoring computes the advisory confidence score attached to staged
// candidates. The score orders the human review queue; it never gates staging
// or promotion.
package scoring

import (
	"strings"

	"prospect/internal/listing"
)

// Weight each signal contributes. Five independent binary signals summed, so
// the score is always one of {0.0, 0.2, 0.4, 0.6, 0.8, 1.0}.
const signalWeight = 0.2

const (
	minTrustedRating  = 4.0
	minTrustedReviews = 10
)

// Score computes a bounded trust score from signal presence on the candidate.
func Score(c listing.Candidate) float64 {
	score := 0.0
	if strings.TrimSpace(c.Phone) != "" {
		score += signalWeight
	}
	if strings.TrimSpace(c.Website) != "" {
		score += signalWeight
	}
	if c.Rating >= minTrustedRating {
		score += signalWeight
	}
	if c.ReviewCount > minTrustedReviews {
		score += signalWeight
	}
	if c.HasImages() {
		score += signalWeight
	}
	return score
}
