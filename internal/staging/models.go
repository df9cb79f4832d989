package staging

import (
	"strings"
	"time"
)

// Status represents the review lifecycle of a staged candidate.
type Status string

const (
	// StatusPending marks manually imported candidates awaiting review.
	StatusPending Status = "pending"
	// StatusAutoPending marks candidates staged by bulk discovery runs. It
	// only affects triage ordering for reviewers, not workflow legality.
	StatusAutoPending Status = "auto_pending"
	// StatusApproved and StatusRejected are terminal.
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var allStatuses = []Status{
	StatusPending,
	StatusAutoPending,
	StatusApproved,
	StatusRejected,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var terminalStatuses = map[Status]struct{}{
	StatusApproved: {},
	StatusRejected: {},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status permits no further transition.
func (s Status) IsTerminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}

// Candidate is a staged listing persisted in SQLite, keyed for dedup by the
// provider-scoped external id.
type Candidate struct {
	ID                 int64
	ExternalID         string
	Name               string
	Address            string
	Phone              string
	Website            string
	MapURL             string
	Rating             float64
	ReviewCount        int
	Images             []string
	TaxonomyTokens     []string
	InferredCategoryID string
	AreaID             string
	ConfidenceScore    float64
	OpensAt            string
	ClosesAt           string
	Status             Status
	SourceTag          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
