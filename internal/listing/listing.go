package listing

import "strings"

// Candidate is the canonical shape every provider adapter normalizes into.
// It is produced fresh on each provider call and never persisted directly;
// the staging store owns the persisted representation.
type Candidate struct {
	ExternalID     string
	Name           string
	Description    string
	Address        string
	Phone          string
	Website        string
	MapURL         string
	Rating         float64
	ReviewCount    int
	Images         []string
	TaxonomyTokens []string
	OpeningHours   map[string]string
}

// HasImages reports whether at least one non-empty image URL is attached.
func (c Candidate) HasImages() bool {
	for _, img := range c.Images {
		if strings.TrimSpace(img) != "" {
			return true
		}
	}
	return false
}

// MergeImages appends extra image URLs, dropping blanks and duplicates while
// preserving the order in which URLs were first seen.
func (c *Candidate) MergeImages(extra []string) {
	seen := make(map[string]struct{}, len(c.Images)+len(extra))
	merged := make([]string, 0, len(c.Images)+len(extra))
	for _, src := range [][]string{c.Images, extra} {
		for _, img := range src {
			img = strings.TrimSpace(img)
			if img == "" {
				continue
			}
			if _, ok := seen[img]; ok {
				continue
			}
			seen[img] = struct{}{}
			merged = append(merged, img)
		}
	}
	c.Images = merged
}
