package category

import (
	"strings"

	"prospect/internal/textutil"
)

// Rule binds a cluster of name keywords to an internal category. Rules are
// evaluated in authored order and the first matching rule wins, so specific
// clusters ("grilled", "seafood") must be listed before generic ones
// ("restaurant").
type Rule struct {
	CategoryID string   `toml:"category_id"`
	Keywords   []string `toml:"keywords"`
}

// Matcher resolves provider taxonomy tokens and listing names to internal
// category identifiers using a tiered strategy: exact token mapping first,
// ordered keyword fallback second.
type Matcher struct {
	mappings map[string]string
	rules    []Rule
}

// NewMatcher builds a matcher from a token-to-category mapping table and an
// ordered keyword rule list. Mapping keys are reduced to machine tokens so
// "Meal Takeaway" and "meal_takeaway" land on the same entry; rule order is
// preserved exactly as authored.
func NewMatcher(mappings map[string]string, rules []Rule) *Matcher {
	normalized := make(map[string]string, len(mappings))
	for token, categoryID := range mappings {
		categoryID = strings.TrimSpace(categoryID)
		if strings.TrimSpace(token) == "" || categoryID == "" {
			continue
		}
		normalized[textutil.SanitizeToken(token)] = categoryID
	}
	return &Matcher{mappings: normalized, rules: rules}
}

// Match returns the internal category for the given taxonomy tokens and
// listing name, or "" when neither tier produces a hit. An empty result is a
// valid outcome, not an error; uncategorized candidates sit in staging until
// a reviewer assigns a category.
func (m *Matcher) Match(tokens []string, name string) string {
	for _, token := range tokens {
		if strings.TrimSpace(token) == "" {
			continue
		}
		if categoryID, ok := m.mappings[textutil.SanitizeToken(token)]; ok {
			return categoryID
		}
	}

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	for _, rule := range m.rules {
		for _, keyword := range rule.Keywords {
			keyword = strings.ToLower(strings.TrimSpace(keyword))
			if keyword == "" {
				continue
			}
			if strings.Contains(name, keyword) {
				return rule.CategoryID
			}
		}
	}
	return ""
}
