// Package category infers internal taxonomy categories for discovered
// listings. Tier 1 maps provider taxonomy tokens through the directory's
// mapping table; tier 2 falls back to an ordered, externally configured
// keyword rule list matched against the listing name. No match is a valid
// outcome left for manual review.
package category
