package listing

import "strings"

// weekdayOrder fixes the scan order so "first available day" is deterministic
// regardless of map iteration.
var weekdayOrder = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

var rangeSeparators = []string{"–", "—", " - ", "-"}

// RepresentativeHours extracts a single opens/closes pair from a provider
// opening-hours map by taking the first available day's range. Absent or
// unparseable hours return empty strings; callers treat that as non-fatal.
func RepresentativeHours(hours map[string]string) (opens, closes string) {
	if len(hours) == 0 {
		return "", ""
	}
	normalized := make(map[string]string, len(hours))
	for day, span := range hours {
		normalized[strings.ToLower(strings.TrimSpace(day))] = span
	}
	for _, day := range weekdayOrder {
		if span, ok := normalized[day]; ok {
			if o, c, ok := splitRange(span); ok {
				return o, c
			}
		}
	}
	for _, span := range hours {
		if o, c, ok := splitRange(span); ok {
			return o, c
		}
	}
	return "", ""
}

func splitRange(span string) (string, string, bool) {
	span = strings.TrimSpace(span)
	if span == "" {
		return "", "", false
	}
	for _, sep := range rangeSeparators {
		if idx := strings.Index(span, sep); idx > 0 {
			opens := strings.TrimSpace(span[:idx])
			closes := strings.TrimSpace(span[idx+len(sep):])
			if opens != "" && closes != "" {
				return opens, closes, true
			}
		}
	}
	return "", "", false
}
