package places

import (
	"fmt"
	"strings"

	"prospect/internal/listing"
)

// Provider payloads stay in explicit tagged DTOs; normalize is the single
// crossing point into the canonical candidate shape.

type searchResponse struct {
	Places []placeDTO `json:"places"`
}

type localizedText struct {
	Text string `json:"text"`
}

type photoDTO struct {
	Name string `json:"name"`
}

type openingHoursDTO struct {
	WeekdayDescriptions []string `json:"weekdayDescriptions"`
}

type placeDTO struct {
	ID                       string           `json:"id"`
	DisplayName              localizedText    `json:"displayName"`
	EditorialSummary         localizedText    `json:"editorialSummary"`
	FormattedAddress         string           `json:"formattedAddress"`
	InternationalPhoneNumber string           `json:"internationalPhoneNumber"`
	WebsiteURI               string           `json:"websiteUri"`
	GoogleMapsURI            string           `json:"googleMapsUri"`
	Rating                   float64          `json:"rating"`
	UserRatingCount          int              `json:"userRatingCount"`
	Types                    []string         `json:"types"`
	Photos                   []photoDTO       `json:"photos"`
	RegularOpeningHours      *openingHoursDTO `json:"regularOpeningHours"`
}

func (p placeDTO) normalize(baseURL, apiKey string) listing.Candidate {
	candidate := listing.Candidate{
		ExternalID:     strings.TrimSpace(p.ID),
		Name:           strings.TrimSpace(p.DisplayName.Text),
		Description:    strings.TrimSpace(p.EditorialSummary.Text),
		Address:        strings.TrimSpace(p.FormattedAddress),
		Phone:          strings.TrimSpace(p.InternationalPhoneNumber),
		Website:        strings.TrimSpace(p.WebsiteURI),
		MapURL:         strings.TrimSpace(p.GoogleMapsURI),
		Rating:         p.Rating,
		ReviewCount:    p.UserRatingCount,
		TaxonomyTokens: p.Types,
	}
	for _, photo := range p.Photos {
		if name := strings.TrimSpace(photo.Name); name != "" {
			candidate.Images = append(candidate.Images, photoMediaURL(baseURL, name, apiKey))
		}
	}
	if p.RegularOpeningHours != nil {
		candidate.OpeningHours = parseWeekdayDescriptions(p.RegularOpeningHours.WeekdayDescriptions)
	}
	return candidate
}

func photoMediaURL(baseURL, photoName, apiKey string) string {
	return fmt.Sprintf("%s/%s/media?maxWidthPx=1600&key=%s", baseURL, photoName, apiKey)
}

// parseWeekdayDescriptions turns provider lines like
// "Monday: 9:00 AM – 11:00 PM" into a day-to-span map. Lines without a day
// prefix are skipped.
func parseWeekdayDescriptions(lines []string) map[string]string {
	if len(lines) == 0 {
		return nil
	}
	hours := make(map[string]string, len(lines))
	for _, line := range lines {
		day, span, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		day = strings.TrimSpace(day)
		span = strings.TrimSpace(span)
		if day == "" || span == "" {
			continue
		}
		hours[day] = span
	}
	if len(hours) == 0 {
		return nil
	}
	return hours
}
