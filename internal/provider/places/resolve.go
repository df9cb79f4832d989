package places

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"prospect/internal/listing"
)

// ResolveByURL follows redirects on a (possibly shortened) map URL until it
// lands on a full URL, extracts a stable place identifier from its path or
// query, and fetches details for it. Returns (nil, nil) when no identifier is
// present in the resolved URL; that is "no data", not an error.
func (c *Client) ResolveByURL(ctx context.Context, rawURL string) (*listing.Candidate, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, errors.New("url must not be empty")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || !parsed.IsAbs() {
		return nil, fmt.Errorf("url %q is not absolute", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolve redirects: %w", err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<14))
	resp.Body.Close()

	final := resp.Request.URL
	id := extractPlaceID(final)
	if id == "" {
		return nil, nil
	}
	return c.Details(ctx, id)
}

// extractPlaceID pulls a provider place identifier out of a resolved map URL.
// Recognized forms, in order: explicit place_id/placeid/ftid query params, a
// "q=place_id:..." query, and a native /places/<id> path segment.
func extractPlaceID(u *url.URL) string {
	if u == nil {
		return ""
	}
	query := u.Query()
	for _, key := range []string{"place_id", "placeid", "ftid"} {
		if id := strings.TrimSpace(query.Get(key)); id != "" {
			return id
		}
	}
	if q := strings.TrimSpace(query.Get("q")); strings.HasPrefix(q, "place_id:") {
		if id := strings.TrimSpace(strings.TrimPrefix(q, "place_id:")); id != "" {
			return id
		}
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, segment := range segments {
		if segment == "places" && i+1 < len(segments) {
			if id := strings.TrimSpace(segments[i+1]); id != "" {
				return id
			}
		}
	}
	return ""
}
