package places

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"prospect/internal/listing"
)

const detailFieldMask = "id,displayName,editorialSummary,formattedAddress,internationalPhoneNumber,websiteUri,googleMapsUri,rating,userRatingCount,types,photos,regularOpeningHours"

// Client provides access to a Places-style search API.
type Client struct {
	apiKey     string
	baseURL    string
	locale     string
	region     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a places client.
func New(apiKey, baseURL, locale, region string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("places api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("places base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		locale:     strings.TrimSpace(locale),
		region:     strings.TrimSpace(region),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Name identifies the backend for provenance tags.
func (c *Client) Name() string {
	return "places"
}

type searchRequest struct {
	TextQuery    string `json:"textQuery"`
	LanguageCode string `json:"languageCode,omitempty"`
	RegionCode   string `json:"regionCode,omitempty"`
}

// Search performs a text search and normalizes every result.
func (c *Client) Search(ctx context.Context, query string) ([]listing.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}

	body, err := json.Marshal(searchRequest{
		TextQuery:    query,
		LanguageCode: c.locale,
		RegionCode:   c.region,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchText", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMaskForSearch())

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places search returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	candidates := make([]listing.Candidate, 0, len(payload.Places))
	for _, place := range payload.Places {
		candidates = append(candidates, place.normalize(c.baseURL, c.apiKey))
	}
	return candidates, nil
}

// Details fetches the full place record for an external id. A 404 means the
// provider does not know the id and yields (nil, nil).
func (c *Client) Details(ctx context.Context, externalID string) (*listing.Candidate, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, errors.New("external id must not be empty")
	}

	endpoint, err := url.Parse(c.baseURL + "/places/" + url.PathEscape(externalID))
	if err != nil {
		return nil, fmt.Errorf("parse places url: %w", err)
	}
	if c.locale != "" {
		params := url.Values{}
		params.Set("languageCode", c.locale)
		endpoint.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", detailFieldMask)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places details returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var place placeDTO
	if err := json.NewDecoder(resp.Body).Decode(&place); err != nil {
		return nil, fmt.Errorf("decode details response: %w", err)
	}
	candidate := place.normalize(c.baseURL, c.apiKey)
	if candidate.ExternalID == "" {
		return nil, nil
	}
	return &candidate, nil
}

func fieldMaskForSearch() string {
	fields := strings.Split(detailFieldMask, ",")
	for i, field := range fields {
		fields[i] = "places." + field
	}
	return strings.Join(fields, ",")
}
