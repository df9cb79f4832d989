// Package imagesearch enriches candidates with image URLs from a metasearch
// backend. Harvesting is best-effort: any failure degrades to an empty list
// so a broken image backend never blocks ingestion.
package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"prospect/internal/logging"
)

// Harvester issues image searches against a SearxNG-style endpoint. Instances
// with the JSON format enabled return structured results; otherwise the HTML
// results page is parsed directly.
type Harvester struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// New builds a harvester. A nil client gets a 10 second timeout default.
func New(baseURL, apiKey, userAgent string, client *http.Client, logger *slog.Logger) *Harvester {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Harvester{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     strings.TrimSpace(apiKey),
		userAgent:  userAgent,
		httpClient: client,
		logger:     logging.NewComponentLogger(logger, "imagesearch"),
	}
}

type searchResult struct {
	Results []struct {
		ImgSrc string `json:"img_src"`
	} `json:"results"`
}

// Harvest returns up to limit image URLs for the free-text query. Silently
// returns an empty list on any failure.
func (h *Harvester) Harvest(ctx context.Context, query string, limit int) []string {
	query = strings.TrimSpace(query)
	if h.baseURL == "" || query == "" || limit <= 0 {
		return nil
	}

	urls, err := h.search(ctx, query)
	if err != nil {
		h.logger.Warn("image search degraded to empty result",
			logging.String("query", query),
			logging.Error(err))
		return nil
	}

	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, limit)
	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parsed, err := url.Parse(raw)
		if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			continue
		}
		if _, ok := seen[raw]; ok {
			continue
		}
		seen[raw] = struct{}{}
		out = append(out, raw)
		if len(out) == limit {
			break
		}
	}
	return out
}

func (h *Harvester) search(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("categories", "images")
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image search returned %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		var payload searchResult
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode image results: %w", err)
		}
		urls := make([]string, 0, len(payload.Results))
		for _, result := range payload.Results {
			urls = append(urls, result.ImgSrc)
		}
		return urls, nil
	}

	return parseResultsPage(resp)
}

// parseResultsPage scrapes image URLs out of an HTML results page for
// instances that have the JSON format disabled.
func parseResultsPage(resp *http.Response) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}
	var urls []string
	doc.Find("article img, .result-images img").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok {
			urls = append(urls, src)
		}
	})
	return urls, nil
}
