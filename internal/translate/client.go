// Package translate calls a LibreTranslate-compatible service to produce
// Latin renderings of non-Latin listing names, used when deriving slugs.
// The service is optional: callers fall back to local transliteration when
// it is absent or failing.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// Client speaks the /translate endpoint of a LibreTranslate-style service.
type Client struct {
	baseURL    string
	apiKey     string
	target     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, primarily for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout adjusts the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates a translation client.
func New(baseURL, apiKey, target string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("translate base URL is required")
	}
	if strings.TrimSpace(target) == "" {
		target = "en"
	}
	client := &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(apiKey),
		target:     target,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type translateRequest struct {
	Query  string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// Translate renders text in the configured target language.
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("text is required")
	}

	payload, err := json.Marshal(translateRequest{
		Query:  text,
		Source: "auto",
		Target: c.target,
		APIKey: c.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("encode translate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create translate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request failed after %s: %w", time.Since(start).Round(time.Millisecond), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("translate request returned %d after %s: %s",
			resp.StatusCode, time.Since(start).Round(time.Millisecond), strings.TrimSpace(string(body)))
	}

	var decoded translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode translate response: %w", err)
	}
	if strings.TrimSpace(decoded.TranslatedText) == "" {
		return "", errors.New("translate response was empty")
	}
	return decoded.TranslatedText, nil
}
