package imagecheck

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"prospect/internal/logging"
)

// Known placeholder URL fragments rejected before any network call.
var placeholderPatterns = []string{
	"placeholder",
	"no-image",
	"noimage",
	"no_photo",
	"image-not-found",
	"default-image",
	"spacer.gif",
	"1x1.",
}

// Image signatures accepted during magic-byte inspection.
var imageSignatures = [][]byte{
	{0xFF, 0xD8, 0xFF},       // JPEG
	{0x89, 0x50, 0x4E, 0x47}, // PNG
	[]byte("GIF8"),           // GIF
	[]byte("RIFF"),           // WEBP container
	[]byte("BM"),             // BMP
}

// Validator checks whether image URLs point at live, plausibly real images.
type Validator struct {
	minBytes   int
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// New builds a validator. minBytes guards against tracking pixels and broken
// placeholders; timeout bounds each outbound request.
func New(minBytes int, timeout time.Duration, userAgent string, client *http.Client, logger *slog.Logger) *Validator {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Validator{
		minBytes:   minBytes,
		userAgent:  userAgent,
		timeout:    timeout,
		httpClient: client,
		logger:     logging.NewComponentLogger(logger, "imagecheck"),
	}
}

// Validate reports whether the URL should be kept. Checks run in order and
// short-circuit on the first definitive failure:
//
//  1. absolute HTTP(S) URL, no placeholder patterns (no network)
//  2. HEAD within the timeout, 2xx required
//  3. Content-Length, when present, at least minBytes
//  4. Content-Type, when present, must be image/*
//  5. ranged GET of the first bytes: known image signature passes, a leading
//     '<' is HTML masquerading as an image and fails. An unusable range
//     response is inconclusive and passes — the HEAD already succeeded, so
//     this stage only ever tightens on positive evidence of a fake.
func (v *Validator) Validate(ctx context.Context, rawURL string) bool {
	rawURL = strings.TrimSpace(rawURL)
	parsed, err := url.Parse(rawURL)
	if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return false
	}
	lowered := strings.ToLower(rawURL)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(lowered, pattern) {
			return false
		}
	}

	headCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(headCtx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	v.setHeaders(req)
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false
	}

	if lengthHeader := resp.Header.Get("Content-Length"); lengthHeader != "" {
		if length, err := strconv.ParseInt(lengthHeader, 10, 64); err == nil && length < int64(v.minBytes) {
			return false
		}
	}
	if contentType := resp.Header.Get("Content-Type"); contentType != "" {
		if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
			return false
		}
	}

	return v.inspectSignature(ctx, rawURL)
}

func (v *Validator) inspectSignature(ctx context.Context, rawURL string) bool {
	getCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(getCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return true
	}
	v.setHeaders(req)
	req.Header.Set("Range", "bytes=0-10")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		// Inconclusive: the HEAD already passed. Weak fail open.
		v.logger.Debug("range request failed, accepting",
			logging.String("url", rawURL),
			logging.Error(err))
		return true
	}
	defer resp.Body.Close()

	head := make([]byte, 11)
	n, _ := io.ReadFull(resp.Body, head)
	if n == 0 {
		return true
	}
	head = head[:n]

	if head[0] == '<' {
		return false
	}
	for _, signature := range imageSignatures {
		if bytes.HasPrefix(head, signature) {
			return true
		}
	}
	// Unknown leading bytes: not provably HTML, keep it.
	return true
}

func (v *Validator) setHeaders(req *http.Request) {
	if v.userAgent != "" {
		req.Header.Set("User-Agent", v.userAgent)
	}
	req.Header.Set("Accept", "image/*,*/*;q=0.8")
}
