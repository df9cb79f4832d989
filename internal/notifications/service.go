// Package notifications pushes pipeline events to an ntfy topic: run
// start/finish, approvals, image sweeps, and errors. When no topic is
// configured a noop implementation is returned, so callers never check
// whether notifications are enabled.
package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"prospect/internal/config"
)

const userAgent = "Prospect/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyRunStarted(ctx context.Context, provider string, queries int) error
	NotifyRunCompleted(ctx context.Context, imported, failed int, duration time.Duration) error
	NotifyApproval(ctx context.Context, name, slug string) error
	NotifySweepCompleted(ctx context.Context, checked, dropped int) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:  topic,
		client:    &http.Client{Timeout: timeout},
		runs:      cfg.Notifications.Runs,
		approvals: cfg.Notifications.Approvals,
		sweeps:    cfg.Notifications.Sweeps,
		errors:    cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint  string
	client    *http.Client
	runs      bool
	approvals bool
	sweeps    bool
	errors    bool
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, provider string, queries int) error {
	if !n.runs {
		return nil
	}
	provider = strings.TrimSpace(provider)
	if provider == "" {
		provider = "unknown"
	}
	data := payload{
		title:   "Prospect - Run Started",
		message: fmt.Sprintf("Discovery run started via %s across %d categories", provider, queries),
		tags:    []string{"prospect", "run", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, imported, failed int, duration time.Duration) error {
	if !n.runs {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var title, message string
	if failed == 0 {
		title = "Prospect - Run Complete"
		message = fmt.Sprintf("Discovery run complete: %d candidates staged in %s", imported, durationText)
	} else {
		title = "Prospect - Run Complete (with errors)"
		message = fmt.Sprintf("Discovery run complete: %d staged, %d categories failed in %s", imported, failed, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"prospect", "run", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyApproval(ctx context.Context, name, slug string) error {
	if !n.approvals {
		return nil
	}
	name = strings.TrimSpace(name)
	message := fmt.Sprintf("Published: %s", name)
	if slug = strings.TrimSpace(slug); slug != "" {
		message = fmt.Sprintf("%s\nSlug: %s", message, slug)
	}
	data := payload{
		title:   "Prospect - Listing Published",
		message: message,
		tags:    []string{"prospect", "approval", "published"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySweepCompleted(ctx context.Context, checked, dropped int) error {
	if !n.sweeps {
		return nil
	}
	data := payload{
		title:   "Prospect - Image Sweep Complete",
		message: fmt.Sprintf("Image sweep complete: %d listings checked, %d dead URLs dropped", checked, dropped),
		tags:    []string{"prospect", "sweep", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Prospect - Error",
		message:  builder.String(),
		tags:     []string{"prospect", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Prospect - Test",
		message:  "Notification system test",
		tags:     []string{"prospect", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Noop returns a notification service that discards every event.
func Noop() Service {
	return noopService{}
}

type noopService struct{}

func (noopService) NotifyRunStarted(context.Context, string, int) error              { return nil }
func (noopService) NotifyRunCompleted(context.Context, int, int, time.Duration) error { return nil }
func (noopService) NotifyApproval(context.Context, string, string) error             { return nil }
func (noopService) NotifySweepCompleted(context.Context, int, int) error             { return nil }
func (noopService) NotifyError(context.Context, error, string) error                 { return nil }
func (noopService) TestNotification(context.Context) error                           { return nil }
