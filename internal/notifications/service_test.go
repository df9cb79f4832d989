package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"prospect/internal/config"
	"prospect/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRunCompleted(context.Background(), 5, 0, time.Minute); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		notify         func(svc notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "run started",
			notify: func(svc notifications.Service) error {
				return svc.NotifyRunStarted(context.Background(), "places", 4)
			},
			expectTitle:   "Prospect - Run Started",
			expectMessage: "Discovery run started via places across 4 categories",
			expectTags:    "prospect,run,started",
		},
		{
			name: "run completed clean",
			notify: func(svc notifications.Service) error {
				return svc.NotifyRunCompleted(context.Background(), 12, 0, 90*time.Second)
			},
			expectTitle:   "Prospect - Run Complete",
			expectMessage: "Discovery run complete: 12 candidates staged in 1m30s",
			expectTags:    "prospect,run,completed",
		},
		{
			name: "run completed with errors",
			notify: func(svc notifications.Service) error {
				return svc.NotifyRunCompleted(context.Background(), 8, 2, time.Minute)
			},
			expectTitle:   "Prospect - Run Complete (with errors)",
			expectMessage: "Discovery run complete: 8 staged, 2 categories failed in 1m0s",
			expectTags:    "prospect,run,completed",
		},
		{
			name: "approval",
			notify: func(svc notifications.Service) error {
				return svc.NotifyApproval(context.Background(), "Corner Cafe", "corner-cafe")
			},
			expectTitle:   "Prospect - Listing Published",
			expectMessage: "Published: Corner Cafe\nSlug: corner-cafe",
			expectTags:    "prospect,approval,published",
		},
		{
			name: "sweep",
			notify: func(svc notifications.Service) error {
				return svc.NotifySweepCompleted(context.Background(), 40, 3)
			},
			expectTitle:   "Prospect - Image Sweep Complete",
			expectMessage: "Image sweep complete: 40 listings checked, 3 dead URLs dropped",
			expectTags:    "prospect,sweep,completed",
		},
		{
			name: "error",
			notify: func(svc notifications.Service) error {
				return svc.NotifyError(context.Background(), errors.New("provider timeout"), "discovery run")
			},
			expectTitle:    "Prospect - Error",
			expectMessage:  "Error with discovery run: provider timeout",
			expectTags:     "prospect,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := tc.notify(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceIgnoresSuppressedEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for suppressed event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Runs = false
	cfg.Notifications.Approvals = false
	cfg.Notifications.Sweeps = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	ctx := context.Background()
	if err := svc.NotifyRunStarted(ctx, "places", 1); err != nil {
		t.Fatalf("suppressed run start: %v", err)
	}
	if err := svc.NotifyRunCompleted(ctx, 1, 0, time.Second); err != nil {
		t.Fatalf("suppressed run complete: %v", err)
	}
	if err := svc.NotifyApproval(ctx, "Cafe", "cafe"); err != nil {
		t.Fatalf("suppressed approval: %v", err)
	}
	if err := svc.NotifySweepCompleted(ctx, 10, 1); err != nil {
		t.Fatalf("suppressed sweep: %v", err)
	}
	if err := svc.NotifyError(ctx, errors.New("boom"), "run"); err != nil {
		t.Fatalf("suppressed error: %v", err)
	}
}
