package translate_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"prospect/internal/translate"
)

func TestTranslateDecodesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if payload["q"] != "مطعم الركن" || payload["target"] != "en" {
			t.Fatalf("unexpected payload: %v", payload)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"translatedText": "Corner Restaurant"})
	}))
	defer server.Close()

	client, err := translate.New(server.URL, "", "en")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	got, err := client.Translate(context.Background(), "مطعم الركن")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got != "Corner Restaurant" {
		t.Fatalf("expected translated text, got %q", got)
	}
}

func TestTranslateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := translate.New(server.URL, "", "en")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Translate(context.Background(), "مطعم"); err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestSluggerFallsBackToLocalSlug(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := translate.New(server.URL, "", "en")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	slugger := translate.NewSlugger(client, nil)

	if got := slugger.Slug(context.Background(), "Café Olé"); got != "cafe-ole" {
		t.Fatalf("expected local fallback slug, got %q", got)
	}
	if !called {
		t.Fatal("expected the translation service to be tried first")
	}
}

func TestSluggerTranslatesNonLatinNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"translatedText": "Corner Restaurant"})
	}))
	defer server.Close()

	client, err := translate.New(server.URL, "", "en")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	slugger := translate.NewSlugger(client, nil)

	if got := slugger.Slug(context.Background(), "مطعم الركن"); got != "corner-restaurant" {
		t.Fatalf("expected translated slug, got %q", got)
	}
}

func TestSluggerDegradesWithoutService(t *testing.T) {
	slugger := translate.NewSlugger(nil, nil)
	if got := slugger.Slug(context.Background(), "مطعم"); got != "" {
		t.Fatalf("expected empty slug without service, got %q", got)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()
	client, err := translate.New(server.URL, "", "en")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	slugger = translate.NewSlugger(client, nil)
	if got := slugger.Slug(context.Background(), "مطعم"); got != "" {
		t.Fatalf("expected empty slug on failure, got %q", got)
	}
}
