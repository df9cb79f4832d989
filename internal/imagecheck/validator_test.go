package imagecheck_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"prospect/internal/imagecheck"
	"prospect/internal/logging"
)

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46, 0x00, 0x01}

func newValidator(client *http.Client) *imagecheck.Validator {
	return imagecheck.New(1024, 2*time.Second, "test-agent", client, logging.NewNop())
}

func TestValidateRejectsWithoutNetwork(t *testing.T) {
	v := newValidator(&http.Client{})
	cases := []struct {
		name string
		url  string
	}{
		{"relative", "/images/x.jpg"},
		{"wrong scheme", "ftp://host/x.jpg"},
		{"placeholder", "https://cdn.example/no-image.png"},
		{"tracking pixel", "https://cdn.example/1x1.gif"},
		{"empty", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if v.Validate(context.Background(), tc.url) {
				t.Fatalf("expected %q to be rejected", tc.url)
			}
		})
	}
}

func TestValidateAcceptsRealImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("missing user agent")
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Length", "20480")
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(jpegBytes)
	}))
	defer srv.Close()

	v := newValidator(srv.Client())
	if !v.Validate(context.Background(), srv.URL+"/photo.jpg") {
		t.Fatal("expected valid image to be accepted")
	}
}

func TestValidateRejectsHTMLMasquerade(t *testing.T) {
	// HEAD lies about the content type; the magic bytes tell the truth.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write([]byte("<html><body>not found</body></html>"))
	}))
	defer srv.Close()

	v := newValidator(srv.Client())
	if v.Validate(context.Background(), srv.URL+"/fake.jpg") {
		t.Fatal("expected HTML payload to be rejected despite image content type")
	}
}

func TestValidateRejectsUndersized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", "64")
	}))
	defer srv.Close()

	v := newValidator(srv.Client())
	if v.Validate(context.Background(), srv.URL+"/tiny.png") {
		t.Fatal("expected undersized image to be rejected")
	}
}

func TestValidateRejectsNonImageContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	}))
	defer srv.Close()

	v := newValidator(srv.Client())
	if v.Validate(context.Background(), srv.URL+"/page") {
		t.Fatal("expected non-image content type to be rejected")
	}
}

func TestValidateRejectsHeadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	v := newValidator(srv.Client())
	if v.Validate(context.Background(), srv.URL+"/blocked.jpg") {
		t.Fatal("expected non-2xx HEAD to be rejected")
	}
}

// Pins the weak-fail-open policy: a URL whose HEAD passes but whose ranged
// GET cannot be completed is kept, not dropped.
func TestValidateRangeFailureFailsOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Length", "20480")
		if r.Method == http.MethodHead {
			return
		}
		// Kill the GET without writing a response.
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Fatal("server does not support hijacking")
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			t.Fatalf("hijack: %v", err)
		}
		conn.Close()
	}))
	defer srv.Close()

	v := newValidator(srv.Client())
	if !v.Validate(context.Background(), srv.URL+"/slow.jpg") {
		t.Fatal("expected inconclusive range request to fail open")
	}
}

func TestValidateAcceptsWhenRangeUnsupported(t *testing.T) {
	// Server ignores Range and streams the full body; signature still decides.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(append(jpegBytes, []byte(strings.Repeat("x", 4096))...))
	}))
	defer srv.Close()

	v := newValidator(srv.Client())
	if !v.Validate(context.Background(), srv.URL+"/full.jpg") {
		t.Fatal("expected full-body response with image signature to be accepted")
	}
}

type fakeStore struct {
	records []imagecheck.Record
	updates map[int64][]string
}

func (f *fakeStore) ImageRecords(context.Context) ([]imagecheck.Record, error) {
	return f.records, nil
}

func (f *fakeStore) UpdateImages(_ context.Context, id int64, images []string) error {
	if f.updates == nil {
		f.updates = make(map[int64][]string)
	}
	f.updates[id] = images
	return nil
}

func TestSweepPersistsOnlyChangedRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "dead") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Length", "20480")
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(jpegBytes)
	}))
	defer srv.Close()

	store := &fakeStore{records: []imagecheck.Record{
		{ID: 1, Label: "cafe-x", Images: []string{srv.URL + "/ok.jpg", srv.URL + "/dead.jpg"}},
		{ID: 2, Label: "cafe-y", Images: []string{srv.URL + "/ok2.jpg"}},
	}}

	v := newValidator(srv.Client())
	summary, err := v.Sweep(context.Background(), store)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if summary.Records != 2 || summary.Dropped != 1 || summary.Updated != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if got := store.updates[1]; len(got) != 1 || got[0] != srv.URL+"/ok.jpg" {
		t.Fatalf("unexpected persisted images: %v", got)
	}
	if _, ok := store.updates[2]; ok {
		t.Fatal("unchanged record should not be persisted")
	}
}
