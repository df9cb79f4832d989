package services_test

import (
	"errors"
	"testing"

	"prospect/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	inner := errors.New("boom")
	err := services.Wrap(services.ErrValidation, "approval", "promote", "category missing", inner)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	if !errors.Is(err, inner) {
		t.Fatalf("expected wrapped inner error, got %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "importer", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestWrapDetailFormatting(t *testing.T) {
	err := services.Wrap(services.ErrNotFound, "staging", "get", "id 42", nil)
	want := "not found: staging: get: id 42"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}
