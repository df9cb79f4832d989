package provider_test

import (
	"context"
	"errors"
	"testing"

	"prospect/internal/listing"
	"prospect/internal/logging"
	"prospect/internal/provider"
)

type flakyAdapter struct {
	err error
}

func (f flakyAdapter) Name() string { return "flaky" }

func (f flakyAdapter) Search(context.Context, string) ([]listing.Candidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []listing.Candidate{{ExternalID: "x1", Name: "X"}}, nil
}

func (f flakyAdapter) Details(context.Context, string) (*listing.Candidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &listing.Candidate{ExternalID: "x1"}, nil
}

func (f flakyAdapter) ResolveByURL(context.Context, string) (*listing.Candidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &listing.Candidate{ExternalID: "x1"}, nil
}

func TestFailSoftDegradesErrors(t *testing.T) {
	wrapped := provider.NewFailSoft(flakyAdapter{err: errors.New("provider down")}, logging.NewNop())
	ctx := context.Background()

	results, err := wrapped.Search(ctx, "anything")
	if err != nil || len(results) != 0 {
		t.Fatalf("expected empty results without error, got %v / %v", results, err)
	}
	candidate, err := wrapped.Details(ctx, "x1")
	if err != nil || candidate != nil {
		t.Fatalf("expected nil candidate without error, got %v / %v", candidate, err)
	}
	candidate, err = wrapped.ResolveByURL(ctx, "https://short.example/x")
	if err != nil || candidate != nil {
		t.Fatalf("expected nil candidate without error, got %v / %v", candidate, err)
	}
}

func TestFailSoftPassesThroughSuccess(t *testing.T) {
	wrapped := provider.NewFailSoft(flakyAdapter{}, logging.NewNop())
	results, err := wrapped.Search(context.Background(), "anything")
	if err != nil || len(results) != 1 {
		t.Fatalf("expected one result, got %v / %v", results, err)
	}
	if wrapped.Name() != "flaky" {
		t.Fatalf("unexpected name %q", wrapped.Name())
	}
}
