package directory_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"prospect/internal/directory"
)

func newStore(t *testing.T) *directory.Store {
	t.Helper()
	store, err := directory.OpenPath(filepath.Join(t.TempDir(), "directory.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedCategory(t *testing.T, store *directory.Store, id string) {
	t.Helper()
	if err := store.UpsertCategory(context.Background(), directory.Category{ID: id, Name: id}); err != nil {
		t.Fatalf("seed category %s: %v", id, err)
	}
}

func sampleListing(slug string) *directory.Listing {
	return &directory.Listing{
		Slug:        slug,
		Name:        "Corner Cafe",
		Address:     "5 Olaya St",
		Phone:       "+966 11 555 0200",
		Rating:      4.4,
		ReviewCount: 87,
		CategoryID:  "cat-cafes",
		ExternalID:  "ext-cafe-1",
		Images:      []string{"https://img.example/cafe.jpg"},
		OpensAt:     "07:00",
		ClosesAt:    "22:00",
		SourceTag:   "places:run-7",
	}
}

func TestCreateListingActivationAndSignals(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedCategory(t, store, "cat-cafes")

	created, err := store.CreateListing(ctx, sampleListing("corner-cafe"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != directory.StatusActive {
		t.Fatalf("new listings default to active, got %q", created.Status)
	}
	if created.Rating != 4.4 || created.ReviewCount != 87 {
		t.Fatalf("rating signals must survive publication, got %+v", created)
	}

	inactive := sampleListing("corner-cafe-2")
	inactive.ExternalID = "ext-cafe-2"
	inactive.Status = directory.StatusInactive
	created, err = store.CreateListing(ctx, inactive)
	if err != nil {
		t.Fatalf("create inactive: %v", err)
	}
	if created.Status != directory.StatusInactive {
		t.Fatalf("expected inactive listing, got %q", created.Status)
	}

	bogus := sampleListing("corner-cafe-3")
	bogus.ExternalID = "ext-cafe-3"
	bogus.Status = "archived"
	if _, err := store.CreateListing(ctx, bogus); err == nil {
		t.Fatal("expected error for unknown activation status")
	}
}

func TestCreateListingRequiresKnownCategory(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.CreateListing(ctx, sampleListing("corner-cafe"))
	if !errors.Is(err, directory.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}

	missing := sampleListing("corner-cafe")
	missing.CategoryID = ""
	if _, err := store.CreateListing(ctx, missing); !errors.Is(err, directory.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory for empty category, got %v", err)
	}

	seedCategory(t, store, "cat-cafes")
	created, err := store.CreateListing(ctx, sampleListing("corner-cafe"))
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	if created.ID == 0 || created.Slug != "corner-cafe" {
		t.Fatalf("unexpected listing: %+v", created)
	}
}

func TestCreateListingEnforcesUniqueSlug(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedCategory(t, store, "cat-cafes")

	if _, err := store.CreateListing(ctx, sampleListing("corner-cafe")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	second := sampleListing("corner-cafe")
	second.ExternalID = "ext-cafe-2"
	if _, err := store.CreateListing(ctx, second); !errors.Is(err, directory.ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}

	taken, err := store.SlugExists(ctx, "corner-cafe")
	if err != nil || !taken {
		t.Fatalf("expected slug to exist: %v %v", taken, err)
	}
}

func TestFindByExternalID(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedCategory(t, store, "cat-cafes")

	if _, err := store.CreateListing(ctx, sampleListing("corner-cafe")); err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := store.FindByExternalID(ctx, "ext-cafe-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found == nil || found.Slug != "corner-cafe" {
		t.Fatalf("expected listing, got %+v", found)
	}

	missing, err := store.FindByExternalID(ctx, "ext-unknown")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for unknown external id, got %+v %v", missing, err)
	}
	blank, err := store.FindByExternalID(ctx, "")
	if err != nil || blank != nil {
		t.Fatalf("expected nil for empty external id, got %+v %v", blank, err)
	}
}

func TestCategoryMappings(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedCategory(t, store, "cat-cafes")
	seedCategory(t, store, "cat-restaurants")

	if err := store.SetCategoryMapping(ctx, "Cafe", "cat-cafes"); err != nil {
		t.Fatalf("set mapping: %v", err)
	}
	if err := store.SetCategoryMapping(ctx, "restaurant", "cat-restaurants"); err != nil {
		t.Fatalf("set mapping: %v", err)
	}
	if err := store.SetCategoryMapping(ctx, "bakery", "cat-missing"); !errors.Is(err, directory.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}

	mappings, err := store.CategoryMappings(ctx)
	if err != nil {
		t.Fatalf("load mappings: %v", err)
	}
	if mappings["cafe"] != "cat-cafes" {
		t.Fatalf("expected lowercased token, got %v", mappings)
	}
	if mappings["restaurant"] != "cat-restaurants" {
		t.Fatalf("unexpected mappings: %v", mappings)
	}
}

func TestImageRecordsAndUpdateImages(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedCategory(t, store, "cat-cafes")

	created, err := store.CreateListing(ctx, sampleListing("corner-cafe"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	records, err := store.ImageRecords(ctx)
	if err != nil {
		t.Fatalf("image records: %v", err)
	}
	if len(records) != 1 || records[0].ID != created.ID || len(records[0].Images) != 1 {
		t.Fatalf("unexpected records: %+v", records)
	}

	if err := store.UpdateImages(ctx, created.ID, []string{"https://img.example/new.jpg"}); err != nil {
		t.Fatalf("update images: %v", err)
	}
	updated, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(updated.Images) != 1 || updated.Images[0] != "https://img.example/new.jpg" {
		t.Fatalf("unexpected images: %v", updated.Images)
	}

	if err := store.UpdateImages(ctx, 999, nil); !errors.Is(err, directory.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
