package directory

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"prospect/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 2

var (
	// ErrUnknownCategory indicates a listing referenced a category that is
	// not present in the taxonomy.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrSlugTaken indicates the requested slug is already in use.
	ErrSlugTaken = errors.New("slug already in use")
	// ErrNotFound indicates the requested listing does not exist.
	ErrNotFound = errors.New("listing not found")
	// ErrSchemaMismatch indicates the database schema version doesn't match.
	ErrSchemaMismatch = errors.New("schema version mismatch")
)

// Store manages published listings backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the directory database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.DirectoryDBPath())
}

// OpenPath opens the directory database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d", ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

// UpsertCategory creates or renames a taxonomy category.
func (s *Store) UpsertCategory(ctx context.Context, category Category) error {
	if strings.TrimSpace(category.ID) == "" {
		return errors.New("category id is required")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO categories (id, name) VALUES (?, ?)
         ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		category.ID, category.Name,
	)
	if err != nil {
		return fmt.Errorf("upsert category: %w", err)
	}
	return nil
}

// UpsertArea creates or renames a geographic area.
func (s *Store) UpsertArea(ctx context.Context, area Area) error {
	if strings.TrimSpace(area.ID) == "" {
		return errors.New("area id is required")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO areas (id, name) VALUES (?, ?)
         ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		area.ID, area.Name,
	)
	if err != nil {
		return fmt.Errorf("upsert area: %w", err)
	}
	return nil
}

// CategoryExists reports whether the taxonomy contains the category.
func (s *Store) CategoryExists(ctx context.Context, id string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM categories WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check category: %w", err)
	}
	return count > 0, nil
}

// SetCategoryMapping associates a provider taxonomy token with a category.
func (s *Store) SetCategoryMapping(ctx context.Context, token, categoryID string) error {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return errors.New("mapping token is required")
	}
	exists, err := s.CategoryExists(ctx, categoryID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, categoryID)
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO category_mappings (token, category_id) VALUES (?, ?)
         ON CONFLICT(token) DO UPDATE SET category_id = excluded.category_id`,
		token, categoryID,
	)
	if err != nil {
		return fmt.Errorf("set category mapping: %w", err)
	}
	return nil
}

// CategoryMappings returns the full provider-token to category map, keys
// lowercased.
func (s *Store) CategoryMappings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT token, category_id FROM category_mappings`)
	if err != nil {
		return nil, fmt.Errorf("load category mappings: %w", err)
	}
	defer rows.Close()

	mappings := make(map[string]string)
	for rows.Next() {
		var token, categoryID string
		if err := rows.Scan(&token, &categoryID); err != nil {
			return nil, err
		}
		mappings[token] = categoryID
	}
	return mappings, rows.Err()
}

// FindByExternalID returns the published listing that originated from the
// given provider record, or nil when none exists. This is the production
// half of the dedup check.
func (s *Store) FindByExternalID(ctx context.Context, externalID string) (*Listing, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+listingColumns+` FROM listings WHERE external_id = ? LIMIT 1`,
		externalID,
	)
	listing, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find listing by external id: %w", err)
	}
	return listing, nil
}

// GetByID fetches a listing by identifier. Returns nil when absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*Listing, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = ?`, id)
	listing, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return listing, nil
}

// SlugExists reports whether a slug is already in use.
func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM listings WHERE slug = ?`, slug).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return count > 0, nil
}

// CreateListing publishes a listing. The category must already exist in the
// taxonomy and the slug must be unique; violations surface as
// ErrUnknownCategory and ErrSlugTaken.
func (s *Store) CreateListing(ctx context.Context, listing *Listing) (*Listing, error) {
	if listing == nil {
		return nil, errors.New("listing is nil")
	}
	if strings.TrimSpace(listing.Name) == "" {
		return nil, errors.New("listing name is required")
	}
	if strings.TrimSpace(listing.Slug) == "" {
		return nil, errors.New("listing slug is required")
	}
	if strings.TrimSpace(listing.CategoryID) == "" {
		return nil, fmt.Errorf("%w: listing has no category", ErrUnknownCategory)
	}
	status := strings.TrimSpace(listing.Status)
	if status == "" {
		status = StatusActive
	}
	if status != StatusActive && status != StatusInactive {
		return nil, fmt.Errorf("invalid listing status %q", status)
	}

	exists, err := s.CategoryExists(ctx, listing.CategoryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, listing.CategoryID)
	}
	taken, err := s.SlugExists(ctx, listing.Slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: %q", ErrSlugTaken, listing.Slug)
	}

	imagesJSON, err := marshalImages(listing.Images)
	if err != nil {
		return nil, fmt.Errorf("marshal images: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO listings (
            slug, name, description, address, phone, website, map_url,
            rating, review_count, category_id, area_id, external_id,
            images_json, opens_at, closes_at, source_tag, status,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		listing.Slug,
		listing.Name,
		nullableString(listing.Description),
		nullableString(listing.Address),
		nullableString(listing.Phone),
		nullableString(listing.Website),
		nullableString(listing.MapURL),
		listing.Rating,
		listing.ReviewCount,
		listing.CategoryID,
		nullableString(listing.AreaID),
		nullableString(listing.ExternalID),
		nullableString(imagesJSON),
		nullableString(listing.OpensAt),
		nullableString(listing.ClosesAt),
		nullableString(listing.SourceTag),
		status,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

const listingColumns = "id, slug, name, description, address, phone, website, map_url, " +
	"rating, review_count, category_id, area_id, external_id, images_json, " +
	"opens_at, closes_at, source_tag, status, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*Listing, error) {
	var (
		l           Listing
		description sql.NullString
		address     sql.NullString
		phone       sql.NullString
		website     sql.NullString
		mapURL      sql.NullString
		areaID      sql.NullString
		externalID  sql.NullString
		imagesJSON  sql.NullString
		opensAt     sql.NullString
		closesAt    sql.NullString
		sourceTag   sql.NullString
	)

	err := row.Scan(
		&l.ID,
		&l.Slug,
		&l.Name,
		&description,
		&address,
		&phone,
		&website,
		&mapURL,
		&l.Rating,
		&l.ReviewCount,
		&l.CategoryID,
		&areaID,
		&externalID,
		&imagesJSON,
		&opensAt,
		&closesAt,
		&sourceTag,
		&l.Status,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Description = description.String
	l.Address = address.String
	l.Phone = phone.String
	l.Website = website.String
	l.MapURL = mapURL.String
	l.AreaID = areaID.String
	l.ExternalID = externalID.String
	l.OpensAt = opensAt.String
	l.ClosesAt = closesAt.String
	l.SourceTag = sourceTag.String

	if imagesJSON.String != "" {
		if err := json.Unmarshal([]byte(imagesJSON.String), &l.Images); err != nil {
			return nil, fmt.Errorf("decode images for listing %d: %w", l.ID, err)
		}
	}
	return &l, nil
}

func marshalImages(images []string) (string, error) {
	if len(images) == 0 {
		return "", nil
	}
	data, err := json.Marshal(images)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
