package staging

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"prospect/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

var (
	// ErrNotFound indicates the requested staged candidate does not exist.
	ErrNotFound = errors.New("staged candidate not found")
	// ErrTerminalState indicates a transition was attempted on an approved
	// or rejected candidate.
	ErrTerminalState = errors.New("staged candidate is in a terminal state")
	// ErrInvalidStatus indicates an unknown status value.
	ErrInvalidStatus = errors.New("invalid staging status")
	// ErrSchemaMismatch indicates the database schema version doesn't match.
	ErrSchemaMismatch = errors.New("schema version mismatch")
)

// Store manages staged candidate persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the staging database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.StagingDBPath())
}

// OpenPath opens the staging database at an explicit location.
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

// Upsert inserts a candidate keyed by external id or refreshes the existing
// row's provider-sourced fields. The uniqueness constraint is enforced here,
// atomically, so concurrent ingestion of the same external id can never
// produce two rows. Lifecycle fields (status, created_at) are preserved on
// conflict; a terminal row stays terminal. The stored row is returned.
func (s *Store) Upsert(ctx context.Context, c *Candidate) (*Candidate, error) {
	if c == nil {
		return nil, errors.New("candidate is nil")
	}
	externalID := strings.TrimSpace(c.ExternalID)
	if externalID == "" {
		return nil, errors.New("external id is required")
	}
	if _, ok := statusSet[c.Status]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, c.Status)
	}

	imagesJSON, err := marshalStrings(c.Images)
	if err != nil {
		return nil, fmt.Errorf("marshal images: %w", err)
	}
	taxonomyJSON, err := marshalStrings(c.TaxonomyTokens)
	if err != nil {
		return nil, fmt.Errorf("marshal taxonomy tokens: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO staged_candidates (
            external_id, name, address, phone, website, map_url,
            rating, review_count, images_json, taxonomy_json,
            inferred_category_id, area_id, confidence_score,
            opens_at, closes_at, status, source_tag, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(external_id) DO UPDATE SET
            name = excluded.name,
            address = excluded.address,
            phone = excluded.phone,
            website = excluded.website,
            map_url = excluded.map_url,
            rating = excluded.rating,
            review_count = excluded.review_count,
            images_json = excluded.images_json,
            taxonomy_json = excluded.taxonomy_json,
            inferred_category_id = excluded.inferred_category_id,
            area_id = excluded.area_id,
            confidence_score = excluded.confidence_score,
            opens_at = excluded.opens_at,
            closes_at = excluded.closes_at,
            source_tag = excluded.source_tag,
            updated_at = excluded.updated_at`,
		externalID,
		c.Name,
		nullableString(c.Address),
		nullableString(c.Phone),
		nullableString(c.Website),
		nullableString(c.MapURL),
		c.Rating,
		c.ReviewCount,
		nullableString(imagesJSON),
		nullableString(taxonomyJSON),
		nullableString(c.InferredCategoryID),
		nullableString(c.AreaID),
		c.ConfidenceScore,
		nullableString(c.OpensAt),
		nullableString(c.ClosesAt),
		c.Status,
		nullableString(c.SourceTag),
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert candidate: %w", err)
	}

	return s.GetByExternalID(ctx, externalID)
}

// GetByID fetches a staged candidate by identifier. Returns nil when absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*Candidate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM staged_candidates WHERE id = ?`, id)
	candidate, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	return candidate, nil
}

// GetByExternalID fetches a staged candidate by its dedup key. Returns nil
// when absent.
func (s *Store) GetByExternalID(ctx context.Context, externalID string) (*Candidate, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+candidateColumns+` FROM staged_candidates WHERE external_id = ? LIMIT 1`,
		strings.TrimSpace(externalID),
	)
	candidate, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get candidate by external id: %w", err)
	}
	return candidate, nil
}

// ListByStatus returns candidates matching the status set (or every
// candidate when empty), best confidence first so reviewers see the
// strongest candidates at the top of the queue.
func (s *Store) ListByStatus(ctx context.Context, statuses ...Status) ([]*Candidate, error) {
	builder := sq.Select(strings.Split(candidateColumns, ", ")...).
		From("staged_candidates").
		OrderBy("confidence_score DESC", "created_at ASC")
	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, status := range statuses {
			values[i] = string(status)
		}
		builder = builder.Where(sq.Eq{"status": values})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*Candidate
	for rows.Next() {
		candidate, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate)
	}
	return candidates, rows.Err()
}

// SetStatus transitions a candidate. Only pending and auto_pending rows may
// move, and only to approved or rejected; both targets are terminal.
func (s *Store) SetStatus(ctx context.Context, id int64, status Status) error {
	if _, ok := statusSet[status]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if !status.IsTerminal() {
		return fmt.Errorf("%w: cannot transition to %q", ErrInvalidStatus, status)
	}

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE staged_candidates SET status = ?, updated_at = ?
         WHERE id = ? AND status IN (?, ?)`,
		status,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		StatusPending,
		StatusAutoPending,
	)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return fmt.Errorf("%w: id %d is %s", ErrTerminalState, id, existing.Status)
}

// Stats returns a count of candidates grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM staged_candidates GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("staging stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// PurgeRejected removes rejected candidates older than the cutoff. This is
// the only path that deletes staged rows.
func (s *Store) PurgeRejected(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM staged_candidates WHERE status = ? AND updated_at < ?`,
		StatusRejected,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("purge rejected: %w", err)
	}
	return res.RowsAffected()
}
