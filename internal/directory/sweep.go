package directory

import (
	"context"
	"encoding/json"
	"fmt"

	"prospect/internal/imagecheck"
)

var _ imagecheck.Store = (*Store)(nil)

// ImageRecords returns every published listing that still carries images,
// for periodic revalidation of stored URLs.
func (s *Store) ImageRecords(ctx context.Context) ([]imagecheck.Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, name, images_json FROM listings
         WHERE images_json IS NOT NULL AND images_json != ''`,
	)
	if err != nil {
		return nil, fmt.Errorf("query image records: %w", err)
	}
	defer rows.Close()

	var records []imagecheck.Record
	for rows.Next() {
		var (
			record     imagecheck.Record
			imagesJSON string
		)
		if err := rows.Scan(&record.ID, &record.Label, &imagesJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(imagesJSON), &record.Images); err != nil {
			return nil, fmt.Errorf("decode images for listing %d: %w", record.ID, err)
		}
		if len(record.Images) > 0 {
			records = append(records, record)
		}
	}
	return records, rows.Err()
}

// UpdateImages replaces a listing's image list after a validation sweep.
func (s *Store) UpdateImages(ctx context.Context, id int64, images []string) error {
	imagesJSON, err := marshalImages(images)
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE listings SET images_json = ? WHERE id = ?`,
		nullableString(imagesJSON),
		id,
	)
	if err != nil {
		return fmt.Errorf("update images: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}
