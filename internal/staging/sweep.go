package staging

import (
	"context"
	"fmt"

	"prospect/internal/imagecheck"
)

var _ imagecheck.Store = (*Store)(nil)

// ImageRecords returns every non-rejected candidate that still carries
// images, for periodic revalidation of stored URLs.
func (s *Store) ImageRecords(ctx context.Context) ([]imagecheck.Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, name, images_json FROM staged_candidates
         WHERE status != ? AND images_json IS NOT NULL AND images_json != ''`,
		StatusRejected,
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
		if record.Images, err = unmarshalStrings(imagesJSON); err != nil {
			return nil, fmt.Errorf("decode images for candidate %d: %w", record.ID, err)
		}
		if len(record.Images) > 0 {
			records = append(records, record)
		}
	}
	return records, rows.Err()
}

// UpdateImages replaces a candidate's image list after a validation sweep.
func (s *Store) UpdateImages(ctx context.Context, id int64, images []string) error {
	imagesJSON, err := marshalStrings(images)
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE staged_candidates SET images_json = ? WHERE id = ?`,
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
