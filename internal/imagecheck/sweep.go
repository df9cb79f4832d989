package imagecheck

import (
	"context"
	"fmt"

	"prospect/internal/logging"
)

// Record is one stored row carrying an image set, from either the staging
// store or the production directory.
type Record struct {
	ID     int64
	Label  string
	Images []string
}

// Store is the persistence surface the sweep needs: list records with
// images and persist a filtered set.
type Store interface {
	ImageRecords(ctx context.Context) ([]Record, error)
	UpdateImages(ctx context.Context, id int64, images []string) error
}

// SweepSummary reports what a maintenance sweep did.
type SweepSummary struct {
	Records int
	Dropped int
	Updated int
}

// Add folds another summary into this one.
func (s *SweepSummary) Add(other SweepSummary) {
	s.Records += other.Records
	s.Dropped += other.Dropped
	s.Updated += other.Updated
}

// Sweep validates every image URL on every record in the store and persists
// the filtered list for records whose image set changed. Validation failures
// for individual URLs are expected outcomes, not errors; only persistence
// failures abort the sweep.
func (v *Validator) Sweep(ctx context.Context, store Store) (SweepSummary, error) {
	records, err := store.ImageRecords(ctx)
	if err != nil {
		return SweepSummary{}, fmt.Errorf("list image records: %w", err)
	}

	summary := SweepSummary{Records: len(records)}
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		kept := make([]string, 0, len(record.Images))
		for _, img := range record.Images {
			if v.Validate(ctx, img) {
				kept = append(kept, img)
			}
		}
		dropped := len(record.Images) - len(kept)
		if dropped == 0 {
			continue
		}
		if err := store.UpdateImages(ctx, record.ID, kept); err != nil {
			return summary, fmt.Errorf("persist filtered images for %d: %w", record.ID, err)
		}
		summary.Dropped += dropped
		summary.Updated++
		v.logger.Info("filtered dead image urls",
			logging.Int64("record_id", record.ID),
			logging.String("record", record.Label),
			logging.Int("dropped", dropped),
			logging.Int("kept", len(kept)))
	}
	return summary, nil
}
