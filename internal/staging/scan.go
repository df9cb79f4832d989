package staging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const candidateColumns = "id, external_id, name, address, phone, website, map_url, " +
	"rating, review_count, images_json, taxonomy_json, inferred_category_id, area_id, " +
	"confidence_score, opens_at, closes_at, status, source_tag, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (*Candidate, error) {
	var (
		c            Candidate
		address      sql.NullString
		phone        sql.NullString
		website      sql.NullString
		mapURL       sql.NullString
		imagesJSON   sql.NullString
		taxonomyJSON sql.NullString
		categoryID   sql.NullString
		areaID       sql.NullString
		opensAt      sql.NullString
		closesAt     sql.NullString
		sourceTag    sql.NullString
		createdAt    string
		updatedAt    string
	)

	err := row.Scan(
		&c.ID,
		&c.ExternalID,
		&c.Name,
		&address,
		&phone,
		&website,
		&mapURL,
		&c.Rating,
		&c.ReviewCount,
		&imagesJSON,
		&taxonomyJSON,
		&categoryID,
		&areaID,
		&c.ConfidenceScore,
		&opensAt,
		&closesAt,
		&c.Status,
		&sourceTag,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Address = address.String
	c.Phone = phone.String
	c.Website = website.String
	c.MapURL = mapURL.String
	c.InferredCategoryID = categoryID.String
	c.AreaID = areaID.String
	c.OpensAt = opensAt.String
	c.ClosesAt = closesAt.String
	c.SourceTag = sourceTag.String

	if c.Images, err = unmarshalStrings(imagesJSON.String); err != nil {
		return nil, fmt.Errorf("decode images for candidate %d: %w", c.ID, err)
	}
	if c.TaxonomyTokens, err = unmarshalStrings(taxonomyJSON.String); err != nil {
		return nil, fmt.Errorf("decode taxonomy tokens for candidate %d: %w", c.ID, err)
	}
	c.CreatedAt = parseTimestamp(createdAt)
	c.UpdatedAt = parseTimestamp(updatedAt)
	return &c, nil
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func marshalStrings(values []string) (string, error) {
	if len(values) == 0 {
		return "", nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalStrings(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return values, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
