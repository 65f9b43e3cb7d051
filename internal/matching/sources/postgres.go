// internal/matching/sources/postgres.go
package sources

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marketplace-workers/internal/common/errors"
	"marketplace-workers/internal/matching"
)

const listingSourceName = "internal-listings"

// ListingSource reads the marketplace's own active, visible listings from
// PostgreSQL. It is the primary candidate source for every ranking run.
type ListingSource struct {
	db     *sql.DB
	status string
}

// NewListingSource creates a listing source. An empty status defaults to
// "active".
func NewListingSource(db *sql.DB, status string) *ListingSource {
	if status == "" {
		status = "active"
	}
	return &ListingSource{db: db, status: status}
}

func (s *ListingSource) Name() string { return listingSourceName }

func (s *ListingSource) Fetch(ctx context.Context) ([]matching.RawCandidate, bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seller_id, category, region, price_per_unit,
		       quantity_available, social_impact_score, social_impact_category,
		       created_at, updated_at
		FROM listings
		WHERE status = $1 AND is_visible = true`, s.status)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, false, errors.NewQueryTimeoutError("listings")
		}
		return nil, false, errors.NewQueryExecutionFailedError("listings", err)
	}
	defer rows.Close()

	var out []matching.RawCandidate
	for rows.Next() {
		var (
			id, sellerID, category string
			region, impactCategory sql.NullString
			price, quantity        float64
			impactScore            sql.NullFloat64
			createdAt, updatedAt   time.Time
		)
		if err := rows.Scan(&id, &sellerID, &category, &region, &price,
			&quantity, &impactScore, &impactCategory, &createdAt, &updatedAt); err != nil {
			return nil, false, fmt.Errorf("scan listing: %w", err)
		}

		out = append(out, matching.RawCandidate{
			"id":                   id,
			"sellerId":             sellerID,
			"category":             category,
			"region":               region.String,
			"pricePerUnit":         price,
			"quantityAvailable":    quantity,
			"socialImpactScore":    impactScore.Float64,
			"socialImpactCategory": impactCategory.String,
			"createdAt":            createdAt.UTC().Format(time.RFC3339),
			"updatedAt":            updatedAt.UTC().Format(time.RFC3339),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, false, errors.NewQueryExecutionFailedError("listings", err)
	}

	return out, false, nil
}
