// internal/matching/sources/postgres_test.go
package sources

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var listingColumns = []string{
	"id", "seller_id", "category", "region", "price_per_unit",
	"quantity_available", "social_impact_score", "social_impact_category",
	"created_at", "updated_at",
}

func TestListingSource_Fetch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, seller_id, category").
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows(listingColumns).
			AddRow("lst-1", "seller-1", "cannabis flower", "Western Cape",
				80.0, 25.0, 60.0, "community-farming", now, now).
			AddRow("lst-2", "seller-2", "hemp fibre", nil,
				50.0, 100.0, nil, nil, now, now))

	src := NewListingSource(db, "")
	got, cached, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, got, 2)

	assert.Equal(t, "lst-1", got[0]["id"])
	assert.Equal(t, 80.0, got[0]["pricePerUnit"])
	assert.Equal(t, now.Format(time.RFC3339), got[0]["updatedAt"])

	// NULL columns come through as zero values, not as errors.
	assert.Equal(t, "", got[1]["region"])
	assert.Equal(t, 0.0, got[1]["socialImpactScore"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingSource_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, seller_id, category").
		WithArgs("active").
		WillReturnError(assert.AnError)

	src := NewListingSource(db, "active")
	_, _, err = src.Fetch(context.Background())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingSource_Name(t *testing.T) {
	src := NewListingSource(nil, "active")
	assert.Equal(t, "internal-listings", src.Name())
}
