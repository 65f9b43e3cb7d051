// internal/workers/matching/rank-listings/handler_test.go
package ranklistings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-workers/internal/common/logger"
	"marketplace-workers/internal/matching"
	"marketplace-workers/internal/matching/sources"
)

type stubSource struct {
	name       string
	candidates []matching.RawCandidate
	err        error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(_ context.Context) ([]matching.RawCandidate, bool, error) {
	return s.candidates, false, s.err
}

func createTestConfig() *Config {
	return &Config{
		Timeout:       10 * time.Second,
		SourceTimeout: time.Second,
	}
}

func newTestHandler(t *testing.T, srcs ...sources.Source) *Handler {
	t.Helper()
	return &Handler{
		config:  createTestConfig(),
		sources: srcs,
		logger:  logger.NewTestLogger(t),
	}
}

func listingPool() []matching.RawCandidate {
	return []matching.RawCandidate{
		{
			"id": "lst-1", "sellerId": "seller-1", "category": "cannabis flower",
			"region": "Western Cape", "pricePerUnit": 80.0, "quantityAvailable": 25.0,
			"socialImpactScore": 60.0,
		},
		{
			"id": "lst-2", "sellerId": "seller-2", "category": "cannabis flower",
			"region": "Gauteng", "pricePerUnit": 150.0, "quantityAvailable": 40.0,
			"socialImpactScore": 80.0,
		},
		{
			"id": "lst-3", "sellerId": "seller-3", "category": "tomatoes",
			"region": "Western Cape", "pricePerUnit": 10.0, "quantityAvailable": 500.0,
		},
	}
}

func rankRequest(commodityType string) matching.RawRequest {
	priceMax := 100.0
	return matching.RawRequest{
		Criteria: &matching.RawCriteria{
			CommodityType: commodityType,
			Region:        "Western Cape",
			PriceMax:      &priceMax,
		},
	}
}

func TestHandler_Execute_RanksAcrossSources(t *testing.T) {
	h := newTestHandler(t,
		&stubSource{name: "internal-listings", candidates: listingPool()},
	)

	output, err := h.Execute(context.Background(), &Input{RawRequest: rankRequest("cannabis")})
	require.NoError(t, err)
	require.Len(t, output.Results, 2)

	// In-budget Western Cape listing outranks the over-budget Gauteng one.
	assert.Equal(t, "lst-1", output.Results[0].ID)
	assert.Equal(t, "lst-2", output.Results[1].ID)
	assert.Equal(t, 2, output.TotalMatches)

	require.Len(t, output.Meta.Successes, 1)
	assert.Equal(t, "internal-listings", output.Meta.Successes[0].Name)
	assert.Equal(t, 2, output.Meta.Successes[0].Count)
	assert.Empty(t, output.Meta.Failures)
}

func TestHandler_Execute_SourceFailureIsPartial(t *testing.T) {
	h := newTestHandler(t,
		&stubSource{name: "internal-listings", candidates: listingPool()},
		&stubSource{name: "signal-responses", err: errors.New("search is down")},
	)

	output, err := h.Execute(context.Background(), &Input{RawRequest: rankRequest("cannabis")})
	require.NoError(t, err)
	assert.Len(t, output.Results, 2)

	require.Len(t, output.Meta.Failures, 1)
	assert.Equal(t, "signal-responses", output.Meta.Failures[0].Name)
	assert.Contains(t, output.Meta.Failures[0].Error, "search is down")
}

func TestHandler_Execute_InvalidCriteria(t *testing.T) {
	h := newTestHandler(t,
		&stubSource{name: "internal-listings", candidates: listingPool()},
	)

	output, err := h.Execute(context.Background(), &Input{})
	require.Error(t, err)
	assert.Nil(t, output)

	var verr *matching.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestHandler_Execute_EmptyPool(t *testing.T) {
	h := newTestHandler(t,
		&stubSource{name: "internal-listings", candidates: nil},
	)

	output, err := h.Execute(context.Background(), &Input{RawRequest: rankRequest("cannabis")})
	require.NoError(t, err)
	assert.NotNil(t, output.Results)
	assert.Empty(t, output.Results)
	assert.Equal(t, 0, output.TotalMatches)
}

func TestHandler_Execute_OptionsOverrideDefaults(t *testing.T) {
	h := newTestHandler(t,
		&stubSource{name: "internal-listings", candidates: listingPool()},
	)

	input := &Input{
		RawRequest: rankRequest("cannabis"),
		Options:    matching.Options{Limit: 1},
	}

	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, output.Results, 1)
	assert.Equal(t, "lst-1", output.Results[0].ID)
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{
			name:    "current shape",
			payload: `{"criteria":{"commodityType":"cannabis","priceMax":100},"options":{"limit":5}}`,
		},
		{
			name:    "legacy shape",
			payload: `{"commodityType":"hemp","region":"Gauteng"}`,
		},
		{
			name:    "criteria wrong type",
			payload: `{"criteria":"cannabis"}`,
			wantErr: true,
		},
		{
			name:    "negative limit",
			payload: `{"criteria":{},"options":{"limit":-1}}`,
			wantErr: true,
		},
		{
			name:    "priceMax wrong type",
			payload: `{"priceMax":"cheap"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequest(tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
