// internal/workers/matching/rank-signal-responses/handler_test.go
package ranksignalresponses

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-workers/internal/common/logger"
	"marketplace-workers/internal/matching"
)

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(&Config{Timeout: 10 * time.Second}, logger.NewTestLogger(t))
}

func signalRequest() matching.RawRequest {
	priceMax := 200.0
	return matching.RawRequest{
		Criteria: &matching.RawCriteria{
			CommodityType: "hemp",
			PriceMax:      &priceMax,
		},
	}
}

func TestHandler_Execute_RanksInlineResponses(t *testing.T) {
	h := newTestHandler(t)

	input := &Input{
		RawRequest: signalRequest(),
		SignalID:   "sig-42",
		Responses: []matching.RawCandidate{
			{"id": "resp-1", "sellerId": "s1", "category": "hemp fibre", "pricePerUnit": 120.0, "socialImpactScore": 90.0},
			{"id": "resp-2", "sellerId": "s2", "category": "hemp fibre", "pricePerUnit": 250.0, "socialImpactScore": 30.0},
			{"id": "resp-3", "sellerId": "s3", "category": "maize", "pricePerUnit": 50.0},
		},
	}

	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, output.Results, 2)

	// In-budget high-impact response first, disallowed category gone.
	assert.Equal(t, "resp-1", output.Results[0].ID)
	assert.Equal(t, "resp-2", output.Results[1].ID)

	require.Len(t, output.Meta.Successes, 1)
	assert.Equal(t, "signal-responses", output.Meta.Successes[0].Name)
	assert.Equal(t, 2, output.Meta.Successes[0].Count)
	assert.False(t, output.Meta.Successes[0].Cached)
}

func TestHandler_Execute_EmptyResponses(t *testing.T) {
	h := newTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{
		RawRequest: signalRequest(),
		SignalID:   "sig-43",
	})
	require.NoError(t, err)
	assert.NotNil(t, output.Results)
	assert.Empty(t, output.Results)
	assert.Equal(t, 0, output.TotalMatches)
}

func TestHandler_Execute_InvalidCriteria(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{SignalID: "sig-44"})
	require.Error(t, err)

	var verr *matching.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestHandler_Execute_UnscorableResponseSkipped(t *testing.T) {
	h := newTestHandler(t)

	input := &Input{
		RawRequest: signalRequest(),
		Responses: []matching.RawCandidate{
			{"id": "resp-ok", "sellerId": "s1", "category": "hemp", "pricePerUnit": 100.0},
			{"id": "resp-bad", "sellerId": "s2", "category": "hemp", "pricePerUnit": -5.0},
		},
	}

	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, output.Results, 1)
	assert.Equal(t, "resp-ok", output.Results[0].ID)
	assert.Equal(t, 1, output.Meta.Skipped)
}
