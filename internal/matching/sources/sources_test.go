// internal/matching/sources/sources_test.go
package sources

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-workers/internal/matching"
)

type slowSource struct {
	name  string
	delay time.Duration
}

func (s *slowSource) Name() string { return s.name }

func (s *slowSource) Fetch(ctx context.Context) ([]matching.RawCandidate, bool, error) {
	select {
	case <-time.After(s.delay):
		return testPool(), false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

type panicSource struct{}

func (s *panicSource) Name() string { return "panicky" }

func (s *panicSource) Fetch(_ context.Context) ([]matching.RawCandidate, bool, error) {
	panic("boom")
}

func TestFanOut_PreservesRegistrationOrder(t *testing.T) {
	srcs := []Source{
		&stubSource{name: "internal-listings", candidates: testPool()},
		&stubSource{name: "signal-responses", err: errors.New("down")},
		&stubSource{name: "partner-feed", candidates: testPool()},
	}

	got := FanOut(context.Background(), srcs, time.Second)
	require.Len(t, got, 3)
	assert.Equal(t, "internal-listings", got[0].Name)
	assert.Equal(t, "signal-responses", got[1].Name)
	assert.Equal(t, "partner-feed", got[2].Name)

	assert.NoError(t, got[0].Err)
	assert.Error(t, got[1].Err)
	assert.NoError(t, got[2].Err)
}

func TestFanOut_TimeoutBecomesError(t *testing.T) {
	srcs := []Source{
		&stubSource{name: "internal-listings", candidates: testPool()},
		&slowSource{name: "sluggish", delay: 500 * time.Millisecond},
	}

	got := FanOut(context.Background(), srcs, 20*time.Millisecond)
	require.Len(t, got, 2)
	assert.NoError(t, got[0].Err)
	require.Error(t, got[1].Err)
	assert.ErrorIs(t, got[1].Err, context.DeadlineExceeded)
}

func TestFanOut_PanicIsContained(t *testing.T) {
	srcs := []Source{
		&panicSource{},
		&stubSource{name: "internal-listings", candidates: testPool()},
	}

	got := FanOut(context.Background(), srcs, time.Second)
	require.Len(t, got, 2)
	require.Error(t, got[0].Err)
	assert.Contains(t, got[0].Err.Error(), "boom")
	assert.NoError(t, got[1].Err)
}

func TestFanOut_Empty(t *testing.T) {
	got := FanOut(context.Background(), nil, time.Second)
	assert.Empty(t, got)
}
