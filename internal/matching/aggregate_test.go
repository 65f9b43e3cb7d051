// internal/matching/aggregate_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoredFixture(id string, score float64) ScoredCandidate {
	return ScoredCandidate{
		Candidate: Candidate{
			ID:                id,
			SellerID:          "seller-" + id,
			Category:          "cannabis",
			QuantityAvailable: 10,
			PricePerUnit:      80,
			Source:            "internal",
		},
		MatchScore:      score,
		MatchingFactors: []string{},
	}
}

func TestAggregate_SortsDescending(t *testing.T) {
	in := []ScoredCandidate{
		scoredFixture("a", 0.4),
		scoredFixture("b", 0.9),
		scoredFixture("c", 0.7),
	}

	got := Aggregate(in, 10)
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
	assert.Equal(t, "a", got[2].ID)
}

func TestAggregate_TieBreakDeterministic(t *testing.T) {
	a := scoredFixture("a", 0.5)
	a.Candidate.SellerID = "s1"
	a.Candidate.SocialImpactScore = 10

	b := scoredFixture("b", 0.5)
	b.Candidate.SellerID = "s2"
	b.Candidate.SocialImpactScore = 90

	c := scoredFixture("c", 0.5)
	c.Candidate.SellerID = "s3"
	c.Candidate.SocialImpactScore = 10

	got := Aggregate([]ScoredCandidate{c, a, b}, 10)
	require.Len(t, got, 3)
	// Higher raw impact rating first, then ascending id.
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
	assert.Equal(t, "c", got[2].ID)

	again := Aggregate([]ScoredCandidate{c, a, b}, 10)
	assert.Equal(t, got, again)
}

func TestAggregate_DedupByCompositeKey(t *testing.T) {
	a := scoredFixture("a", 0.8)
	b := scoredFixture("b", 0.6)
	// Same seller, category, quantity and price as a, different source.
	b.Candidate.SellerID = a.Candidate.SellerID
	b.Candidate.Source = "partner-feed"

	got := Aggregate([]ScoredCandidate{a, b}, 10)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestAggregate_TruncatesToLimit(t *testing.T) {
	in := make([]ScoredCandidate, 0, 30)
	for i := 0; i < 30; i++ {
		sc := scoredFixture(string(rune('a'+i)), float64(i)/30.0)
		sc.Candidate.SellerID = sc.ID // keep every row distinct
		in = append(in, sc)
	}

	got := Aggregate(in, 5)
	assert.Len(t, got, 5)

	defaulted := Aggregate(in, 0)
	assert.Len(t, defaulted, DefaultLimit)
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	in := []ScoredCandidate{
		scoredFixture("a", 0.4),
		scoredFixture("b", 0.9),
	}
	in[1].Candidate.SellerID = "other"

	_ = Aggregate(in, 10)
	assert.Equal(t, "a", in[0].ID)
	assert.Equal(t, "b", in[1].ID)
}
