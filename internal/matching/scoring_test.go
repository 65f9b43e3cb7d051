// internal/matching/scoring_test.go
package matching

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

func baseCriteria() *Criteria {
	return &Criteria{
		CommodityType: "cannabis",
		Weights:       DefaultWeights(),
	}
}

func freshCandidate(id string) Candidate {
	return Candidate{
		ID:           id,
		SellerID:     "seller-" + id,
		Category:     "cannabis",
		PricePerUnit: 80,
		UpdatedAt:    testNow.Format(time.RFC3339),
		Source:       "internal",
	}
}

func TestPriceScore(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		priceMin *float64
		priceMax *float64
		want     float64
	}{
		{"no bounds is neutral", 9999, nil, nil, 1},
		{"below max", 80, nil, f64(100), 1},
		{"exactly at max", 100, nil, f64(100), 1},
		{"below midpoint", 40, f64(0), f64(100), 1},
		{"50 percent over max", 150, nil, f64(100), 0.5},
		{"double the max floors at zero", 250, nil, f64(100), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cr := baseCriteria()
			cr.PriceMin = tt.priceMin
			cr.PriceMax = tt.priceMax
			assert.InDelta(t, tt.want, priceScore(tt.price, cr), 1e-9)
		})
	}
}

func TestPriceScore_AbsenceNeverPenalizes(t *testing.T) {
	cr := baseCriteria()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		price := rng.Float64() * 1e6
		assert.Equal(t, 1.0, priceScore(price, cr))
	}
}

func TestRegionScore(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		want      string
		score     float64
	}{
		{"exact match", "Western Cape", "Western Cape", 1},
		{"case-insensitive match", "western cape", "WESTERN CAPE", 1},
		{"no criterion is neutral", "Gauteng", "", 1},
		{"mismatch", "Gauteng", "Western Cape", 0},
		{"candidate missing region", "", "Western Cape", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.score, regionScore(tt.candidate, tt.want))
		})
	}
}

func TestFreshnessScore(t *testing.T) {
	t.Run("same day scores near one", func(t *testing.T) {
		c := freshCandidate("c1")
		assert.InDelta(t, 1.0, freshnessScore(c, testNow), 0.01)
	})

	t.Run("one day old halves", func(t *testing.T) {
		c := freshCandidate("c1")
		c.UpdatedAt = testNow.Add(-24 * time.Hour).Format(time.RFC3339)
		assert.InDelta(t, 0.5, freshnessScore(c, testNow), 1e-9)
	})

	t.Run("month old decays but never reaches zero", func(t *testing.T) {
		c := freshCandidate("c1")
		c.UpdatedAt = testNow.Add(-30 * 24 * time.Hour).Format(time.RFC3339)
		got := freshnessScore(c, testNow)
		assert.Greater(t, got, 0.0)
		assert.InDelta(t, 1.0/31.0, got, 1e-9)
	})

	t.Run("falls back to createdAt", func(t *testing.T) {
		c := freshCandidate("c1")
		c.UpdatedAt = ""
		c.CreatedAt = testNow.Add(-24 * time.Hour).Format(time.RFC3339)
		assert.InDelta(t, 0.5, freshnessScore(c, testNow), 1e-9)
	})

	t.Run("missing timestamps score as very stale", func(t *testing.T) {
		c := freshCandidate("c1")
		c.UpdatedAt = ""
		c.CreatedAt = ""
		got := freshnessScore(c, testNow)
		assert.Greater(t, got, 0.0)
		assert.Less(t, got, 0.01)
	})
}

func TestImpactScore(t *testing.T) {
	t.Run("linear mapping", func(t *testing.T) {
		c := freshCandidate("c1")
		c.SocialImpactScore = 50
		assert.Equal(t, 0.5, impactScore(c, baseCriteria()))
	})

	t.Run("category bonus", func(t *testing.T) {
		cr := baseCriteria()
		cr.SocialImpactCategory = "community-farming"
		c := freshCandidate("c1")
		c.SocialImpactScore = 50
		c.SocialImpactCategory = "Community-Farming"
		assert.InDelta(t, 0.6, impactScore(c, cr), 1e-9)
	})

	t.Run("bonus caps at one", func(t *testing.T) {
		cr := baseCriteria()
		cr.SocialImpactCategory = "community-farming"
		c := freshCandidate("c1")
		c.SocialImpactScore = 90
		c.SocialImpactCategory = "community-farming"
		assert.Equal(t, 1.0, impactScore(c, cr))
	})
}

func TestQualityBucket_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.81, QualityExcellent},
		{0.8, QualityExcellent},
		{0.79, QualityGood},
		{0.6, QualityGood},
		{0.59, QualityFair},
		{0.4, QualityFair},
		{0.39, QualityPoor},
		{0, QualityPoor},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, qualityBucket(tt.score), "score %v", tt.score)
	}
}

func TestScoreCandidate_CompositeAndFactors(t *testing.T) {
	cr := baseCriteria()
	cr.Region = "Western Cape"
	cr.PriceMax = f64(100)

	c := freshCandidate("c1")
	c.Region = "Western Cape"
	c.SocialImpactScore = 80

	got, err := ScoreCandidate(c, cr, testNow)
	require.NoError(t, err)

	// price 1*0.30 + distance 1*0.20 + quality 1*0.25 + impact 0.8*0.25
	assert.InDelta(t, 0.95, got.MatchScore, 0.01)
	assert.Equal(t, QualityExcellent, got.MatchQuality)
	assert.Equal(t, []string{"price", "region", "quality", "social-impact"}, got.MatchingFactors)
}

func TestScoreCandidate_WeightNormalization(t *testing.T) {
	cr := baseCriteria()
	cr.Weights = Weights{SocialImpact: 1, Price: 1, Distance: 1, Quality: 1}
	cr.PriceMax = f64(100)

	c := freshCandidate("c1")
	c.SocialImpactScore = 100

	got, err := ScoreCandidate(c, cr, testNow)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got.MatchScore, 0.01)
	assert.GreaterOrEqual(t, 1.0, got.MatchScore)
}

func TestScoreCandidate_ScoreAlwaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cr := baseCriteria()
	cr.Region = "Western Cape"
	cr.PriceMax = f64(100)
	cr.SocialImpactCategory = "community-farming"

	regions := []string{"Western Cape", "Gauteng", ""}
	for i := 0; i < 500; i++ {
		c := freshCandidate("c1")
		c.PricePerUnit = rng.Float64() * 500
		c.Region = regions[rng.Intn(len(regions))]
		c.SocialImpactScore = rng.Float64() * 100
		c.UpdatedAt = testNow.Add(-time.Duration(rng.Intn(400*24)) * time.Hour).Format(time.RFC3339)

		got, err := ScoreCandidate(c, cr, testNow)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.MatchScore, 0.0)
		assert.LessOrEqual(t, got.MatchScore, 1.0)
	}
}

func TestScoreCandidate_UnscorableIsAnError(t *testing.T) {
	c := freshCandidate("c1")
	c.PricePerUnit = math.NaN()

	_, err := ScoreCandidate(c, baseCriteria(), testNow)
	assert.Error(t, err)
}
