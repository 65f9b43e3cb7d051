// internal/matching/scoring.go
package matching

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Match quality buckets.
const (
	QualityExcellent = "excellent"
	QualityGood      = "good"
	QualityFair      = "fair"
	QualityPoor      = "poor"
)

// ScoredCandidate is one output row: the candidate plus its composite
// score, sub-scores and explanation. The socialImpactScore field here is
// the 0-1 alignment sub-score, not the candidate's raw 0-100 rating.
type ScoredCandidate struct {
	Candidate
	MatchScore           float64  `json:"matchScore"`
	MatchQuality         string   `json:"matchQuality"`
	PriceCompetitiveness float64  `json:"priceCompetitiveness"`
	DistanceScore        float64  `json:"distanceScore"`
	QualityScore         float64  `json:"qualityScore"`
	SocialImpact         float64  `json:"socialImpactScore"`
	MatchingFactors      []string `json:"matchingFactors"`
}

// ScoreCandidate computes the four sub-scores and the weighted composite
// for one candidate. The caller supplies now so scoring stays
// deterministic under test. An error means the candidate cannot be
// totally ordered and must be skipped, never that the run should fail.
func ScoreCandidate(c Candidate, cr *Criteria, now time.Time) (ScoredCandidate, error) {
	if math.IsNaN(c.PricePerUnit) || math.IsInf(c.PricePerUnit, 0) || c.PricePerUnit < 0 {
		return ScoredCandidate{}, fmt.Errorf("candidate %s: unscorable price %v", c.ID, c.PricePerUnit)
	}

	price := priceScore(c.PricePerUnit, cr)
	distance := regionScore(c.Region, cr.Region)
	quality := freshnessScore(c, now)
	impact := impactScore(c, cr)

	w := cr.Weights
	sum := w.Sum()
	composite := (price*w.Price + distance*w.Distance + quality*w.Quality + impact*w.SocialImpact) / sum

	return ScoredCandidate{
		Candidate:            c,
		MatchScore:           clamp01(composite),
		MatchQuality:         qualityBucket(composite),
		PriceCompetitiveness: price,
		DistanceScore:        distance,
		QualityScore:         quality,
		SocialImpact:         impact,
		MatchingFactors:      matchingFactors(price, distance, quality, impact),
	}, nil
}

// priceScore rewards prices within the buyer's budget. Absence of a price
// preference must never penalize, so no bound means a neutral 1. Above
// priceMax the score decays linearly and hits 0 at twice the budget.
func priceScore(price float64, cr *Criteria) float64 {
	if cr.PriceMax == nil {
		return 1
	}
	max := *cr.PriceMax
	if max <= 0 || price <= max {
		return 1
	}
	return clamp01(1 - (price-max)/max)
}

// regionScore is a categorical match: the source data has no reliable
// geocoding, so this is an exact case-insensitive string comparison
// rather than a geographic distance model.
func regionScore(candidateRegion, wantRegion string) float64 {
	if wantRegion == "" {
		return 1
	}
	if candidateRegion == "" {
		return 0
	}
	if equalFold(candidateRegion, wantRegion) {
		return 1
	}
	return 0
}

// freshnessScore decays monotonically with listing age. A same-day
// listing scores near 1; the score approaches but never reaches 0.
func freshnessScore(c Candidate, now time.Time) float64 {
	ts := c.UpdatedAt
	if ts == "" {
		ts = c.CreatedAt
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		// Unknown age scores as very stale, not as an error.
		return 1.0 / (1.0 + 365.0)
	}
	days := now.Sub(t).Hours() / 24.0
	if days < 0 {
		days = 0
	}
	return 1.0 / (1.0 + days)
}

// impactScore maps the candidate's 0-100 social impact rating into [0,1],
// with a 1.2x bonus when its impact category matches the buyer's.
func impactScore(c Candidate, cr *Criteria) float64 {
	score := clampImpact(c.SocialImpactScore) / 100.0
	if cr.SocialImpactCategory != "" && equalFold(c.SocialImpactCategory, cr.SocialImpactCategory) {
		score *= 1.2
	}
	return clamp01(score)
}

func qualityBucket(score float64) string {
	switch {
	case score >= 0.8:
		return QualityExcellent
	case score >= 0.6:
		return QualityGood
	case score >= 0.4:
		return QualityFair
	default:
		return QualityPoor
	}
}

// matchingFactors names every sub-score at or above 0.7, in a fixed order
// so explanations are stable across runs.
func matchingFactors(price, distance, quality, impact float64) []string {
	const threshold = 0.7
	factors := []string{}
	if price >= threshold {
		factors = append(factors, "price")
	}
	if distance >= threshold {
		factors = append(factors, "region")
	}
	if quality >= threshold {
		factors = append(factors, "quality")
	}
	if impact >= threshold {
		factors = append(factors, "social-impact")
	}
	return factors
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
