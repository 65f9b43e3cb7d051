// internal/matching/candidate.go
package matching

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Candidate is the canonical shape every listing or offer is normalized
// into before scoring. Numeric fields are never null: a missing value is 0.
type Candidate struct {
	ID                   string  `json:"id"`
	SellerID             string  `json:"sellerId"`
	Category             string  `json:"category"`
	Region               string  `json:"region,omitempty"`
	PricePerUnit         float64 `json:"pricePerUnit"`
	QuantityAvailable    float64 `json:"quantityAvailable"`
	SocialImpactScore    float64 `json:"socialImpactScore"` // 0-100
	SocialImpactCategory string  `json:"socialImpactCategory,omitempty"`
	CreatedAt            string  `json:"createdAt,omitempty"` // ISO 8601
	UpdatedAt            string  `json:"updatedAt,omitempty"` // ISO 8601
	Source               string  `json:"source"`
}

// RawCandidate is one record as delivered by a candidate source. Sources
// disagree on field names and value types, so adaptation is key-alias based.
type RawCandidate map[string]interface{}

// SourceResult carries one source's fetch outcome into the engine.
type SourceResult struct {
	Name       string
	Candidates []RawCandidate
	Cached     bool
	Err        error
}

// AdaptCandidates normalizes a source payload into canonical candidates.
// It is deliberately lenient: unknown or malformed fields default rather
// than abort, so one bad source cannot take down the whole run. Strict
// validation belongs to the write path, not here.
func AdaptCandidates(source string, raw []RawCandidate) []Candidate {
	out := make([]Candidate, 0, len(raw))
	for _, r := range raw {
		if r == nil {
			continue
		}
		c := Candidate{
			ID:                   pickString(r, "id", "listingId", "_id"),
			SellerID:             pickString(r, "sellerId", "seller_id", "ownerId"),
			Category:             pickString(r, "category", "commodityType", "productType"),
			Region:               pickString(r, "region", "location"),
			PricePerUnit:         pickFloat(r, "pricePerUnit", "price_per_unit", "price"),
			QuantityAvailable:    pickFloat(r, "quantityAvailable", "quantity_available", "quantity"),
			SocialImpactScore:    clampImpact(pickFloat(r, "socialImpactScore", "social_impact_score", "impactScore")),
			SocialImpactCategory: pickString(r, "socialImpactCategory", "social_impact_category"),
			CreatedAt:            pickString(r, "createdAt", "created_at"),
			UpdatedAt:            pickString(r, "updatedAt", "updated_at"),
			Source:               source,
		}
		out = append(out, c)
	}
	return out
}

func clampImpact(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func pickString(r RawCandidate, keys ...string) string {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func pickFloat(r RawCandidate, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			if f, ok := toFloat(v); ok {
				return f
			}
		}
	}
	return 0
}

var nonNumericRe = regexp.MustCompile(`[^\d.\-]+`)

// toFloat coerces the value types JSON decoding and loose upstream
// serializers produce. Currency noise in strings ("R 150.00") is stripped.
func toFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		cleaned := nonNumericRe.ReplaceAllString(strings.ReplaceAll(v, ",", ""), "")
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
