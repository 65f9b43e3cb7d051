// internal/matching/criteria.go
package matching

import (
	"fmt"
	"strings"
)

// Weights controls the relative importance of the four sub-scores. The
// engine normalizes by the sum, so callers may pass any positive total.
type Weights struct {
	SocialImpact float64 `json:"socialImpact"`
	Price        float64 `json:"price"`
	Distance     float64 `json:"distance"`
	Quality      float64 `json:"quality"`
}

// DefaultWeights returns the stock weight distribution.
func DefaultWeights() Weights {
	return Weights{
		Price:        0.30,
		SocialImpact: 0.25,
		Quality:      0.25,
		Distance:     0.20,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.SocialImpact + w.Price + w.Distance + w.Quality
}

// Criteria is the canonical, immutable request after normalization.
type Criteria struct {
	CommodityType        string   `json:"commodityType,omitempty"`
	Region               string   `json:"region,omitempty"`
	PriceMin             *float64 `json:"priceMin,omitempty"`
	PriceMax             *float64 `json:"priceMax,omitempty"`
	MinSocialImpactScore float64  `json:"minSocialImpactScore"`
	SocialImpactCategory string   `json:"socialImpactCategory,omitempty"`
	Weights              Weights  `json:"weights"`
	Quantity             *float64 `json:"quantity,omitempty"`
	MaxDistanceKm        *float64 `json:"maxDistanceKm,omitempty"`
}

// RawCriteria is the current request shape. Older clients still send the
// same fields at the top level of RawRequest.
type RawCriteria struct {
	CommodityType        string   `json:"commodityType,omitempty"`
	ProductType          string   `json:"productType,omitempty"`
	Region               string   `json:"region,omitempty"`
	PriceMin             *float64 `json:"priceMin,omitempty"`
	PriceMax             *float64 `json:"priceMax,omitempty"`
	MinSocialImpactScore *float64 `json:"minSocialImpactScore,omitempty"`
	SocialImpactCategory string   `json:"socialImpactCategory,omitempty"`
	Weights              *Weights `json:"weights,omitempty"`
	Quantity             *float64 `json:"quantity,omitempty"`
	MaxDistanceKm        *float64 `json:"maxDistanceKm,omitempty"`
}

// RawRequest accepts both the current shape (everything under "criteria")
// and the legacy shape (fields at the top level). Legacy values are used
// only when the current field is absent.
type RawRequest struct {
	Criteria *RawCriteria `json:"criteria,omitempty"`

	// Legacy top-level fields kept for older mobile clients.
	ProductType          string   `json:"productType,omitempty"`
	CommodityType        string   `json:"commodityType,omitempty"`
	Region               string   `json:"region,omitempty"`
	PriceMin             *float64 `json:"priceMin,omitempty"`
	PriceMax             *float64 `json:"priceMax,omitempty"`
	MinSocialImpactScore *float64 `json:"minSocialImpactScore,omitempty"`
	SocialImpactCategory string   `json:"socialImpactCategory,omitempty"`
	Weights              *Weights `json:"weights,omitempty"`
	Quantity             *float64 `json:"quantity,omitempty"`
	MaxDistanceKm        *float64 `json:"maxDistanceKm,omitempty"`
}

// ValidationError reports malformed or missing required criteria. It is
// the only error NormalizeCriteria returns and maps to a 400 upstream.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid criteria: %s: %s", e.Field, e.Message)
}

// NormalizeCriteria converts a loosely-typed request into canonical
// Criteria. All legacy/current field precedence lives here and nowhere
// else: current criteria.* fields win, top-level legacy fields fill gaps.
// A request missing both a commodity type (any alias) and a quantity
// fails validation; everything else defaults.
func NormalizeCriteria(req *RawRequest) (*Criteria, error) {
	if req == nil {
		return nil, &ValidationError{Field: "request", Message: "request is required"}
	}

	cur := req.Criteria
	if cur == nil {
		cur = &RawCriteria{}
	}

	out := &Criteria{
		CommodityType:        firstNonEmpty(cur.CommodityType, cur.ProductType, req.CommodityType, req.ProductType),
		Region:               firstNonEmpty(cur.Region, req.Region),
		PriceMin:             firstFloat(cur.PriceMin, req.PriceMin),
		PriceMax:             firstFloat(cur.PriceMax, req.PriceMax),
		SocialImpactCategory: firstNonEmpty(cur.SocialImpactCategory, req.SocialImpactCategory),
		Quantity:             firstFloat(cur.Quantity, req.Quantity),
		MaxDistanceKm:        firstFloat(cur.MaxDistanceKm, req.MaxDistanceKm),
		Weights:              DefaultWeights(),
	}

	if min := firstFloat(cur.MinSocialImpactScore, req.MinSocialImpactScore); min != nil {
		out.MinSocialImpactScore = *min
	}

	if out.CommodityType == "" && out.Quantity == nil {
		return nil, &ValidationError{
			Field:   "commodityType",
			Message: "at least one of commodityType or quantity is required",
		}
	}

	if w := firstWeights(cur.Weights, req.Weights); w != nil {
		if w.SocialImpact < 0 || w.Price < 0 || w.Distance < 0 || w.Quality < 0 {
			return nil, &ValidationError{Field: "weights", Message: "weights must not be negative"}
		}
		if w.Sum() <= 0 {
			return nil, &ValidationError{Field: "weights", Message: "weights must sum to a positive value"}
		}
		out.Weights = *w
	}

	if out.PriceMin != nil && out.PriceMax != nil && *out.PriceMin > *out.PriceMax {
		return nil, &ValidationError{
			Field:   "priceMin",
			Message: fmt.Sprintf("priceMin (%g) exceeds priceMax (%g)", *out.PriceMin, *out.PriceMax),
		}
	}

	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func firstFloat(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstWeights(vals ...*Weights) *Weights {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
