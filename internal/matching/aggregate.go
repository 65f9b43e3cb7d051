// internal/matching/aggregate.go
package matching

import (
	"fmt"
	"sort"
)

// DefaultLimit caps the result set when the caller does not ask otherwise.
const DefaultLimit = 20

// SourceSuccess records one candidate source that returned data.
type SourceSuccess struct {
	Name   string `json:"name"`
	Count  int    `json:"count"`
	Cached bool   `json:"cached"`
}

// SourceFailure records one candidate source that failed.
type SourceFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// RunMeta is the per-request diagnostic record. Successes and failures are
// always present, even when empty, so callers can tell "no results" apart
// from "source failed".
type RunMeta struct {
	Successes []SourceSuccess `json:"successes"`
	Failures  []SourceFailure `json:"failures"`
	Skipped   int             `json:"skipped,omitempty"`
	Truncated bool            `json:"truncated,omitempty"`
}

// NewRunMeta returns a RunMeta with non-nil slices.
func NewRunMeta() RunMeta {
	return RunMeta{
		Successes: []SourceSuccess{},
		Failures:  []SourceFailure{},
	}
}

// Aggregate deduplicates, orders and truncates scored candidates. The
// input slice is not mutated. Ordering is descending composite score with
// a deterministic tie-break (raw impact rating descending, then id
// ascending) so identical inputs always produce identical output.
func Aggregate(scored []ScoredCandidate, limit int) []ScoredCandidate {
	if limit <= 0 {
		limit = DefaultLimit
	}

	// Two listings that agree on seller, category, quantity and price are
	// the same offer seen through different sources.
	seen := make(map[string]bool, len(scored))
	out := make([]ScoredCandidate, 0, len(scored))
	for _, sc := range scored {
		key := dedupKey(sc.Candidate)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, sc)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MatchScore != out[j].MatchScore {
			return out[i].MatchScore > out[j].MatchScore
		}
		if out[i].Candidate.SocialImpactScore != out[j].Candidate.SocialImpactScore {
			return out[i].Candidate.SocialImpactScore > out[j].Candidate.SocialImpactScore
		}
		return out[i].Candidate.ID < out[j].Candidate.ID
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func dedupKey(c Candidate) string {
	return fmt.Sprintf("%s|%s|%g|%g", c.SellerID, c.Category, c.QuantityAvailable, c.PricePerUnit)
}
