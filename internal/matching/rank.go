// internal/matching/rank.go
package matching

import (
	"fmt"
	"time"
)

// DefaultMaxCandidates bounds how many pool entries one call will process.
const DefaultMaxCandidates = 500

// Options carries per-call knobs for the ranking pipeline.
type Options struct {
	Limit         int `json:"limit,omitempty"`
	MaxCandidates int `json:"maxCandidates,omitempty"`
}

// RankResult is the stable response contract for every ranking consumer:
// listing search, batch matching and buy-signal response ranking.
type RankResult struct {
	Results []ScoredCandidate `json:"results"`
	Meta    RunMeta           `json:"meta"`
}

// Rank runs the full normalize -> adapt -> filter -> score -> aggregate
// pipeline over the already-fetched source results. It holds no state
// between calls and performs no I/O, so it is safe to invoke from any
// number of goroutines.
//
// The only error returned is a *ValidationError for malformed criteria.
// Anything unexpected inside the pipeline is recovered and reported as a
// single "engine" failure in the meta, so callers always receive a
// well-formed result.
func Rank(req *RawRequest, sourceResults []SourceResult, opts Options, now time.Time) (res *RankResult, err error) {
	criteria, err := NormalizeCriteria(req)
	if err != nil {
		return nil, err
	}

	res = &RankResult{
		Results: []ScoredCandidate{},
		Meta:    NewRunMeta(),
	}

	defer func() {
		if r := recover(); r != nil {
			res.Meta.Failures = append(res.Meta.Failures, SourceFailure{
				Name:  "engine",
				Error: fmt.Sprintf("internal error: %v", r),
			})
			err = nil
		}
	}()

	maxCandidates := opts.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}

	// Adapt each source's payload, applying the pool cap in source order so
	// overflow is dropped visibly, never silently.
	pool := make([]Candidate, 0, maxCandidates)
	for _, sr := range sourceResults {
		if sr.Err != nil {
			res.Meta.Failures = append(res.Meta.Failures, SourceFailure{
				Name:  sr.Name,
				Error: sr.Err.Error(),
			})
			continue
		}
		adapted := AdaptCandidates(sr.Name, sr.Candidates)
		if remaining := maxCandidates - len(pool); len(adapted) > remaining {
			adapted = adapted[:remaining]
			res.Meta.Truncated = true
		}
		pool = append(pool, adapted...)
	}

	// The allow-list runs before any caller-supplied filter and cannot be
	// weakened by request parameters.
	pool = ApplyAllowList(pool, criteria.CommodityType)

	if criteria.MinSocialImpactScore > 0 {
		filtered := pool[:0:0]
		for _, c := range pool {
			if c.SocialImpactScore >= criteria.MinSocialImpactScore {
				filtered = append(filtered, c)
			}
		}
		pool = filtered
	}

	scored := make([]ScoredCandidate, 0, len(pool))
	for _, c := range pool {
		sc, scoreErr := ScoreCandidate(c, criteria, now)
		if scoreErr != nil {
			res.Meta.Skipped++
			continue
		}
		scored = append(scored, sc)
	}

	// Per-source counts reflect candidates that survived filtering and
	// scoring, so a caller can see which source its results came from.
	counts := make(map[string]int, len(sourceResults))
	for _, sc := range scored {
		counts[sc.Source]++
	}
	for _, sr := range sourceResults {
		if sr.Err != nil {
			continue
		}
		res.Meta.Successes = append(res.Meta.Successes, SourceSuccess{
			Name:   sr.Name,
			Count:  counts[sr.Name],
			Cached: sr.Cached,
		})
	}

	res.Results = Aggregate(scored, opts.Limit)
	return res, nil
}
