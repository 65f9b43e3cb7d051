// internal/workers/matching/rank-listings/models.go
package ranklistings

import "marketplace-workers/internal/matching"

// Input is the raw job payload. The criteria block and the legacy
// top-level fields both feed the engine's normalizer untouched.
type Input struct {
	matching.RawRequest
	Options matching.Options `json:"options"`
	UserID  string           `json:"userId,omitempty"`
}

type Output struct {
	Results      []matching.ScoredCandidate `json:"results"`
	Meta         matching.RunMeta           `json:"meta"`
	TotalMatches int                        `json:"totalMatches"`
}
