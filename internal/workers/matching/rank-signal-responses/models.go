// internal/workers/matching/rank-signal-responses/models.go
package ranksignalresponses

import "marketplace-workers/internal/matching"

// Input carries the buyer's criteria and the seller responses collected
// for one buy signal. The pool arrives inline; no source I/O happens in
// this worker.
type Input struct {
	matching.RawRequest
	SignalID  string                  `json:"signalId,omitempty"`
	Responses []matching.RawCandidate `json:"responses"`
	Options   matching.Options        `json:"options"`
}

type Output struct {
	Results      []matching.ScoredCandidate `json:"results"`
	Meta         matching.RunMeta           `json:"meta"`
	TotalMatches int                        `json:"totalMatches"`
}
