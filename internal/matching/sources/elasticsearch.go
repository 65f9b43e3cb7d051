// internal/matching/sources/elasticsearch.go
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"marketplace-workers/internal/common/errors"
	"marketplace-workers/internal/matching"
)

const signalResponseSourceName = "signal-responses"

// SignalResponseSource pulls open seller responses to buy signals from the
// search index, so a buyer's ranking run also sees offers made directly
// against signals rather than only published listings.
type SignalResponseSource struct {
	es    *elasticsearch.Client
	index string
	size  int
}

// NewSignalResponseSource creates the source. Size caps how many hits one
// fetch requests; zero means 100.
func NewSignalResponseSource(es *elasticsearch.Client, index string, size int) *SignalResponseSource {
	if size <= 0 {
		size = 100
	}
	return &SignalResponseSource{es: es, index: index, size: size}
}

func (s *SignalResponseSource) Name() string { return signalResponseSourceName }

func (s *SignalResponseSource) Fetch(ctx context.Context) ([]matching.RawCandidate, bool, error) {
	query := fmt.Sprintf(`{
		"size": %d,
		"query": {"term": {"status": "open"}},
		"sort": [{"updatedAt": {"order": "desc"}}]
	}`, s.size)

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(strings.NewReader(query)),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, false, errors.NewSearchTimeoutError(s.index)
		}
		return nil, false, errors.NewSearchQueryFailedError(s.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == 404 {
			return nil, false, errors.NewIndexNotFoundError(s.index)
		}
		return nil, false, errors.NewSearchQueryFailedError(s.index,
			fmt.Errorf("search returned %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string                 `json:"_id"`
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, false, errors.NewSearchQueryFailedError(s.index, err)
	}

	out := make([]matching.RawCandidate, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		raw := matching.RawCandidate(hit.Source)
		if raw == nil {
			raw = matching.RawCandidate{}
		}
		if _, ok := raw["id"]; !ok {
			raw["id"] = hit.ID
		}
		out = append(out, raw)
	}

	return out, false, nil
}
