// internal/matching/sources/elasticsearch_test.go
package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestESClient(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es
}

func TestSignalResponseSource_Fetch(t *testing.T) {
	es := newTestESClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"hits": {
				"hits": [
					{"_id": "resp-1", "_source": {"sellerId": "seller-1", "category": "cannabis", "pricePerUnit": 75.0}},
					{"_id": "resp-2", "_source": {"id": "custom-id", "category": "hemp"}}
				]
			}
		}`))
	})

	src := NewSignalResponseSource(es, "signal-responses", 50)
	got, cached, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, got, 2)

	// The document id backfills a missing source id, never overrides one.
	assert.Equal(t, "resp-1", got[0]["id"])
	assert.Equal(t, "custom-id", got[1]["id"])
	assert.Equal(t, "seller-1", got[0]["sellerId"])
}

func TestSignalResponseSource_ErrorStatus(t *testing.T) {
	es := newTestESClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		http.Error(w, `{"error":"index_not_found_exception"}`, http.StatusNotFound)
	})

	src := NewSignalResponseSource(es, "missing-index", 0)
	_, _, err := src.Fetch(context.Background())
	assert.Error(t, err)
}

func TestSignalResponseSource_Name(t *testing.T) {
	src := NewSignalResponseSource(nil, "signal-responses", 0)
	assert.Equal(t, "signal-responses", src.Name())
}
