// internal/matching/sources/sources.go
package sources

import (
	"context"
	"fmt"
	"sync"
	"time"

	"marketplace-workers/internal/matching"
)

// Source is one named provider of raw candidates. Implementations fetch
// from storage or a remote service; the engine never talks to them
// directly.
type Source interface {
	Name() string
	// Fetch returns the raw candidate payload and whether it was served
	// from cache.
	Fetch(ctx context.Context) ([]matching.RawCandidate, bool, error)
}

// FanOut fetches every source concurrently, each under its own timeout.
// Results come back in registration order so run meta stays deterministic.
// A slow, failed or panicking source becomes an error entry in its slot;
// it never aborts the other fetches.
func FanOut(ctx context.Context, srcs []Source, timeout time.Duration) []matching.SourceResult {
	results := make([]matching.SourceResult, len(srcs))

	var wg sync.WaitGroup
	for i, src := range srcs {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			results[i] = fetchOne(ctx, src, timeout)
		}(i, src)
	}
	wg.Wait()

	return results
}

func fetchOne(ctx context.Context, src Source, timeout time.Duration) (res matching.SourceResult) {
	res.Name = src.Name()

	defer func() {
		if r := recover(); r != nil {
			res.Candidates = nil
			res.Err = fmt.Errorf("source panic: %v", r)
		}
	}()

	fetchCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	candidates, cached, err := src.Fetch(fetchCtx)
	res.Candidates = candidates
	res.Cached = cached
	res.Err = err
	return res
}
