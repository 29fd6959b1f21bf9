package routing

import (
	"context"
	"math/big"
	"sync"

	"golang.org/x/sync/errgroup"

	"lendlab/internal/domain"
)

// MaxInFlightQuotes bounds the number of concurrent routing requests.
const MaxInFlightQuotes = 10

// QuoteRequest asks for a route from one asset into the target, for the
// protocol-scaled input amount (the reward map's raw underestimate).
type QuoteRequest struct {
	CoinType  string
	RawAmount *big.Int
}

// QuoteResult is the settled outcome of one routing request: exactly one
// of Route or Err is set.
type QuoteResult struct {
	Route *domain.Route
	Err   error
}

// FetchQuotes issues one routing request per asset concurrently, at most
// MaxInFlightQuotes in flight, and returns once every request has settled.
// A failed request never short-circuits the others; its error is carried
// in the result map for the caller to apply the per-asset skip policy.
func FetchQuotes(ctx context.Context, provider QuoteProvider, requests []QuoteRequest, targetCoinType string) map[string]QuoteResult {
	results := make(map[string]QuoteResult, len(requests))
	if len(requests) == 0 {
		return results
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxInFlightQuotes)

	for _, req := range requests {
		req := req
		g.Go(func() error {
			route, err := provider.FindRoute(ctx, req.CoinType, targetCoinType, req.RawAmount)
			mu.Lock()
			results[req.CoinType] = QuoteResult{Route: route, Err: err}
			mu.Unlock()
			// Errors settle into the map; the group never fails.
			return nil
		})
	}

	g.Wait()
	return results
}
