// Package routing wraps the external swap-routing provider: finding a
// route per asset, executing routes, and the bounded parallel fan-out
// that fetches quotes for a whole reward map.
package routing

import (
	"context"
	"errors"
	"math/big"

	"lendlab/internal/domain"
)

// ErrNoRoute is returned when the provider cannot route between a pair of
// assets for the requested amount. Per-asset and non-fatal: planning
// skips the asset instead of aborting.
var ErrNoRoute = errors.New("no route found")

// ErrSwapExecutionFailed is returned when a previously quoted route fails
// to execute. Same skip policy as ErrNoRoute.
var ErrSwapExecutionFailed = errors.New("swap execution failed")

// QuoteProvider is the opaque routing collaborator.
type QuoteProvider interface {
	// FindRoute requests a route from one asset to another for the given
	// protocol-scaled input amount. Returns ErrNoRoute when the provider
	// has no path.
	FindRoute(ctx context.Context, fromCoinType, toCoinType string, amountIn *big.Int) (*domain.Route, error)

	// ExecuteRoute builds the swap leg for an obtained route, consuming
	// the input coin under the given slippage tolerance and yielding the
	// output coin. Returns ErrSwapExecutionFailed on provider rejection.
	ExecuteRoute(ctx context.Context, route *domain.Route, input *domain.Coin, slippagePct float64) (*domain.Coin, error)
}
