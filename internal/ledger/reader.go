// Package ledger is the client surface to the on-chain lending market: a
// JSON-RPC reader for reserves, obligations and reward accruals, and a
// WebSocket feed for reserve price updates. All returned values are
// immutable snapshots as of the requested fetch.
package ledger

import (
	"context"
	"errors"

	"lendlab/internal/domain"
)

// ErrObligationNotFound is returned when the owner has no obligation on
// the lending market.
var ErrObligationNotFound = errors.New("obligation not found")

// Reader supplies refreshed market and position state.
type Reader interface {
	// Reserves fetches all reserves of the lending market, including
	// attached reward streams, at current prices.
	Reserves(ctx context.Context) ([]*domain.Reserve, error)

	// ObligationsByOwner fetches the owner's obligations with aggregates
	// already computed by the on-chain refresh. Returns
	// ErrObligationNotFound when the owner has none.
	ObligationsByOwner(ctx context.Context, owner string) ([]*domain.Obligation, error)

	// RewardAccruals fetches the per-stream accrual records for one
	// obligation.
	RewardAccruals(ctx context.Context, obligationID string) ([]*domain.UserRewardAccrual, error)

	// CoinMetadata resolves decimals and symbols for the given assets.
	// Unresolvable assets are simply absent from the result.
	CoinMetadata(ctx context.Context, coinTypes []string) (map[string]domain.CoinMetadata, error)
}

// PriceUpdate is one reserve price tick from the price feed.
type PriceUpdate struct {
	CoinType    string
	Price       float64
	TimestampMs int64
}
