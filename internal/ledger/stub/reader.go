// Package stub provides an in-memory ledger.Reader for tests and demos.
package stub

import (
	"context"
	"fmt"
	"sync"

	"lendlab/internal/domain"
	"lendlab/internal/ledger"
)

// Reader serves fixture market state from memory.
type Reader struct {
	mu sync.RWMutex

	reserves    []*domain.Reserve
	obligations map[string][]*domain.Obligation        // keyed by owner
	accruals    map[string][]*domain.UserRewardAccrual // keyed by obligation ID
	metadata    map[string]domain.CoinMetadata
}

// NewReader creates an empty stub reader.
func NewReader() *Reader {
	return &Reader{
		obligations: make(map[string][]*domain.Obligation),
		accruals:    make(map[string][]*domain.UserRewardAccrual),
		metadata:    make(map[string]domain.CoinMetadata),
	}
}

// Compile-time interface check.
var _ ledger.Reader = (*Reader)(nil)

// SetReserves replaces the reserve fixture set.
func (r *Reader) SetReserves(reserves []*domain.Reserve) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reserves = reserves
}

// AddObligation registers an obligation for an owner.
func (r *Reader) AddObligation(owner string, o *domain.Obligation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.OwnerID = owner
	r.obligations[owner] = append(r.obligations[owner], o)
}

// SetAccruals replaces the accrual fixture set for one obligation.
func (r *Reader) SetAccruals(obligationID string, accruals []*domain.UserRewardAccrual) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accruals[obligationID] = accruals
}

// SetMetadata registers coin metadata.
func (r *Reader) SetMetadata(meta domain.CoinMetadata) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metadata[meta.CoinType] = meta
}

// Reserves returns the fixture reserves.
func (r *Reader) Reserves(_ context.Context) ([]*domain.Reserve, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Reserve, len(r.reserves))
	copy(out, r.reserves)
	return out, nil
}

// ObligationsByOwner returns the owner's fixture obligations.
func (r *Reader) ObligationsByOwner(_ context.Context, owner string) ([]*domain.Obligation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	obligations, ok := r.obligations[owner]
	if !ok || len(obligations) == 0 {
		return nil, fmt.Errorf("owner %s: %w", owner, ledger.ErrObligationNotFound)
	}
	out := make([]*domain.Obligation, len(obligations))
	copy(out, obligations)
	return out, nil
}

// RewardAccruals returns the fixture accruals for one obligation.
func (r *Reader) RewardAccruals(_ context.Context, obligationID string) ([]*domain.UserRewardAccrual, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	accruals := r.accruals[obligationID]
	out := make([]*domain.UserRewardAccrual, len(accruals))
	copy(out, accruals)
	return out, nil
}

// CoinMetadata resolves fixture metadata; unknown assets are absent.
func (r *Reader) CoinMetadata(_ context.Context, coinTypes []string) (map[string]domain.CoinMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[string]domain.CoinMetadata)
	for _, ct := range coinTypes {
		if meta, ok := r.metadata[ct]; ok {
			result[ct] = meta
		}
	}
	return result, nil
}
