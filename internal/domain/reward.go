package domain

import "math/big"

// PoolReward is one reward-emission schedule attached to one side of a
// reserve's pool. Created by protocol governance; cancellable before
// EndTimeMs, closable only after.
type PoolReward struct {
	RewardIndex int
	CoinType    string // reward asset
	StartTimeMs int64
	EndTimeMs   int64

	// TotalRewards is the full emission budget, human-scaled.
	TotalRewards float64
	// AllocatedRewards is the portion already distributed. Invariant:
	// AllocatedRewards <= TotalRewards.
	AllocatedRewards float64
	// CumulativeRewardsPerShare is the running per-share accrual total,
	// protocol-scaled.
	CumulativeRewardsPerShare float64
}

// IsActiveAt reports whether the stream is emitting at the given time.
func (p *PoolReward) IsActiveAt(nowMs int64) bool {
	return p.StartTimeMs <= nowMs && nowMs < p.EndTimeMs
}

// UserRewardAccrual records a user's last-seen per-share accrual for one
// reward stream, together with the share the user holds in that pool.
type UserRewardAccrual struct {
	ObligationID      string
	ReserveArrayIndex int
	RewardIndex       int
	Side              Side

	// Share is the user's protocol-scaled share of the pool (deposited
	// or borrowed units, depending on Side).
	Share float64
	// LastCumulativeRewardsPerShare is the stream's per-share total at
	// the user's last claim or sync.
	LastCumulativeRewardsPerShare float64
}

// RewardClaim identifies one stream-claim contributing to a claimable
// total: enough to construct an on-chain claim call for that stream.
type RewardClaim struct {
	// ID is the deterministic hash of the claim coordinates, stable
	// across refresh cycles for the same stream.
	ID string

	ObligationID      string
	ReserveArrayIndex int
	RewardIndex       int
	Side              Side
}

// ClaimableReward aggregates a user's claimable amount for one asset type
// across all contributing streams and obligations.
//
// RawAmount is intentionally an underestimate: it is a point-in-time
// snapshot strictly <= the true claimable amount at settlement, so plans
// built from it stay valid while accrual continues. Amount is the
// human-scaled display value and a safe upper bound for UI.
type ClaimableReward struct {
	CoinType  string
	Symbol    string
	Amount    float64
	RawAmount *big.Int
	Claims    []RewardClaim
}

// RewardSnapshot is a historical sample of one reserve side's reward
// emission: which asset was being emitted and at what USD price.
type RewardSnapshot struct {
	ReserveCoinType string
	Side            Side
	TimestampMs     int64
	RewardCoinType  string
	Price           float64 // USD per whole unit of the reward asset
}

// PositionSample is a historical sample of an obligation's aggregate
// values, recorded once per refresh cycle for APR/history charts.
type PositionSample struct {
	ObligationID       string
	TimestampMs        int64
	DepositedAmountUSD float64
	BorrowedAmountUSD  float64
	WeightedBorrowsUSD float64
}
