// Package rewards aggregates per-stream reward accruals into per-asset
// claimable totals and estimates the annualized yield a reward stream
// contributed at a historical sample. Both operations are pure over the
// snapshots they are handed.
package rewards

import (
	"math"
	"math/big"

	"lendlab/internal/domain"
	"lendlab/internal/idhash"
)

// SkippedStream records one accrual excluded from the reward map and why.
type SkippedStream struct {
	CoinType string
	Claim    domain.RewardClaim
	Reason   error
}

// BuildRewardMap computes the user's accrued-but-unclaimed rewards across
// all obligations and streams, grouped by reward asset.
//
// For each accrual the unclaimed amount is
// share × (stream cumulative per-share − last seen per-share), floored to
// the protocol integer scale so RawAmount stays a safe underestimate while
// accrual continues. Zero-amount assets are omitted. Streams whose reward
// asset has no metadata are dropped individually and reported in the
// second return value; they never fail the whole map.
func BuildRewardMap(
	obligations []*domain.Obligation,
	reserves []*domain.Reserve,
	accruals []*domain.UserRewardAccrual,
	metadata map[string]domain.CoinMetadata,
) (map[string]*domain.ClaimableReward, []SkippedStream) {
	byIndex := make(map[int]*domain.Reserve, len(reserves))
	for _, r := range reserves {
		byIndex[r.ArrayIndex] = r
	}
	knownObligations := make(map[string]bool, len(obligations))
	for _, o := range obligations {
		knownObligations[o.ID] = true
	}

	result := make(map[string]*domain.ClaimableReward)
	var skipped []SkippedStream

	for _, acc := range accruals {
		if !knownObligations[acc.ObligationID] || acc.Share <= 0 {
			continue
		}

		claim := domain.RewardClaim{
			ID:                idhash.ComputeClaimID(acc.ObligationID, acc.ReserveArrayIndex, acc.RewardIndex, acc.Side.String()),
			ObligationID:      acc.ObligationID,
			ReserveArrayIndex: acc.ReserveArrayIndex,
			RewardIndex:       acc.RewardIndex,
			Side:              acc.Side,
		}

		reserve, ok := byIndex[acc.ReserveArrayIndex]
		if !ok {
			skipped = append(skipped, SkippedStream{Claim: claim, Reason: ErrUnknownReserve})
			continue
		}

		stream := findStream(reserve.PoolRewards(acc.Side), acc.RewardIndex)
		if stream == nil {
			skipped = append(skipped, SkippedStream{Claim: claim, Reason: ErrUnknownStream})
			continue
		}

		delta := stream.CumulativeRewardsPerShare - acc.LastCumulativeRewardsPerShare
		if delta <= 0 {
			continue
		}

		meta, ok := metadata[stream.CoinType]
		if !ok {
			skipped = append(skipped, SkippedStream{CoinType: stream.CoinType, Claim: claim, Reason: ErrMissingMetadata})
			continue
		}

		rawFloat := acc.Share * delta
		raw := floorToBig(rawFloat)
		if raw.Sign() <= 0 {
			continue
		}
		amount := rawFloat / math.Pow10(meta.Decimals)

		entry, ok := result[stream.CoinType]
		if !ok {
			entry = &domain.ClaimableReward{
				CoinType:  stream.CoinType,
				Symbol:    meta.Symbol,
				RawAmount: new(big.Int),
			}
			result[stream.CoinType] = entry
		}
		entry.Amount += amount
		entry.RawAmount.Add(entry.RawAmount, raw)
		entry.Claims = append(entry.Claims, claim)
	}

	// Zero-amount entries never reach consumers.
	for coinType, entry := range result {
		if entry.Amount == 0 || entry.RawAmount.Sign() == 0 {
			delete(result, coinType)
		}
	}

	return result, skipped
}

// findStream locates a pool reward by its index within one side's streams.
func findStream(streams []domain.PoolReward, rewardIndex int) *domain.PoolReward {
	for i := range streams {
		if streams[i].RewardIndex == rewardIndex {
			return &streams[i]
		}
	}
	return nil
}

// floorToBig converts a non-negative float to a big integer, rounding
// toward zero. big.Float keeps amounts above 2^53 exact enough for the
// underestimate guarantee.
func floorToBig(v float64) *big.Int {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return new(big.Int)
	}
	result, _ := new(big.Float).SetFloat64(math.Floor(v)).Int(nil)
	return result
}
