// Package risk derives borrow-limit and liquidation state from an
// obligation's precomputed USD aggregates. All functions are pure and
// operate on immutable snapshots; nothing here reaches the network.
package risk

import (
	"math"

	"lendlab/internal/domain"
)

// State classifies an obligation relative to its borrow limit and
// liquidation threshold. Ordering is meaningful: SAFE < AT_LIMIT <
// LIQUIDATABLE.
type State int

const (
	StateSafe State = iota
	StateAtLimit
	StateLiquidatable
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateSafe:
		return "SAFE"
	case StateAtLimit:
		return "AT_LIMIT"
	case StateLiquidatable:
		return "LIQUIDATABLE"
	}
	return "UNKNOWN"
}

// WeightedBorrowsUSD returns the display weighted-borrow value with the
// crossing ratchet applied: once the worst-case-price borrow value has
// crossed the borrow limit, the reported value never reads back below the
// limit it just crossed, so the health bar cannot flicker under price
// noise. The ratcheted value is display-facing; it is not fed back into
// further risk decisions beyond the crossing checks below.
func WeightedBorrowsUSD(o *domain.Obligation) float64 {
	if o.MaxPriceWeightedBorrowsUSD > o.MinPriceBorrowLimitUSD {
		return math.Max(o.WeightedBorrowsUSD, o.MinPriceBorrowLimitUSD)
	}
	return o.MaxPriceWeightedBorrowsUSD
}

// HasCrossedBorrowLimit reports whether the obligation's weighted borrows
// have reached the borrow limit. An empty position (both values exactly
// zero) has not crossed anything.
func HasCrossedBorrowLimit(o *domain.Obligation) bool {
	wb := WeightedBorrowsUSD(o)
	if wb == 0 && o.MinPriceBorrowLimitUSD == 0 {
		return false
	}
	return wb >= o.MinPriceBorrowLimitUSD
}

// HasCrossedLiquidationThreshold reports whether the obligation's weighted
// borrows have reached the liquidation threshold.
func HasCrossedLiquidationThreshold(o *domain.Obligation) bool {
	wb := WeightedBorrowsUSD(o)
	if wb == 0 && o.UnhealthyBorrowValueUSD == 0 {
		return false
	}
	return wb >= o.UnhealthyBorrowValueUSD
}

// Classify returns the risk state of the obligation.
func Classify(o *domain.Obligation) State {
	if !HasCrossedBorrowLimit(o) {
		return StateSafe
	}
	if !HasCrossedLiquidationThreshold(o) {
		return StateAtLimit
	}
	return StateLiquidatable
}
