package domain

// Reserve represents one lending pool for an asset. A reserve is immutable
// within a refresh cycle; prices and reward stream state are replaced
// wholesale when the external price/interest refresh runs.
type Reserve struct {
	CoinType     string  // canonical asset identifier
	Symbol       string  // display symbol
	MintDecimals int     // asset decimals
	Price        float64 // USD per whole unit
	ArrayIndex   int     // position in the lending market's reserve array

	// BorrowWeight scales this reserve's borrow value when computing
	// weighted borrows. 1.0 means unweighted.
	BorrowWeight float64

	// Reward streams attached to this reserve, per side.
	DepositRewards []PoolReward
	BorrowRewards  []PoolReward
}

// PoolRewards returns the reward streams for the given side.
func (r *Reserve) PoolRewards(side Side) []PoolReward {
	if side == SideBorrow {
		return r.BorrowRewards
	}
	return r.DepositRewards
}

// CoinMetadata holds display metadata for one asset type.
type CoinMetadata struct {
	CoinType string
	Symbol   string
	Decimals int
}
