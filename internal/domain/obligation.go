package domain

// Deposit is one collateral entry of an obligation.
type Deposit struct {
	CoinType           string
	DepositedAmount    float64 // human-scaled asset amount
	DepositedAmountUSD float64
	UserRewardIndex    int // index into the reserve's deposit pool shares
	Reserve            *Reserve
}

// Borrow is one debt entry of an obligation.
type Borrow struct {
	CoinType          string
	BorrowedAmount    float64 // human-scaled asset amount
	BorrowedAmountUSD float64
	Reserve           *Reserve
}

// Obligation is a borrower's aggregate account across reserves, with the
// USD aggregates precomputed by the refresh cycle. An Obligation is never
// mutated in place; every refresh builds a new value from ledger state.
type Obligation struct {
	ID       string
	OwnerID  string
	Deposits []Deposit
	Borrows  []Borrow

	DepositedAmountUSD float64
	BorrowedAmountUSD  float64

	// WeightedBorrowsUSD is the borrow value scaled by each reserve's
	// borrow weight at current prices.
	WeightedBorrowsUSD float64
	// MaxPriceWeightedBorrowsUSD is the weighted borrow value evaluated
	// at each reserve's worst-case upper price bound.
	MaxPriceWeightedBorrowsUSD float64
	// MinPriceBorrowLimitUSD is the borrow limit evaluated at each
	// reserve's worst-case lower price bound.
	MinPriceBorrowLimitUSD float64
	// UnhealthyBorrowValueUSD is the liquidation threshold in USD.
	UnhealthyBorrowValueUSD float64
}

// DepositForReserve returns the deposit entry for the given reserve array
// index, or nil if the obligation has no deposit there.
func (o *Obligation) DepositForReserve(arrayIndex int) *Deposit {
	for i := range o.Deposits {
		if o.Deposits[i].Reserve != nil && o.Deposits[i].Reserve.ArrayIndex == arrayIndex {
			return &o.Deposits[i]
		}
	}
	return nil
}

// BorrowForReserve returns the borrow entry for the given reserve array
// index, or nil if the obligation has no borrow there.
func (o *Obligation) BorrowForReserve(arrayIndex int) *Borrow {
	for i := range o.Borrows {
		if o.Borrows[i].Reserve != nil && o.Borrows[i].Reserve.ArrayIndex == arrayIndex {
			return &o.Borrows[i]
		}
	}
	return nil
}
