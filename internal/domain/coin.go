package domain

import "math/big"

// Coin is an in-plan coin object: an amount of one asset produced by a
// claim or swap command and consumed by a later command. Amounts are
// protocol-integer-scaled.
type Coin struct {
	CoinType  string
	RawAmount *big.Int
}

// NewCoin creates a coin with a defensive copy of the amount.
func NewCoin(coinType string, rawAmount *big.Int) *Coin {
	c := &Coin{CoinType: coinType, RawAmount: new(big.Int)}
	if rawAmount != nil {
		c.RawAmount.Set(rawAmount)
	}
	return c
}

// Merge folds other into c. Merging is associative and commutative over
// coins of the same asset; merging a different asset is a programming
// error and is ignored.
func (c *Coin) Merge(other *Coin) {
	if other == nil || other.CoinType != c.CoinType || other.RawAmount == nil {
		return
	}
	c.RawAmount.Add(c.RawAmount, other.RawAmount)
}

// IsZero reports whether the coin carries no value.
func (c *Coin) IsZero() bool {
	return c == nil || c.RawAmount == nil || c.RawAmount.Sign() == 0
}

// Route is an opaque swap route returned by the quote provider.
type Route struct {
	FromCoinType string
	ToCoinType   string
	AmountIn     *big.Int
	// ExpectedOut is the provider's quoted output before slippage.
	ExpectedOut *big.Int
	// Provider is the routing venue identifier, informational only.
	Provider string
}
