package ledger

// Wire types for the lending market RPC. Raw integer amounts arrive as
// decimal strings; USD aggregates arrive as floats already scaled by the
// on-chain refresh.

type reserveResult struct {
	CoinType     string             `json:"coinType"`
	Symbol       string             `json:"symbol"`
	MintDecimals int                `json:"mintDecimals"`
	Price        float64            `json:"price"`
	ArrayIndex   int                `json:"arrayIndex"`
	BorrowWeight float64            `json:"borrowWeight"`
	DepositPool  []poolRewardResult `json:"depositRewards"`
	BorrowPool   []poolRewardResult `json:"borrowRewards"`
}

type poolRewardResult struct {
	RewardIndex               int     `json:"rewardIndex"`
	CoinType                  string  `json:"coinType"`
	StartTimeMs               int64   `json:"startTimeMs"`
	EndTimeMs                 int64   `json:"endTimeMs"`
	TotalRewards              float64 `json:"totalRewards"`
	AllocatedRewards          float64 `json:"allocatedRewards"`
	CumulativeRewardsPerShare float64 `json:"cumulativeRewardsPerShare"`
}

type obligationResult struct {
	ID                         string          `json:"id"`
	Deposits                   []depositResult `json:"deposits"`
	Borrows                    []borrowResult  `json:"borrows"`
	DepositedAmountUSD         float64         `json:"depositedAmountUsd"`
	BorrowedAmountUSD          float64         `json:"borrowedAmountUsd"`
	WeightedBorrowsUSD         float64         `json:"weightedBorrowsUsd"`
	MaxPriceWeightedBorrowsUSD float64         `json:"maxPriceWeightedBorrowsUsd"`
	MinPriceBorrowLimitUSD     float64         `json:"minPriceBorrowLimitUsd"`
	UnhealthyBorrowValueUSD    float64         `json:"unhealthyBorrowValueUsd"`
}

type depositResult struct {
	CoinType           string  `json:"coinType"`
	ReserveArrayIndex  int     `json:"reserveArrayIndex"`
	DepositedAmount    float64 `json:"depositedAmount"`
	DepositedAmountUSD float64 `json:"depositedAmountUsd"`
}

type borrowResult struct {
	CoinType          string  `json:"coinType"`
	ReserveArrayIndex int     `json:"reserveArrayIndex"`
	BorrowedAmount    float64 `json:"borrowedAmount"`
	BorrowedAmountUSD float64 `json:"borrowedAmountUsd"`
}

type accrualResult struct {
	ReserveArrayIndex             int     `json:"reserveArrayIndex"`
	RewardIndex                   int     `json:"rewardIndex"`
	Side                          string  `json:"side"`
	Share                         float64 `json:"share"`
	LastCumulativeRewardsPerShare float64 `json:"lastCumulativeRewardsPerShare"`
}

type coinMetadataResult struct {
	CoinType string `json:"coinType"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// priceNotification is one message on the price feed WebSocket.
type priceNotification struct {
	CoinType    string  `json:"coinType"`
	Price       float64 `json:"price"`
	TimestampMs int64   `json:"timestampMs"`
}
