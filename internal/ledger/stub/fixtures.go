package stub

import "lendlab/internal/domain"

// DemoOwner is a valid owner address usable with the fixture market.
const DemoOwner = "11111111111111111111111111111111"

// Demo market asset types.
const (
	DemoSUI  = "0x2::sui::SUI"
	DemoUSDC = "0xdba3::usdc::USDC"
	DemoWETH = "0xaf8c::weth::WETH"
)

// SeedDemo populates the reader with a small fixture market: three
// reserves with reward streams, one obligation for DemoOwner, and accrual
// records with claimable balances on two assets.
func SeedDemo(r *Reader) {
	const (
		dayMs  = int64(24 * 60 * 60 * 1000)
		startMs = int64(1704067200000) // 2024-01-01 00:00:00 UTC
	)

	r.SetReserves([]*domain.Reserve{
		{
			CoinType:     DemoSUI,
			Symbol:       "SUI",
			MintDecimals: 9,
			Price:        2.0,
			ArrayIndex:   0,
			BorrowWeight: 1.0,
		},
		{
			CoinType:     DemoUSDC,
			Symbol:       "USDC",
			MintDecimals: 6,
			Price:        1.0,
			ArrayIndex:   1,
			BorrowWeight: 1.0,
			DepositRewards: []domain.PoolReward{
				{
					RewardIndex:               0,
					CoinType:                  DemoSUI,
					StartTimeMs:               startMs,
					EndTimeMs:                 startMs + 365*dayMs,
					TotalRewards:              5000,
					CumulativeRewardsPerShare: 7,
				},
			},
		},
		{
			CoinType:     DemoWETH,
			Symbol:       "WETH",
			MintDecimals: 8,
			Price:        3000.0,
			ArrayIndex:   2,
			BorrowWeight: 2.0,
			BorrowRewards: []domain.PoolReward{
				{
					RewardIndex:               0,
					CoinType:                  DemoUSDC,
					StartTimeMs:               startMs,
					EndTimeMs:                 startMs + 90*dayMs,
					TotalRewards:              20000,
					CumulativeRewardsPerShare: 4,
				},
			},
		},
	})

	r.AddObligation(DemoOwner, &domain.Obligation{
		ID:                         "demo-obligation-1",
		DepositedAmountUSD:         1000,
		BorrowedAmountUSD:          400,
		WeightedBorrowsUSD:         450,
		MaxPriceWeightedBorrowsUSD: 480,
		MinPriceBorrowLimitUSD:     500,
		UnhealthyBorrowValueUSD:    700,
	})

	r.SetAccruals("demo-obligation-1", []*domain.UserRewardAccrual{
		{
			ObligationID:                  "demo-obligation-1",
			ReserveArrayIndex:             1,
			RewardIndex:                   0,
			Side:                          domain.SideDeposit,
			Share:                         500_000_000,
			LastCumulativeRewardsPerShare: 3,
		},
		{
			ObligationID:                  "demo-obligation-1",
			ReserveArrayIndex:             2,
			RewardIndex:                   0,
			Side:                          domain.SideBorrow,
			Share:                         250_000,
			LastCumulativeRewardsPerShare: 2,
		},
	})

	r.SetMetadata(domain.CoinMetadata{CoinType: DemoSUI, Symbol: "SUI", Decimals: 9})
	r.SetMetadata(domain.CoinMetadata{CoinType: DemoUSDC, Symbol: "USDC", Decimals: 6})
	r.SetMetadata(domain.CoinMetadata{CoinType: DemoWETH, Symbol: "WETH", Decimals: 8})
}
