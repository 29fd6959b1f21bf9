package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the position rows as CSV string.
func RenderCSV(positions []PositionRow) string {
	var sb strings.Builder

	sb.WriteString("obligation_id,deposited_usd,borrowed_usd,weighted_borrows_usd,risk_state\n")

	for _, p := range positions {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.6f,%.6f,%s\n",
			p.ObligationID,
			p.DepositedAmountUSD,
			p.BorrowedAmountUSD,
			p.WeightedBorrowsUSD,
			p.RiskState,
		))
	}

	return sb.String()
}

// RenderYieldCSV renders the yield rows as CSV string.
func RenderYieldCSV(yields []YieldRow) string {
	var sb strings.Builder

	sb.WriteString("obligation_id,reserve_coin_type,side,apr_percent\n")

	for _, y := range yields {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%.6f\n",
			y.ObligationID,
			y.ReserveCoinType,
			y.Side,
			y.APRPercent,
		))
	}

	return sb.String()
}
