package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Position Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Owner: %s | As of (ms): %d\n\n", r.Owner, r.AsOfMs))

	// Positions
	sb.WriteString("## Positions\n\n")
	if len(r.Positions) > 0 {
		sb.WriteString("| Obligation | Deposited USD | Borrowed USD | Weighted Borrows USD | State |\n")
		sb.WriteString("|------------|---------------|--------------|----------------------|-------|\n")
		for _, p := range r.Positions {
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.2f | %s |\n",
				p.ObligationID, p.DepositedAmountUSD, p.BorrowedAmountUSD,
				p.WeightedBorrowsUSD, p.RiskState))
		}
		sb.WriteString("\n")

		for _, p := range r.Positions {
			sb.WriteString(fmt.Sprintf("### Utilization: %s\n\n", p.ObligationID))
			sb.WriteString("| Band | Width % |\n")
			sb.WriteString("|------|--------|\n")
			for _, seg := range p.Segments {
				sb.WriteString(fmt.Sprintf("| %s | %.2f |\n", seg.Kind, seg.WidthPct))
			}
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString("No open positions.\n\n")
	}

	// Claimable rewards
	sb.WriteString("## Claimable Rewards\n\n")
	if len(r.Rewards) > 0 {
		sb.WriteString("| Asset | Symbol | Amount | Raw | Claims |\n")
		sb.WriteString("|-------|--------|--------|-----|--------|\n")
		for _, rw := range r.Rewards {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.6f | %s | %d |\n",
				rw.CoinType, rw.Symbol, rw.Amount, rw.RawAmount, rw.Claims))
		}
	} else {
		sb.WriteString("Nothing to claim.\n")
	}
	sb.WriteString("\n")

	if len(r.SkippedStreams) > 0 {
		sb.WriteString("### Skipped Streams\n\n")
		for _, s := range r.SkippedStreams {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", s.CoinType, s.Reason))
		}
		sb.WriteString("\n")
	}

	// Yields
	sb.WriteString("## Reward Yields\n\n")
	if len(r.Yields) > 0 {
		sb.WriteString("| Obligation | Reserve | Side | APR % |\n")
		sb.WriteString("|------------|---------|------|-------|\n")
		for _, y := range r.Yields {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.2f |\n",
				y.ObligationID, y.ReserveSymbol, y.Side, y.APRPercent))
		}
	} else {
		sb.WriteString("No yield estimates available.\n")
	}
	sb.WriteString("\n")

	// Claim history
	sb.WriteString("## Claim History\n\n")
	if len(r.ClaimHistory) > 0 {
		sb.WriteString("| Plan | Mode | Target | Consolidated | Status | Digest | Submitted (ms) |\n")
		sb.WriteString("|------|------|--------|--------------|--------|--------|----------------|\n")
		for _, c := range r.ClaimHistory {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d/%d | %s | %s | %d |\n",
				shortID(c.PlanID), c.Mode, c.TargetCoinType,
				c.AssetsConsolidated, c.AssetsRequested, c.Status, c.Digest, c.SubmittedAtMs))
		}
	} else {
		sb.WriteString("No claims recorded.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
