package renderer

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/quantfolio/portfolio"
)

// HoldingsMarkdown renders a detailed holdings report: aggregate positions,
// the per-account breakdown when more than one account holds something, and
// realized gains per security.
func HoldingsMarkdown(hr *portfolio.HoldingsResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Holdings on %s\n\n", hr.AsOf)

	fmt.Fprintln(&b, "| Security | Quantity | Cost Basis | Market Value | Unrealized |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|")
	for _, h := range hr.Holdings {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			h.Security, h.Quantity, h.CostBasis, h.MarketValue, h.UnrealizedGainLoss.SignedString())
	}
	fmt.Fprintf(&b, "\n- Cash: %s\n", hr.Cash)
	fmt.Fprintf(&b, "- Liabilities: %s\n", hr.Liabilities)
	fmt.Fprintf(&b, "- Total value: %s\n", hr.TotalValue())

	ConditionalBlock(&b, func(w io.Writer) bool {
		accounts := make(map[string]bool)
		fmt.Fprintln(w, "\n## By Account")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Account | Security | Quantity | Cost Basis |")
		fmt.Fprintln(w, "|:---|:---|---:|---:|")
		for _, ah := range hr.ByAccount {
			accounts[ah.Account] = true
			fmt.Fprintf(w, "| %s | %s | %s | %s |\n", ah.Account, ah.Security, ah.Quantity, ah.CostBasis)
		}
		return len(accounts) > 1
	})

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprintln(w, "\n## Realized Gains")
		fmt.Fprintln(w)
		secs := make([]string, 0, len(hr.RealizedBySecurity))
		for sec := range hr.RealizedBySecurity {
			secs = append(secs, sec)
		}
		sort.Strings(secs)
		for _, sec := range secs {
			fmt.Fprintf(w, "- %s: %s\n", sec, hr.RealizedBySecurity[sec].SignedString())
		}
		fmt.Fprintf(w, "- Total: %s\n", hr.Realized.SignedString())
		return len(secs) > 0
	})

	return b.String()
}
