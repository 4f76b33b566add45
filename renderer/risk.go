package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/quantfolio/portfolio"
)

// RiskMarkdown renders the risk section plus the drawdown episode table.
func RiskMarkdown(r *portfolio.RiskMetricsResult) string {
	var b strings.Builder
	b.WriteString(renderTemplate("risk", "templates/report_risk.md", nil, r))

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprintln(w, "\n### Drawdowns")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Depth | Peak | Trough | Recovery |")
		fmt.Fprintln(w, "|---:|---:|---:|:---|")
		for _, dd := range r.Drawdowns {
			recovery := "never recovered"
			if dd.Recovered {
				recovery = fmt.Sprintf("%d periods", dd.RecoveryPeriods)
			}
			// Peak -1 is the inception value, before the first return.
			peak := "start"
			if dd.Peak >= 0 {
				peak = fmt.Sprintf("%d", dd.Peak)
			}
			fmt.Fprintf(w, "| %s | %s | %d | %s |\n", dd.Depth.Percent(), peak, dd.Trough, recovery)
		}
		return len(r.Drawdowns) > 0
	})
	return b.String()
}
