package renderer

import (
	"fmt"
	"strings"

	"github.com/quantfolio/portfolio"
)

// FrontierMarkdown renders the optimization result: the three named
// portfolios with their weights, then the sampled frontier.
func FrontierMarkdown(r *portfolio.OptimizationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Efficient Frontier\n\n")

	writePoint(&b, "Minimum Variance", r.Symbols, r.MinimumVariance)
	writePoint(&b, "Tangency", r.Symbols, r.Tangency)
	writePoint(&b, "Maximum Return", r.Symbols, r.MaximumReturn)

	fmt.Fprintln(&b, "## Frontier")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "| Expected Return | Volatility | Sharpe |")
	fmt.Fprintln(&b, "|---:|---:|---:|")
	for _, pt := range r.Frontier {
		sharpe := "n/a"
		if pt.Sharpe.Valid {
			sharpe = pt.Sharpe.Value.Round(2).String()
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", pt.ExpectedReturn.Percent(), pt.Volatility.Percent(), sharpe)
	}
	return b.String()
}

func writePoint(b *strings.Builder, name string, symbols []string, pt portfolio.PortfolioPoint) {
	fmt.Fprintf(b, "## %s\n\n", name)
	fmt.Fprintf(b, "Expected return %s, volatility %s.\n\n", pt.ExpectedReturn.Percent(), pt.Volatility.Percent())
	for _, sym := range symbols {
		w := pt.Weights[sym]
		if w.IsZero() {
			continue
		}
		fmt.Fprintf(b, "- %s: %s\n", sym, w.Percent())
	}
	fmt.Fprintln(b)
}
