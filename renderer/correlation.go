package renderer

import (
	"fmt"
	"strings"

	"github.com/quantfolio/portfolio"
)

// CorrelationMarkdown renders a symbol-by-symbol matrix as a markdown table.
// It works for correlation and covariance matrices alike.
func CorrelationMarkdown(title string, m *portfolio.RatioMatrix) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)

	fmt.Fprint(&b, "| |")
	for _, sym := range m.Symbols {
		fmt.Fprintf(&b, " %s |", sym)
	}
	fmt.Fprintln(&b)
	fmt.Fprint(&b, "|:---|")
	for range m.Symbols {
		fmt.Fprint(&b, "---:|")
	}
	fmt.Fprintln(&b)
	for i, sym := range m.Symbols {
		fmt.Fprintf(&b, "| **%s** |", sym)
		for j := range m.Symbols {
			fmt.Fprintf(&b, " %s |", m.Values[i][j].Round(4))
		}
		fmt.Fprintln(&b)
	}
	return b.String()
}
