package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/quantfolio/portfolio"
	"github.com/quantfolio/portfolio/renderer"
)

// corrCmd holds the flags for the 'corr' subcommand.
type corrCmd struct {
	date       string
	period     string
	start      string
	step       string
	covariance bool
}

func (*corrCmd) Name() string     { return "corr" }
func (*corrCmd) Synopsis() string { return "report the correlation matrix of the held securities" }
func (*corrCmd) Usage() string {
	return `pfa corr [-p <period> | -start <date>] [-d <date>] [-cov] [security...]

  Computes the pairwise correlation (or covariance with -cov) of the listed
  securities' period returns. Without arguments, every security in the
  ledger is included.
`
}

func (c *corrCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "End date for the report, defaults to today.")
	f.StringVar(&c.period, "p", portfolio.Yearly.String(), "reporting period (day, week, month, quarter, year)")
	f.StringVar(&c.start, "start", "", "Start date of the reporting period. Overrides -p.")
	f.StringVar(&c.step, "step", portfolio.Monthly.String(), "return sampling step inside the period")
	f.BoolVar(&c.covariance, "cov", false, "report covariances instead of correlations")
}

func (c *corrCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rng, err := parseRange(c.date, c.period, c.start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	step, err := portfolio.ParsePeriod(c.step)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing step: %v\n", err)
		return subcommands.ExitUsageError
	}

	series, err := securitySeries(f.Args(), rng, step)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var m *portfolio.RatioMatrix
	title := "Correlation"
	if c.covariance {
		title = "Covariance"
		m, err = portfolio.CovarianceMatrix(series)
	} else {
		m, err = portfolio.CorrelationMatrix(series)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing %s matrix: %v\n", title, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.CorrelationMarkdown(title, m))
	return subcommands.ExitSuccess
}

// securitySeries builds the per-security return series for the given
// symbols, defaulting to every security the ledger mentions.
func securitySeries(symbols []string, rng portfolio.Range, step portfolio.Period) (map[string]portfolio.ReturnSeries, error) {
	prices, err := DecodePrices()
	if err != nil {
		return nil, fmt.Errorf("loading prices: %w", err)
	}
	if len(symbols) == 0 {
		ledger, err := DecodeLedger()
		if err != nil {
			return nil, fmt.Errorf("loading ledger: %w", err)
		}
		for sec := range ledger.Securities() {
			symbols = append(symbols, sec)
		}
	}

	series := make(map[string]portfolio.ReturnSeries, len(symbols))
	for _, sym := range symbols {
		s, err := portfolio.SecurityReturns(prices, sym, rng, step)
		if err != nil {
			return nil, fmt.Errorf("computing returns for %q: %w", sym, err)
		}
		series[sym] = s
	}
	return series, nil
}
