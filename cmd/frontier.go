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

// frontierCmd holds the flags for the 'frontier' subcommand.
type frontierCmd struct {
	date     string
	period   string
	start    string
	step     string
	riskFree string
	short    bool
	points   int
}

func (*frontierCmd) Name() string     { return "frontier" }
func (*frontierCmd) Synopsis() string { return "compute the mean-variance efficient frontier" }
func (*frontierCmd) Usage() string {
	return `pfa frontier [-p <period> | -start <date>] [-d <date>] [security...]

  Estimates expected returns and covariances from the securities' price
  histories and computes the minimum-variance, tangency and maximum-return
  portfolios plus a sampled efficient frontier.
`
}

func (c *frontierCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "End date for the estimation window, defaults to today.")
	f.StringVar(&c.period, "p", portfolio.Yearly.String(), "estimation window (day, week, month, quarter, year)")
	f.StringVar(&c.start, "start", "", "Start date of the estimation window. Overrides -p.")
	f.StringVar(&c.step, "step", portfolio.Monthly.String(), "return sampling step inside the window")
	f.StringVar(&c.riskFree, "rf", "0", "per-period risk-free rate used by the tangency portfolio")
	f.BoolVar(&c.short, "short", false, "allow short positions (negative weights)")
	f.IntVar(&c.points, "points", 0, "number of frontier samples (default 50)")
}

func (c *frontierCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	riskFree, err := portfolio.RatioFromString(c.riskFree)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing risk-free rate: %v\n", err)
		return subcommands.ExitUsageError
	}

	series, err := securitySeries(f.Args(), rng, step)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	covariance, err := portfolio.CovarianceMatrix(series)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing covariance matrix: %v\n", err)
		return subcommands.ExitFailure
	}
	expected := portfolio.ExpectedReturns(series)

	result, err := portfolio.EfficientFrontier(expected, covariance, portfolio.OptimizeOptions{
		RiskFreeRate:   riskFree,
		AllowShort:     c.short,
		FrontierPoints: c.points,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error optimizing: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.FrontierMarkdown(result))
	return subcommands.ExitSuccess
}
