package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/quantfolio/portfolio"
	"github.com/quantfolio/portfolio/renderer"
)

// perfCmd holds the flags for the 'perf' subcommand.
type perfCmd struct {
	date   string
	period string
	start  string
	step   string
}

func (*perfCmd) Name() string     { return "perf" }
func (*perfCmd) Synopsis() string { return "report time- and money-weighted returns" }
func (*perfCmd) Usage() string {
	return `pfa perf [-p <period> | -start <date>] [-d <date>]

  Computes the time-weighted and money-weighted returns of the portfolio over
  the reporting period, valued at every step boundary and external flow.
`
}

func (c *perfCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "End date for the report, defaults to today.")
	f.StringVar(&c.period, "p", portfolio.Yearly.String(), "reporting period (day, week, month, quarter, year)")
	f.StringVar(&c.start, "start", "", "Start date of the reporting period. Overrides -p.")
	f.StringVar(&c.step, "step", portfolio.Monthly.String(), "valuation step inside the period")
}

func (c *perfCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	prices, err := DecodePrices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading prices: %v\n", err)
		return subcommands.ExitFailure
	}

	points, err := portfolio.BuildValueSeries(ledger, prices, rng, step, portfolio.HoldingsOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error valuing portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	summary := &renderer.PerformanceSummary{
		Range:        rng,
		TimeWeighted: portfolio.TimeWeightedReturn(points),
	}
	if annual, ok := portfolio.AnnualizedReturn(points); ok {
		summary.Annualized = portfolio.Metric{Value: annual, Valid: true}
	}
	mwr, err := portfolio.MoneyWeightedReturn(points)
	switch {
	case errors.Is(err, portfolio.ErrNoConvergence):
		// A portfolio with one-sided flows has no internal rate; report
		// the rest anyway.
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error computing money-weighted return: %v\n", err)
		return subcommands.ExitFailure
	default:
		summary.MoneyWeighted = portfolio.Metric{Value: mwr, Valid: true}
	}

	printMarkdown(renderer.PerformanceMarkdown(summary))
	return subcommands.ExitSuccess
}
