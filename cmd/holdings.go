package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/quantfolio/portfolio"
	"github.com/quantfolio/portfolio/renderer"
)

// holdingsCmd holds the flags for the 'holdings' subcommand.
type holdingsCmd struct {
	date     string
	exclude  string
	noPrices bool
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "display detailed holdings for a specific date" }
func (*holdingsCmd) Usage() string {
	return `pfa holdings [-d <date>] [-x <accounts>]

  Displays the portfolio positions, cash and realized gains on a given date,
  with market values from the price file.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date for the holdings report, defaults to today.")
	f.StringVar(&c.exclude, "x", "", "Comma-separated accounts to exclude from aggregates.")
	f.BoolVar(&c.noPrices, "no-prices", false, "skip market valuation, report quantities and cost basis only")
}

func (c *holdingsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.date == "" {
		c.date = portfolio.Today().String()
	}
	on, err := portfolio.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
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

	opts := portfolio.HoldingsOptions{SkipValuation: c.noPrices}
	if c.exclude != "" {
		opts.ExcludedAccounts = strings.Split(c.exclude, ",")
	}
	report, err := portfolio.ComputeHoldings(ledger, on, prices, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing holdings: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.HoldingsMarkdown(report))
	return subcommands.ExitSuccess
}
