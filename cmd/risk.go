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

// riskCmd holds the flags for the 'risk' subcommand.
type riskCmd struct {
	date       string
	period     string
	start      string
	step       string
	minPeriods int
	sterlingN  int
	riskFree   string
	benchmark  string
}

func (*riskCmd) Name() string     { return "risk" }
func (*riskCmd) Synopsis() string { return "report volatility, drawdowns and risk-adjusted ratios" }
func (*riskCmd) Usage() string {
	return `pfa risk [-p <period> | -start <date>] [-d <date>] [-benchmark <security>]

  Computes volatility, drawdown history and the Sharpe, Sortino, Calmar and
  Sterling ratios from the portfolio's period returns. With -benchmark it
  also reports beta against that security's price history.
`
}

func (c *riskCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "End date for the report, defaults to today.")
	f.StringVar(&c.period, "p", portfolio.Yearly.String(), "reporting period (day, week, month, quarter, year)")
	f.StringVar(&c.start, "start", "", "Start date of the reporting period. Overrides -p.")
	f.StringVar(&c.step, "step", portfolio.Monthly.String(), "return sampling step inside the period")
	f.IntVar(&c.minPeriods, "min-periods", 0, "observations required before long-horizon ratios are reported (default 36)")
	f.IntVar(&c.sterlingN, "sterling-n", 0, "number of largest drawdowns the Sterling ratio averages (default 3)")
	f.StringVar(&c.riskFree, "rf", "0", "per-period risk-free rate, e.g. 0.002")
	f.StringVar(&c.benchmark, "benchmark", "", "security whose price history serves as the beta benchmark")
}

func (c *riskCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	returns := portfolio.PortfolioReturns(points)

	opts := portfolio.RiskOptions{
		MinPeriods:     c.minPeriods,
		PeriodsPerYear: step.PeriodsPerYear(),
		RiskFreeRate:   riskFree,
		SterlingN:      c.sterlingN,
	}
	result := portfolio.ComputeRiskMetrics(returns.Returns(), opts)
	md := renderer.RiskMarkdown(result)

	if c.benchmark != "" {
		// The benchmark is priced at the same observation dates as the value
		// series, so both return series carry identical dates.
		bench, err := portfolio.BenchmarkReturns(prices, c.benchmark, points)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error computing benchmark returns: %v\n", err)
			return subcommands.ExitFailure
		}
		beta, ok, err := portfolio.Beta(returns, bench)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error computing beta: %v\n", err)
			return subcommands.ExitFailure
		}
		if ok {
			md += fmt.Sprintf("\n- Beta vs %s: %s\n", c.benchmark, beta.Round(2))
		} else {
			md += fmt.Sprintf("\n- Beta vs %s: undefined, the benchmark never moved\n", c.benchmark)
		}
	}

	printMarkdown(md)
	return subcommands.ExitSuccess
}
