// Package cmd implements the CLI application to analyze a portfolio.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantfolio/portfolio"
)

// Commands lists every subcommand a main package should register.
var Commands = []subcommands.Command{
	&holdingsCmd{},
	&perfCmd{},
	&riskCmd{},
	&corrCmd{},
	&frontierCmd{},
	&importPricesCmd{},
	&topicCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var ledgerFile = flag.String("ledger-file", "transactions.jsonl", "Path to the ledger file containing transactions (JSONL format)")
var pricesFile = flag.String("prices-file", "prices.jsonl", "Path to the price history file (JSONL format)")
var currency = flag.String("currency", "EUR", "Reporting currency")

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if os.Getenv("PFA_DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// DecodeLedger loads the app ledger file.
func DecodeLedger() (*portfolio.Ledger, error) {
	f, err := os.Open(*ledgerFile)
	if err != nil {
		return nil, fmt.Errorf("opening ledger file %q: %w", *ledgerFile, err)
	}
	defer f.Close()
	return portfolio.DecodeLedger(f, *currency)
}

// DecodePrices loads the app price history file. A missing file is an empty
// history, so price-less workflows keep working.
func DecodePrices() (*portfolio.PriceSeries, error) {
	f, err := os.Open(*pricesFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("file", *pricesFile).Msg("price file does not exist, starting empty")
		return portfolio.NewPriceSeries(*currency), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening prices file %q: %w", *pricesFile, err)
	}
	defer f.Close()
	return portfolio.DecodePrices(f, *currency)
}

// EncodePrices writes the price history back to the app price file.
func EncodePrices(series *portfolio.PriceSeries) error {
	f, err := os.Create(*pricesFile)
	if err != nil {
		return fmt.Errorf("creating prices file %q: %w", *pricesFile, err)
	}
	defer f.Close()
	return portfolio.EncodePrices(f, series)
}

// printMarkdown renders markdown for the terminal when stdout is one, and
// passes it through verbatim when piped.
func printMarkdown(md string) {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Print(md)
		return
	}
	out, err := glamour.Render(md, "auto")
	if err != nil {
		log.Debug().Err(err).Msg("glamour rendering failed, printing raw markdown")
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// parseRange resolves the -d / -p / -start flag combination into a range,
// the way every reporting subcommand interprets them.
func parseRange(dateFlag, periodFlag, startFlag string) (portfolio.Range, error) {
	if dateFlag == "" {
		dateFlag = portfolio.Today().String()
	}
	end, err := portfolio.ParseDate(dateFlag)
	if err != nil {
		return portfolio.Range{}, fmt.Errorf("parsing end date: %w", err)
	}
	if startFlag != "" {
		start, err := portfolio.ParseDate(startFlag)
		if err != nil {
			return portfolio.Range{}, fmt.Errorf("parsing start date: %w", err)
		}
		return portfolio.NewRange(start, end), nil
	}
	p, err := portfolio.ParsePeriod(periodFlag)
	if err != nil {
		return portfolio.Range{}, fmt.Errorf("parsing period: %w", err)
	}
	return p.Range(end), nil
}
