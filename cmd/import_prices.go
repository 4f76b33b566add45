package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/quantfolio/portfolio"
)

// importPricesCmd holds the flags for the 'import-prices' subcommand.
type importPricesCmd struct {
	security  string
	datePath  string
	pricePath string
	input     string
}

func (*importPricesCmd) Name() string     { return "import-prices" }
func (*importPricesCmd) Synopsis() string { return "import price history from a provider JSON export" }
func (*importPricesCmd) Usage() string {
	return `pfa import-prices -s <security> -dates <jsonpath> -prices <jsonpath> [-i <file>]

  Extracts {date, price} pairs from an arbitrary JSON document using two
  JSONPath expressions and merges them into the price file. Reads stdin when
  no input file is given.
`
}

func (c *importPricesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.security, "s", "", "Security the imported prices belong to.")
	f.StringVar(&c.datePath, "dates", "", "JSONPath selecting the list of dates.")
	f.StringVar(&c.pricePath, "prices", "", "JSONPath selecting the list of prices.")
	f.StringVar(&c.input, "i", "", "JSON document to import. Defaults to stdin.")
}

func (c *importPricesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.security == "" || c.datePath == "" || c.pricePath == "" {
		fmt.Fprintln(os.Stderr, "Error: -s, -dates and -prices are all required")
		return subcommands.ExitUsageError
	}

	in := os.Stdin
	if c.input != "" {
		var err error
		in, err = os.Open(c.input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input: %v\n", err)
			return subcommands.ExitFailure
		}
		defer in.Close()
	}

	series, err := DecodePrices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading prices: %v\n", err)
		return subcommands.ExitFailure
	}

	n, err := portfolio.ImportPrices(series, in, portfolio.ImportSpec{
		Security:  c.security,
		DatePath:  c.datePath,
		PricePath: c.pricePath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing prices: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := EncodePrices(series); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving prices: %v\n", err)
		return subcommands.ExitFailure
	}

	log.Info().Str("security", c.security).Int("points", n).Msg("imported prices")
	fmt.Printf("Successfully imported %d prices for %s\n", n, c.security)
	return subcommands.ExitSuccess
}
