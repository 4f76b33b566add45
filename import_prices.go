package portfolio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// ImportSpec describes how to pull {date, price} pairs for one security out
// of a provider's JSON export. DatePath and PricePath are JSONPath
// expressions that must each select a list, element i of one matching
// element i of the other.
type ImportSpec struct {
	Security  string
	DatePath  string
	PricePath string
}

// ImportPrices extracts price points from an arbitrary JSON document and
// merges them into the series. Providers disagree wildly on export shapes;
// JSONPath keeps the engine out of that argument.
func ImportPrices(series *PriceSeries, r io.Reader, spec ImportSpec) (int, error) {
	var jobj any
	if err := json.NewDecoder(r).Decode(&jobj); err != nil {
		return 0, fmt.Errorf("error decoding import document: %w", err)
	}

	dates, err := jsonList(jobj, spec.DatePath)
	if err != nil {
		return 0, fmt.Errorf("error selecting dates for %q: %w", spec.Security, err)
	}
	prices, err := jsonList(jobj, spec.PricePath)
	if err != nil {
		return 0, fmt.Errorf("error selecting prices for %q: %w", spec.Security, err)
	}
	if len(dates) != len(prices) {
		return 0, fmt.Errorf("import for %q selected %d dates but %d prices", spec.Security, len(dates), len(prices))
	}

	n := 0
	for i := range dates {
		str, ok := dates[i].(string)
		if !ok {
			return n, fmt.Errorf("import for %q: date %v is not a string", spec.Security, dates[i])
		}
		on, err := ParseDate(str)
		if err != nil {
			return n, fmt.Errorf("import for %q: %w", spec.Security, err)
		}
		price, err := jsonDecimal(prices[i])
		if err != nil {
			return n, fmt.Errorf("import for %q on %s: %w", spec.Security, on, err)
		}
		if !price.IsPositive() {
			return n, fmt.Errorf("import for %q on %s: price must be positive", spec.Security, on)
		}
		series.Set(spec.Security, on, M(price, series.currency))
		n++
	}
	return n, nil
}

// jsonList evaluates a JSONPath expression and always returns a list:
// jsonpath is never clear about whether it returns a list of answers or a
// single answer.
func jsonList(jobj any, path string) ([]any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, err
	}
	if jlist, ok := jval.([]any); ok {
		return jlist, nil
	}
	return []any{jval}, nil
}

// jsonDecimal converts a selected JSON value to a decimal without a float64
// detour for string-encoded numbers.
func jsonDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case string:
		return decimal.NewFromString(n)
	case float64:
		return decimal.NewFromFloat(n), nil
	case json.Number:
		return decimal.NewFromString(n.String())
	default:
		return decimal.Decimal{}, fmt.Errorf("value %v is not a number", v)
	}
}
