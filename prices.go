package portfolio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"sort"

	"github.com/shopspring/decimal"
)

// pricePoint is a single known price for a security.
type pricePoint struct {
	on    Date
	price Money
}

// PriceSeries holds the known prices per security, supplied by an external
// market-data collaborator. The engine only reads it; a missing price is an
// input error, never a guess.
type PriceSeries struct {
	currency string
	points   map[string][]pricePoint // sorted by date per security
}

// NewPriceSeries returns an empty price series in the given currency.
func NewPriceSeries(currency string) *PriceSeries {
	return &PriceSeries{currency: currency, points: make(map[string][]pricePoint)}
}

// Currency returns the currency prices are quoted in.
func (p *PriceSeries) Currency() string { return p.currency }

// Set records the price of a security on a date, replacing any previous
// price for that date.
func (p *PriceSeries) Set(security string, on Date, price Money) {
	pts := p.points[security]
	i := sort.Search(len(pts), func(i int) bool { return !pts[i].on.Before(on) })
	if i < len(pts) && pts[i].on == on {
		pts[i].price = price
	} else {
		pts = append(pts, pricePoint{})
		copy(pts[i+1:], pts[i:])
		pts[i] = pricePoint{on: on, price: price}
	}
	p.points[security] = pts
}

// PriceAsOf returns the last known price for a security on or before the
// given date. It returns a MissingPriceError when no such price exists.
func (p *PriceSeries) PriceAsOf(security string, on Date) (Money, error) {
	pts := p.points[security]
	i := sort.Search(len(pts), func(i int) bool { return pts[i].on.After(on) })
	if i == 0 {
		return Money{}, &MissingPriceError{Security: security, Date: on}
	}
	return pts[i-1].price, nil
}

// Securities returns an iterator over all securities with at least one
// known price, in unspecified order.
func (p *PriceSeries) Securities() iter.Seq[string] {
	return func(yield func(string) bool) {
		for sec := range p.points {
			if !yield(sec) {
				return
			}
		}
	}
}

// jsonPrice is the wire shape of one price point.
type jsonPrice struct {
	Security string          `json:"security"`
	Date     Date            `json:"date"`
	Price    decimal.Decimal `json:"price"`
}

// DecodePrices reads a JSONL stream of price points into a PriceSeries.
func DecodePrices(r io.Reader, currency string) (*PriceSeries, error) {
	series := NewPriceSeries(currency)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue
		}
		var j jsonPrice
		if err := json.Unmarshal(lineBytes, &j); err != nil {
			return nil, fmt.Errorf("line %d: could not decode price: %w", line, err)
		}
		if j.Security == "" {
			return nil, fmt.Errorf("line %d: price point has no security", line)
		}
		if !j.Price.IsPositive() {
			return nil, fmt.Errorf("line %d: price for %s must be positive", line, j.Security)
		}
		series.Set(j.Security, j.Date, M(j.Price, currency))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading prices: %w", err)
	}
	return series, nil
}

// EncodePrices writes the series as JSONL, securities sorted by name and
// dates ascending, so output is canonical.
func EncodePrices(w io.Writer, p *PriceSeries) error {
	secs := make([]string, 0, len(p.points))
	for sec := range p.points {
		secs = append(secs, sec)
	}
	sort.Strings(secs)
	for _, sec := range secs {
		for _, pt := range p.points[sec] {
			data, err := json.Marshal(jsonPrice{Security: sec, Date: pt.on, Price: pt.price.value})
			if err != nil {
				return fmt.Errorf("failed to marshal price: %w", err)
			}
			if _, err := w.Write(append(data, '\n')); err != nil {
				return fmt.Errorf("failed to write price: %w", err)
			}
		}
	}
	return nil
}
