package portfolio

import "sort"

// ValuePoint is one observation of the portfolio: its total value on a date
// and the net external flow (contributions minus withdrawals) booked on that
// same date. Produced by the holdings calculator, consumed by the
// performance calculator, immutable once produced.
type ValuePoint struct {
	Date  Date
	Value Money
	Flow  Money
}

// BuildValueSeries values the portfolio at every period boundary inside the
// range, plus every date carrying an external flow, and returns the
// chronological series of value points.
func BuildValueSeries(ledger *Ledger, prices *PriceSeries, rng Range, period Period, opts HoldingsOptions) ([]ValuePoint, error) {
	// Collect observation dates: period ends within the range, flow dates,
	// and both range bounds.
	dates := map[Date]struct{}{rng.From: {}, rng.To: {}}
	for d := rng.From.EndOf(period); !d.After(rng.To); d = d.Add(1).EndOf(period) {
		dates[d] = struct{}{}
	}
	flows := make(map[Date]Money)
	for tx := range ledger.All() {
		if !tx.IsExternalFlow() || !rng.Contains(tx.Date) || opts.excluded(tx.Account) {
			continue
		}
		dates[tx.Date] = struct{}{}
		flows[tx.Date] = flows[tx.Date].Add(tx.Flow())
	}

	ordered := make([]Date, 0, len(dates))
	for d := range dates {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	points := make([]ValuePoint, 0, len(ordered))
	for _, on := range ordered {
		hr, err := ComputeHoldings(ledger, on, prices, opts)
		if err != nil {
			return nil, err
		}
		points = append(points, ValuePoint{Date: on, Value: hr.TotalValue(), Flow: flows[on]})
	}
	return points, nil
}
