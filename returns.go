package portfolio

// SecurityReturns derives the period returns of a single security from its
// price history: one return per period boundary inside the range, each
// computed from the last known price on or before the boundary. A boundary
// with no price at all fails with a MissingPriceError.
func SecurityReturns(prices *PriceSeries, security string, rng Range, period Period) (ReturnSeries, error) {
	var series ReturnSeries
	prev := Money{}
	first := true
	for on := rng.From.EndOf(period); !on.After(rng.To); on = on.Add(1).EndOf(period) {
		price, err := prices.PriceAsOf(security, on)
		if err != nil {
			return nil, err
		}
		if !first {
			series = append(series, ReturnPoint{Date: on, Return: price.DivMoney(prev).Sub(one)})
		}
		prev = price
		first = false
	}
	return series, nil
}

// BenchmarkReturns derives a security's returns over the exact observation
// dates of a value series, so the result always aligns with PortfolioReturns
// over the same points. A value series also observes the range bounds and
// every flow date, so a benchmark sampled on its own period grid would never
// line up. A date with no price on or before it fails with a
// MissingPriceError.
func BenchmarkReturns(prices *PriceSeries, security string, points []ValuePoint) (ReturnSeries, error) {
	if len(points) < 2 {
		return nil, nil
	}
	prev, err := prices.PriceAsOf(security, points[0].Date)
	if err != nil {
		return nil, err
	}
	series := make(ReturnSeries, 0, len(points)-1)
	for _, p := range points[1:] {
		price, err := prices.PriceAsOf(security, p.Date)
		if err != nil {
			return nil, err
		}
		series = append(series, ReturnPoint{Date: p.Date, Return: price.DivMoney(prev).Sub(one)})
		prev = price
	}
	return series, nil
}

// ExpectedReturns estimates per-symbol expected returns as the mean period
// return of each series. A crude estimator, but the optimizer's inputs are
// estimates whatever the method.
func ExpectedReturns(series map[string]ReturnSeries) map[string]Ratio {
	expected := make(map[string]Ratio, len(series))
	for sym, s := range series {
		if len(s) == 0 {
			expected[sym] = zero
			continue
		}
		expected[sym] = meanRatio(s.Returns()).Round(18)
	}
	return expected
}

// PortfolioReturns converts a value series into a dated return series, the
// shape the risk and correlation calculators consume.
func PortfolioReturns(points []ValuePoint) ReturnSeries {
	if len(points) < 2 {
		return nil
	}
	series := make(ReturnSeries, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		series = append(series, ReturnPoint{Date: points[i].Date, Return: subPeriodReturn(points[i-1], points[i])})
	}
	return series
}
