package portfolio

import (
	"iter"

	"github.com/shopspring/decimal"
)

const (
	irrTolerance = "0.00000001" // 1e-8
	irrMaxIter   = 100

	daysPerYear = 365
)

// PeriodReturns converts a value series into flow-adjusted period returns:
// the return between two consecutive points with the flow of the later point
// stripped out, (end - flow) / start - 1. A sub-period starting from a zero
// value has no meaningful return and yields 0.
func PeriodReturns(points []ValuePoint) []Ratio {
	if len(points) < 2 {
		return nil
	}
	returns := make([]Ratio, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		returns = append(returns, subPeriodReturn(points[i-1], points[i]))
	}
	return returns
}

func subPeriodReturn(start, end ValuePoint) Ratio {
	if start.Value.IsZero() {
		return zero
	}
	return end.Value.Sub(end.Flow).DivMoney(start.Value).Sub(one)
}

// TimeWeightedReturn computes the cumulative time-weighted return of a value
// series. The series is split into sub-periods at every point, each external
// flow is stripped from its sub-period's ending value, and the sub-period
// growth factors are compounded. Flow timing therefore does not reward or
// punish the result, which is what makes the figure comparable across
// portfolios. Fewer than two points yield 0.
func TimeWeightedReturn(points []ValuePoint) Ratio {
	growth := one
	for _, r := range PeriodReturns(points) {
		growth = growth.Mul(one.Add(r))
	}
	return growth.Sub(one)
}

// AnnualizedReturn computes the time-weighted return of the series scaled to
// a yearly rate over the calendar span of the series. A span under one day
// or a non-positive cumulative growth yields 0 and false.
func AnnualizedReturn(points []ValuePoint) (Ratio, bool) {
	if len(points) < 2 {
		return zero, false
	}
	days := points[len(points)-1].Date.DaysSince(points[0].Date)
	if days < 1 {
		return zero, false
	}
	growth := one.Add(TimeWeightedReturn(points))
	if !growth.IsPositive() {
		return zero, false
	}
	exponent := decimal.NewFromInt(daysPerYear).Div(decimal.NewFromInt(int64(days)))
	annual, err := growth.value.PowWithPrecision(exponent, 20)
	if err != nil {
		return zero, false
	}
	return Ratio{value: annual}.Sub(one).Round(18), true
}

// MoneyWeightedReturn computes the annualized internal rate of return of the
// series: the discount rate at which the initial value, every external flow
// and the final value sum to zero. Unlike the time-weighted figure it rewards
// good flow timing, so it measures the investor rather than the portfolio.
//
// The root is found on the daily rate by Newton iteration with a bisection
// fallback, 1e-8 tolerance, capped at 100 iterations. Degenerate flows (all
// one sign) and failure to bracket or converge return ErrNoConvergence.
func MoneyWeightedReturn(points []ValuePoint) (Ratio, error) {
	if len(points) < 2 {
		return zero, ErrNoConvergence
	}

	start := points[0].Date
	type cashflow struct {
		amount Ratio
		days   int
	}
	var flows []cashflow
	// The investor pays in the opening value and every contribution, and
	// receives back the closing value.
	flows = append(flows, cashflow{amount: Ratio{value: points[0].Value.value}.Neg(), days: 0})
	for _, p := range points[1:] {
		if !p.Flow.IsZero() {
			flows = append(flows, cashflow{amount: Ratio{value: p.Flow.value}.Neg(), days: p.Date.DaysSince(start)})
		}
	}
	last := points[len(points)-1]
	flows = append(flows, cashflow{amount: Ratio{value: last.Value.value}, days: last.Date.DaysSince(start)})

	// An IRR only exists across a sign change.
	hasPositive, hasNegative := false, false
	for _, f := range flows {
		if f.amount.IsPositive() {
			hasPositive = true
		}
		if f.amount.IsNegative() {
			hasNegative = true
		}
	}
	if !hasPositive || !hasNegative {
		return zero, ErrNoConvergence
	}

	tol, _ := decimal.NewFromString(irrTolerance)
	npv := func(daily Ratio) Ratio {
		onePlus := one.Add(daily)
		var sum Ratio
		for _, f := range flows {
			sum = sum.Add(f.amount.Mul(reciprocalPower(onePlus, f.days)))
		}
		return sum
	}
	derivative := func(daily Ratio) Ratio {
		onePlus := one.Add(daily)
		var sum Ratio
		for _, f := range flows {
			if f.days == 0 {
				continue
			}
			term := f.amount.Mul(R(f.days)).Mul(reciprocalPower(onePlus, f.days+1))
			sum = sum.Sub(term)
		}
		return sum
	}

	// Bracket the root on the daily rate. The bounds correspond to yearly
	// rates far outside anything a portfolio produces.
	lo, _ := RatioFromString("-0.5")
	hi, _ := RatioFromString("0.5")
	flo, fhi := npv(lo), npv(hi)
	if flo.Mul(fhi).IsPositive() {
		return zero, ErrNoConvergence
	}

	daily := zero
	for i := 0; i < irrMaxIter; i++ {
		f := npv(daily)
		if f.Abs().value.LessThanOrEqual(tol) {
			return annualizeDaily(daily), nil
		}
		// Tighten the bracket with the current evaluation.
		if f.Mul(flo).IsNegative() {
			hi, fhi = daily, f
		} else {
			lo, flo = daily, f
		}

		next := daily
		d := derivative(daily)
		if !d.IsZero() {
			next = daily.Sub(f.Div(d))
		}
		if d.IsZero() || next.LessThan(lo) || next.GreaterThan(hi) {
			// Newton stepped out of the bracket, bisect instead.
			next = lo.Add(hi).Div(two)
		}
		if next.Sub(daily).Abs().value.LessThanOrEqual(tol) {
			return annualizeDaily(next), nil
		}
		daily = next
	}
	return zero, ErrNoConvergence
}

// annualizeDaily converts a daily rate to the yearly rate it compounds to.
func annualizeDaily(daily Ratio) Ratio {
	return one.Add(daily).Pow(daysPerYear).Sub(one).Round(18)
}

// reciprocalPower computes (1+r)^-n as a power of the reciprocal, with the
// intermediate products rounded so that discounting a decade of daily factors
// stays cheap and bounded. A factor that rounds away to zero stays zero: it
// only happens at extreme bracket rates where the discounted term is
// negligible anyway.
func reciprocalPower(onePlus Ratio, n int) Ratio {
	result := one
	base := Ratio{value: one.value.DivRound(onePlus.value, 34)}
	for ; n > 0; n >>= 1 {
		if n&1 == 1 {
			result = result.Mul(base).Round(24)
		}
		base = base.Mul(base).Round(24)
	}
	return result
}

// RollingReturns returns a lazy sequence of compounded returns over every
// window of `window` consecutive periods in the series. The sequence is
// restartable: ranging over it twice yields the same values. A window larger
// than the number of periods yields nothing.
func RollingReturns(points []ValuePoint, window int) iter.Seq[Ratio] {
	return func(yield func(Ratio) bool) {
		if window < 1 {
			return
		}
		returns := PeriodReturns(points)
		for i := 0; i+window <= len(returns); i++ {
			growth := one
			for _, r := range returns[i : i+window] {
				growth = growth.Mul(one.Add(r))
			}
			if !yield(growth.Sub(one)) {
				return
			}
		}
	}
}
