package portfolio

import (
	"github.com/shopspring/decimal"
)

// ReturnPoint is one period return observed on a date.
type ReturnPoint struct {
	Date   Date
	Return Ratio
}

// ReturnSeries is a chronological series of period returns for one
// portfolio, security or benchmark.
type ReturnSeries []ReturnPoint

// Returns strips the dates off the series.
func (s ReturnSeries) Returns() []Ratio {
	out := make([]Ratio, len(s))
	for i, p := range s {
		out[i] = p.Return
	}
	return out
}

// aligned fails with a MisalignedSeriesError unless both series have the
// same length and the same dates in the same order. Statistics over two
// series are meaningless otherwise, so every pairwise operation checks first.
func aligned(a, b ReturnSeries) error {
	if len(a) != len(b) {
		return &MisalignedSeriesError{LenA: len(a), LenB: len(b), Detail: "length mismatch"}
	}
	for i := range a {
		if a[i].Date != b[i].Date {
			return &MisalignedSeriesError{
				LenA:   len(a),
				LenB:   len(b),
				Detail: "date mismatch: " + a[i].Date.String() + " vs " + b[i].Date.String(),
			}
		}
	}
	return nil
}

// Metric is a ratio that may be undefined: a Sharpe over zero volatility or
// a Calmar over a flat series has no value, and reporting 0 or Inf there
// would be worse than reporting nothing.
type Metric struct {
	Value Ratio
	Valid bool
}

func metric(v Ratio) Metric { return Metric{Value: v, Valid: true} }

// Drawdown is one peak-to-trough episode in a growth series.
type Drawdown struct {
	// Peak, Trough and End index the return series. Peak is the return that
	// set the peak value, -1 when the peak is the inception value before any
	// return. End is the period the previous peak was regained, meaningful
	// only when Recovered is set.
	Peak   int
	Trough int
	End    int

	// Depth is the peak-to-trough loss as a positive magnitude.
	Depth Ratio

	// Recovered reports whether the series climbed back to its previous
	// peak; RecoveryPeriods is the trough-to-recovery distance when it did.
	Recovered       bool
	RecoveryPeriods int
}

// RiskOptions tunes the risk metrics computation. The zero value picks
// monthly-period defaults.
type RiskOptions struct {
	// MinPeriods is the observation count under which InsufficientData is
	// flagged and the long-horizon ratios are left undefined. Default 36.
	MinPeriods int

	// PeriodsPerYear scales period figures to yearly ones. Default 12.
	PeriodsPerYear int

	// RiskFreeRate is the per-period risk-free rate used by Sharpe and as
	// the Sortino target. Default 0.
	RiskFreeRate Ratio

	// SterlingN is how many of the largest drawdowns Sterling averages
	// over. Default 3.
	SterlingN int
}

func (o RiskOptions) withDefaults() RiskOptions {
	if o.MinPeriods == 0 {
		o.MinPeriods = 36
	}
	if o.PeriodsPerYear == 0 {
		o.PeriodsPerYear = 12
	}
	if o.SterlingN == 0 {
		o.SterlingN = 3
	}
	return o
}

// RiskMetricsResult is the immutable output of ComputeRiskMetrics.
type RiskMetricsResult struct {
	Periods int

	// InsufficientData flags a series shorter than MinPeriods. Volatility
	// and drawdowns are still computed; Calmar and Sterling are not, since
	// a drawdown history that short says nothing.
	InsufficientData bool

	// Volatility is the annualized standard deviation of returns.
	Volatility Ratio

	// MaxDrawdown is the deepest peak-to-trough loss, positive magnitude.
	MaxDrawdown Ratio

	// Drawdowns lists every episode in chronological order.
	Drawdowns []Drawdown

	Sharpe   Metric
	Sortino  Metric
	Calmar   Metric
	Sterling Metric
}

// ComputeRiskMetrics derives volatility, drawdown and risk-adjusted return
// figures from a series of period returns. Every figure is computed in fixed
// point; undefined ratios come back as invalid metrics rather than zeros.
func ComputeRiskMetrics(returns []Ratio, opts RiskOptions) *RiskMetricsResult {
	opts = opts.withDefaults()
	result := &RiskMetricsResult{
		Periods:          len(returns),
		InsufficientData: len(returns) < opts.MinPeriods,
	}
	if len(returns) < 2 {
		result.InsufficientData = true
		return result
	}

	mean := meanRatio(returns)
	variance := sampleVariance(returns, mean)
	periodVol, _ := variance.Sqrt()
	annualFactor, _ := R(opts.PeriodsPerYear).Sqrt()
	result.Volatility = periodVol.Mul(annualFactor)

	result.Drawdowns = findDrawdowns(returns)
	for _, dd := range result.Drawdowns {
		if dd.Depth.GreaterThan(result.MaxDrawdown) {
			result.MaxDrawdown = dd.Depth
		}
	}

	excess := mean.Sub(opts.RiskFreeRate)
	if periodVol.IsPositive() {
		result.Sharpe = metric(excess.Div(periodVol).Mul(annualFactor).Round(18))
	}
	if downside := downsideDeviation(returns, opts.RiskFreeRate); downside.IsPositive() {
		result.Sortino = metric(excess.Div(downside).Mul(annualFactor).Round(18))
	}

	if result.InsufficientData {
		return result
	}
	annualized, ok := annualizeReturns(returns, opts.PeriodsPerYear)
	if !ok {
		return result
	}
	if result.MaxDrawdown.IsPositive() {
		result.Calmar = metric(annualized.Div(result.MaxDrawdown).Round(18))
	}
	if avg := averageLargestDrawdowns(result.Drawdowns, opts.SterlingN); avg.IsPositive() {
		result.Sterling = metric(annualized.Div(avg).Round(18))
	}
	return result
}

// Beta measures the sensitivity of the portfolio's returns to the
// benchmark's: the covariance of the two divided by the benchmark variance.
// A benchmark with zero variance has no beta against anything; that case
// returns zero and false, like an undefined correlation. Misaligned input
// fails with a MisalignedSeriesError.
func Beta(portfolio, benchmark ReturnSeries) (Ratio, bool, error) {
	if err := aligned(portfolio, benchmark); err != nil {
		return zero, false, err
	}
	p, b := portfolio.Returns(), benchmark.Returns()
	if len(b) < 2 {
		return zero, false, &MisalignedSeriesError{LenA: len(p), LenB: len(b), Detail: "need at least two observations"}
	}
	meanB := meanRatio(b)
	varB := sampleVariance(b, meanB)
	if varB.IsZero() {
		return zero, false, nil
	}
	cov := sampleCovariance(p, b, meanRatio(p), meanB)
	return cov.Div(varB).Round(18), true, nil
}

func meanRatio(values []Ratio) Ratio {
	var sum Ratio
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum.Div(R(len(values)))
}

// sampleVariance is the n-1 denominator variance.
func sampleVariance(values []Ratio, mean Ratio) Ratio {
	if len(values) < 2 {
		return zero
	}
	var sum Ratio
	for _, v := range values {
		d := v.Sub(mean)
		sum = sum.Add(d.Mul(d))
	}
	return sum.Div(R(len(values) - 1))
}

func sampleCovariance(a, b []Ratio, meanA, meanB Ratio) Ratio {
	if len(a) < 2 {
		return zero
	}
	var sum Ratio
	for i := range a {
		sum = sum.Add(a[i].Sub(meanA).Mul(b[i].Sub(meanB)))
	}
	return sum.Div(R(len(a) - 1))
}

// downsideDeviation is the root mean square of returns below the target,
// over all periods. Periods above the target count as zero deviation, they
// are not dropped from the denominator.
func downsideDeviation(returns []Ratio, target Ratio) Ratio {
	var sum Ratio
	for _, r := range returns {
		if r.LessThan(target) {
			d := r.Sub(target)
			sum = sum.Add(d.Mul(d))
		}
	}
	rms, _ := sum.Div(R(len(returns))).Sqrt()
	return rms
}

// findDrawdowns walks the cumulative growth of the return series and cuts it
// into peak-to-trough episodes. An episode opens when growth drops below the
// running peak and closes when the peak is regained; the last episode stays
// open, Recovered false, when the series ends under water.
func findDrawdowns(returns []Ratio) []Drawdown {
	growth := make([]Ratio, len(returns)+1)
	growth[0] = one
	for i, r := range returns {
		growth[i+1] = growth[i].Mul(one.Add(r))
	}

	var episodes []Drawdown
	peak := growth[0]
	peakIdx := -1 // the inception value precedes the first return
	open := -1 // index into episodes of the running drawdown
	for i := 1; i < len(growth); i++ {
		g := growth[i]
		if !g.LessThan(peak) {
			if open >= 0 {
				episodes[open].End = i - 1
				episodes[open].Recovered = true
				episodes[open].RecoveryPeriods = (i - 1) - episodes[open].Trough
				open = -1
			}
			peak = g
			peakIdx = i - 1
			continue
		}
		if peak.IsZero() {
			continue
		}
		depth := one.Sub(g.Div(peak))
		if open < 0 {
			episodes = append(episodes, Drawdown{Peak: peakIdx, Trough: i - 1, Depth: depth})
			open = len(episodes) - 1
		} else if depth.GreaterThan(episodes[open].Depth) {
			episodes[open].Trough = i - 1
			episodes[open].Depth = depth
		}
	}
	return episodes
}

func averageLargestDrawdowns(episodes []Drawdown, n int) Ratio {
	if len(episodes) == 0 {
		return zero
	}
	depths := make([]Ratio, len(episodes))
	for i, dd := range episodes {
		depths[i] = dd.Depth
	}
	// Selection sort of the top n, episode counts are tiny.
	if n > len(depths) {
		n = len(depths)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < len(depths); j++ {
			if depths[j].GreaterThan(depths[i]) {
				depths[i], depths[j] = depths[j], depths[i]
			}
		}
	}
	return meanRatio(depths[:n])
}

// annualizeReturns compounds the period returns and rescales the total
// growth to a yearly rate.
func annualizeReturns(returns []Ratio, periodsPerYear int) (Ratio, bool) {
	growth := one
	for _, r := range returns {
		growth = growth.Mul(one.Add(r))
	}
	if !growth.IsPositive() {
		return zero, false
	}
	exponent := decimal.NewFromInt(int64(periodsPerYear)).Div(decimal.NewFromInt(int64(len(returns))))
	annual, err := growth.value.PowWithPrecision(exponent, 20)
	if err != nil {
		return zero, false
	}
	return Ratio{value: annual}.Sub(one).Round(18), true
}
