package portfolio

import (
	"iter"
	"sort"
)

// Correlation computes the Pearson correlation of two aligned return series
// in fixed point. A series with zero variance has no correlation with
// anything; that case returns zero and false. Misaligned input fails with a
// MisalignedSeriesError.
func Correlation(a, b ReturnSeries) (Ratio, bool, error) {
	if err := aligned(a, b); err != nil {
		return zero, false, err
	}
	ra, rb := a.Returns(), b.Returns()
	if len(ra) < 2 {
		return zero, false, &MisalignedSeriesError{LenA: len(ra), LenB: len(rb), Detail: "need at least two observations"}
	}
	meanA, meanB := meanRatio(ra), meanRatio(rb)
	cov := sampleCovariance(ra, rb, meanA, meanB)
	varA := sampleVariance(ra, meanA)
	varB := sampleVariance(rb, meanB)
	if varA.IsZero() || varB.IsZero() {
		return zero, false, nil
	}
	denom, ok := varA.Mul(varB).Sqrt()
	if !ok || denom.IsZero() {
		return zero, false, nil
	}
	return cov.Div(denom).Round(18), true, nil
}

// RatioMatrix is a square symmetric matrix of ratios keyed by symbol.
type RatioMatrix struct {
	Symbols []string // sorted
	Values  [][]Ratio
	index   map[string]int
}

// At returns the entry for a pair of symbols, false when either is unknown.
func (m *RatioMatrix) At(a, b string) (Ratio, bool) {
	i, oki := m.index[a]
	j, okj := m.index[b]
	if !oki || !okj {
		return zero, false
	}
	return m.Values[i][j], true
}

func newRatioMatrix(series map[string]ReturnSeries) *RatioMatrix {
	symbols := make([]string, 0, len(series))
	for sym := range series {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	m := &RatioMatrix{Symbols: symbols, index: make(map[string]int, len(symbols))}
	m.Values = make([][]Ratio, len(symbols))
	for i, sym := range symbols {
		m.index[sym] = i
		m.Values[i] = make([]Ratio, len(symbols))
	}
	return m
}

// checkAligned verifies that every series in the map lines up with every
// other. One pass against the first symbol suffices: alignment is transitive.
func checkAligned(m *RatioMatrix, series map[string]ReturnSeries) error {
	if len(m.Symbols) == 0 {
		return nil
	}
	first := series[m.Symbols[0]]
	for _, sym := range m.Symbols[1:] {
		if err := aligned(first, series[sym]); err != nil {
			return err
		}
	}
	return nil
}

// CorrelationMatrix computes the pairwise Pearson correlations of the given
// return series. The matrix is symmetric with the upper triangle computed
// once and mirrored, and the diagonal is exactly 1 regardless of rounding. A
// pair with an undefined correlation (zero variance) is left at zero.
func CorrelationMatrix(series map[string]ReturnSeries) (*RatioMatrix, error) {
	m := newRatioMatrix(series)
	if err := checkAligned(m, series); err != nil {
		return nil, err
	}
	for i, a := range m.Symbols {
		m.Values[i][i] = one
		for j := i + 1; j < len(m.Symbols); j++ {
			corr, ok, err := Correlation(series[a], series[m.Symbols[j]])
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			m.Values[i][j] = corr
			m.Values[j][i] = corr
		}
	}
	return m, nil
}

// CovarianceMatrix computes the pairwise sample covariances of the given
// return series, symmetric by the same mirrored upper triangle.
func CovarianceMatrix(series map[string]ReturnSeries) (*RatioMatrix, error) {
	m := newRatioMatrix(series)
	if err := checkAligned(m, series); err != nil {
		return nil, err
	}
	means := make([]Ratio, len(m.Symbols))
	returns := make([][]Ratio, len(m.Symbols))
	for i, sym := range m.Symbols {
		returns[i] = series[sym].Returns()
		if len(returns[i]) < 2 {
			return nil, &MisalignedSeriesError{LenA: len(returns[i]), LenB: len(returns[i]), Detail: "need at least two observations"}
		}
		means[i] = meanRatio(returns[i])
	}
	for i := range m.Symbols {
		for j := i; j < len(m.Symbols); j++ {
			cov := sampleCovariance(returns[i], returns[j], means[i], means[j]).Round(18)
			m.Values[i][j] = cov
			m.Values[j][i] = cov
		}
	}
	return m, nil
}

// RollingCorrelation returns a lazy, restartable sequence of Pearson
// correlations over every window of `window` consecutive observations.
// Windows with an undefined correlation yield zero, keeping the sequence
// aligned with the window positions.
func RollingCorrelation(a, b ReturnSeries, window int) (iter.Seq[Ratio], error) {
	if err := aligned(a, b); err != nil {
		return nil, err
	}
	if window < 2 {
		return nil, &MisalignedSeriesError{LenA: len(a), LenB: len(b), Detail: "window must hold at least two observations"}
	}
	return func(yield func(Ratio) bool) {
		for i := 0; i+window <= len(a); i++ {
			corr, _, err := Correlation(a[i:i+window], b[i:i+window])
			if err != nil {
				return
			}
			if !yield(corr) {
				return
			}
		}
	}, nil
}
