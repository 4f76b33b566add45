package portfolio

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/mat"
)

const (
	// maxConditionNumber rejects covariance matrices too ill-conditioned to
	// invert meaningfully.
	maxConditionNumber = 1e12

	// clipTolerance bounds how negative a weight may be before the
	// long-only pass strips the asset from the active set.
	clipTolerance = 1e-9
	clipMaxIter   = 100

	defaultFrontierPoints = 50
)

// OptimizeOptions tunes the mean-variance optimization.
type OptimizeOptions struct {
	// RiskFreeRate is the per-period rate the tangency portfolio maximizes
	// excess return over. Default 0.
	RiskFreeRate Ratio

	// AllowShort skips the long-only pass and returns the unconstrained
	// analytical weights, negatives included.
	AllowShort bool

	// FrontierPoints is the number of target returns sampled between the
	// minimum-variance and maximum-return portfolios. Default 50.
	FrontierPoints int
}

// PortfolioPoint is one portfolio on or near the efficient frontier.
type PortfolioPoint struct {
	// Weights per symbol, summing to 1.
	Weights map[string]Ratio

	ExpectedReturn Ratio
	Volatility     Ratio

	// Sharpe is undefined for a zero-volatility portfolio.
	Sharpe Metric
}

// OptimizationResult is the immutable output of EfficientFrontier.
type OptimizationResult struct {
	Symbols []string

	MinimumVariance PortfolioPoint
	Tangency        PortfolioPoint
	MaximumReturn   PortfolioPoint

	// Frontier samples the efficient frontier from the minimum-variance
	// return up to the maximum single-asset return, in rising return order.
	Frontier []PortfolioPoint
}

// EfficientFrontier computes the mean-variance efficient frontier from
// per-symbol expected returns and their covariance matrix.
//
// This is the engine's one approximate component. The weight search runs in
// float64 through gonum because matrix inversion in fixed point buys nothing
// (the inputs are already estimates), but every reported figure is recomputed
// in fixed point from the final weights, so results are deterministic and
// weights sum to exactly 1. Long-only is enforced by iteratively clipping
// negative weights and re-solving on the remaining assets.
//
// A covariance matrix that fails Cholesky factorization or has a condition
// number above 1e12 fails with ErrSingularCovariance.
func EfficientFrontier(expectedReturns map[string]Ratio, covariance *RatioMatrix, opts OptimizeOptions) (*OptimizationResult, error) {
	symbols := covariance.Symbols
	if len(symbols) == 0 {
		return nil, fmt.Errorf("optimization needs at least one asset: %w", ErrSingularCovariance)
	}
	mu := make([]float64, len(symbols))
	for i, sym := range symbols {
		r, ok := expectedReturns[sym]
		if !ok {
			return nil, fmt.Errorf("no expected return for %q", sym)
		}
		mu[i] = r.InexactFloat64()
	}

	n := len(symbols)
	sigma := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sigma.SetSym(i, j, covariance.Values[i][j].InexactFloat64())
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(sigma) {
		return nil, ErrSingularCovariance
	}
	if cond := chol.Cond(); math.IsInf(cond, 0) || cond > maxConditionNumber {
		return nil, ErrSingularCovariance
	}

	rf := opts.RiskFreeRate.InexactFloat64()
	solver := &frontierSolver{
		symbols:    symbols,
		mu:         mu,
		sigma:      sigma,
		covariance: covariance,
		returns:    expectedReturns,
		riskFree:   opts.RiskFreeRate,
		longOnly:   !opts.AllowShort,
	}

	minVar, err := solver.solve(func(sub *activeProblem) ([]float64, error) {
		return sub.minimumVariance()
	})
	if err != nil {
		return nil, err
	}
	tangency, err := solver.solve(func(sub *activeProblem) ([]float64, error) {
		return sub.tangency(rf)
	})
	if err != nil {
		return nil, err
	}

	// The maximum-return portfolio is the single asset with the highest
	// expected return; with shorting allowed the problem is unbounded, so
	// the same corner is reported.
	best := 0
	for i := 1; i < n; i++ {
		if mu[i] > mu[best] {
			best = i
		}
	}
	maxWeights := make([]float64, n)
	maxWeights[best] = 1

	result := &OptimizationResult{
		Symbols:         symbols,
		MinimumVariance: solver.point(minVar),
		Tangency:        solver.point(tangency),
		MaximumReturn:   solver.point(maxWeights),
	}

	points := opts.FrontierPoints
	if points == 0 {
		points = defaultFrontierPoints
	}
	low := dot(mu, minVar)
	high := mu[best]
	for k := 0; k < points; k++ {
		target := low
		if points > 1 {
			target = low + (high-low)*float64(k)/float64(points-1)
		}
		w, err := solver.solve(func(sub *activeProblem) ([]float64, error) {
			return sub.targetReturn(target)
		})
		if err != nil {
			return nil, err
		}
		result.Frontier = append(result.Frontier, solver.point(w))
	}
	return result, nil
}

type frontierSolver struct {
	symbols    []string
	mu         []float64
	sigma      *mat.SymDense
	covariance *RatioMatrix
	returns    map[string]Ratio
	riskFree   Ratio
	longOnly   bool
}

// solve runs the given closed-form solver, enforcing the long-only
// constraint by dropping the most negative weight and re-solving on the
// remaining assets until all weights are non-negative.
func (s *frontierSolver) solve(form func(*activeProblem) ([]float64, error)) ([]float64, error) {
	active := make([]int, len(s.symbols))
	for i := range active {
		active[i] = i
	}
	for iter := 0; iter < clipMaxIter; iter++ {
		sub, err := s.problem(active)
		if err != nil {
			return nil, err
		}
		w, err := form(sub)
		if err != nil {
			return nil, err
		}
		if !s.longOnly {
			return scatter(w, active, len(s.symbols)), nil
		}
		worst, worstW := -1, -clipTolerance
		for i, wi := range w {
			if wi < worstW {
				worst, worstW = i, wi
			}
		}
		if worst < 0 {
			for i, wi := range w {
				if wi < 0 {
					w[i] = 0
				}
			}
			return scatter(w, active, len(s.symbols)), nil
		}
		if len(active) == 1 {
			return scatter([]float64{1}, active, len(s.symbols)), nil
		}
		active = append(active[:worst], active[worst+1:]...)
	}
	return nil, ErrNoConvergence
}

// problem extracts the sub-problem over the active assets and factorizes its
// covariance block.
func (s *frontierSolver) problem(active []int) (*activeProblem, error) {
	n := len(active)
	sub := mat.NewSymDense(n, nil)
	mu := make([]float64, n)
	for i, ai := range active {
		mu[i] = s.mu[ai]
		for j := i; j < n; j++ {
			sub.SetSym(i, j, s.sigma.At(ai, active[j]))
		}
	}
	p := &activeProblem{mu: mu}
	if !p.chol.Factorize(sub) {
		return nil, ErrSingularCovariance
	}
	return p, nil
}

// activeProblem is the mean-variance problem restricted to the current
// active set, with its covariance block factorized.
type activeProblem struct {
	mu   []float64
	chol mat.Cholesky
}

func (p *activeProblem) invApply(v []float64) ([]float64, error) {
	var out mat.VecDense
	if err := p.chol.SolveVecTo(&out, mat.NewVecDense(len(v), v)); err != nil {
		return nil, ErrSingularCovariance
	}
	return out.RawVector().Data, nil
}

// minimumVariance solves w = inv(S)*1 / (1'*inv(S)*1).
func (p *activeProblem) minimumVariance() ([]float64, error) {
	ones := make([]float64, len(p.mu))
	for i := range ones {
		ones[i] = 1
	}
	w, err := p.invApply(ones)
	if err != nil {
		return nil, err
	}
	return normalize(w)
}

// tangency solves w = inv(S)*(mu - rf*1), normalized to sum 1.
func (p *activeProblem) tangency(rf float64) ([]float64, error) {
	excess := make([]float64, len(p.mu))
	for i, m := range p.mu {
		excess[i] = m - rf
	}
	w, err := p.invApply(excess)
	if err != nil {
		return nil, err
	}
	return normalize(w)
}

// targetReturn solves the two-constraint problem (weights sum to 1, expected
// return hits the target) by the two-fund theorem.
func (p *activeProblem) targetReturn(target float64) ([]float64, error) {
	n := len(p.mu)
	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	invOnes, err := p.invApply(ones)
	if err != nil {
		return nil, err
	}
	invMu, err := p.invApply(p.mu)
	if err != nil {
		return nil, err
	}
	a := dot(ones, invOnes)
	b := dot(ones, invMu)
	c := dot(p.mu, invMu)
	d := a*c - b*b
	if math.Abs(d) < 1e-18 {
		// Degenerate frontier (all assets share one expected return);
		// every feasible portfolio hits the target.
		return normalize(invOnes)
	}
	lambda := (c - b*target) / d
	gamma := (a*target - b) / d
	w := make([]float64, n)
	for i := range w {
		w[i] = lambda*invOnes[i] + gamma*invMu[i]
	}
	return w, nil
}

func normalize(w []float64) ([]float64, error) {
	var sum float64
	for _, wi := range w {
		sum += wi
	}
	if math.Abs(sum) < 1e-12 {
		return nil, ErrNoConvergence
	}
	for i := range w {
		w[i] /= sum
	}
	return w, nil
}

func scatter(w []float64, active []int, n int) []float64 {
	full := make([]float64, n)
	for i, ai := range active {
		full[ai] = w[i]
	}
	return full
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// point converts float weights into the reported portfolio: weights as fixed
// point summing to exactly 1, with expected return, volatility and Sharpe
// recomputed in fixed point from the covariance inputs.
func (s *frontierSolver) point(w []float64) PortfolioPoint {
	weights := make([]Ratio, len(w))
	var sum Ratio
	for i, wi := range w {
		weights[i] = Ratio{value: decimal.NewFromFloat(wi)}.Round(12)
		sum = sum.Add(weights[i])
	}
	if !sum.IsZero() && !sum.Equal(one) {
		// Rounding residue goes to the largest weight so the total is
		// exactly 1.
		largest := 0
		for i := range weights {
			if weights[i].GreaterThan(weights[largest]) {
				largest = i
			}
		}
		weights[largest] = weights[largest].Add(one.Sub(sum))
	}

	pt := PortfolioPoint{Weights: make(map[string]Ratio, len(w))}
	var variance Ratio
	for i, sym := range s.symbols {
		pt.Weights[sym] = weights[i]
		pt.ExpectedReturn = pt.ExpectedReturn.Add(weights[i].Mul(s.returns[sym]))
		for j := range s.symbols {
			variance = variance.Add(weights[i].Mul(weights[j]).Mul(s.covariance.Values[i][j]))
		}
	}
	pt.ExpectedReturn = pt.ExpectedReturn.Round(18)
	vol, ok := variance.Round(24).Sqrt()
	if ok {
		pt.Volatility = vol
	}
	if pt.Volatility.IsPositive() {
		pt.Sharpe = metric(pt.ExpectedReturn.Sub(s.riskFree).Div(pt.Volatility).Round(18))
	}
	return pt
}
