package portfolio

import (
	"math"

	"github.com/shopspring/decimal"
)

// Ratio is a unitless fixed-point number: a period return, a correlation, a
// portfolio weight. Like Money and Quantity it wraps decimal.Decimal so that
// no return ratio ever goes through binary floating point.
type Ratio struct {
	value decimal.Decimal
}

func R[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Ratio {
	return Ratio{value: newDecimal(value)}
}

// RatioFromString parses a decimal literal such as "0.0125".
func RatioFromString(s string) (Ratio, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Ratio{}, err
	}
	return Ratio{value: d}, nil
}

func (r Ratio) Add(p Ratio) Ratio           { return Ratio{value: r.value.Add(p.value)} }
func (r Ratio) Sub(p Ratio) Ratio           { return Ratio{value: r.value.Sub(p.value)} }
func (r Ratio) Mul(p Ratio) Ratio           { return Ratio{value: r.value.Mul(p.value)} }
func (r Ratio) Div(p Ratio) Ratio           { return Ratio{value: r.value.Div(p.value)} }
func (r Ratio) Neg() Ratio                  { return Ratio{value: r.value.Neg()} }
func (r Ratio) Abs() Ratio                  { return Ratio{value: r.value.Abs()} }
func (r Ratio) Equal(p Ratio) bool          { return r.value.Equal(p.value) }
func (r Ratio) LessThan(p Ratio) bool       { return r.value.LessThan(p.value) }
func (r Ratio) GreaterThan(p Ratio) bool    { return r.value.GreaterThan(p.value) }
func (r Ratio) IsZero() bool                { return r.value.IsZero() }
func (r Ratio) IsNegative() bool            { return r.value.IsNegative() }
func (r Ratio) IsPositive() bool            { return r.value.IsPositive() }
func (r Ratio) Cmp(p Ratio) int             { return r.value.Cmp(p.value) }
func (r Ratio) Round(places int32) Ratio    { return Ratio{value: r.value.Round(places)} }
func (r Ratio) String() string              { return r.value.String() }
func (r Ratio) Percent() Percent            { return Percent(100 * r.value.InexactFloat64()) }

// InexactFloat64 crosses to float64. Only the optimizer boundary is allowed
// to use it; everything else stays in fixed point.
func (r Ratio) InexactFloat64() float64 { return r.value.InexactFloat64() }

// Pow returns r raised to a non-negative integer power.
func (r Ratio) Pow(n int) Ratio {
	result := one
	base := r
	for ; n > 0; n >>= 1 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
	}
	return result
}

const (
	// sqrtTolerance is the convergence bound of the Newton square root.
	sqrtTolerance = "0.000000000001" // 1e-12
	sqrtMaxIter   = 64
)

var (
	zero = Ratio{value: decimal.Zero}
	one  = Ratio{value: decimal.NewFromInt(1)}
	two  = Ratio{value: decimal.NewFromInt(2)}
)

// Sqrt computes the square root with Newton iteration under fixed-point
// arithmetic, so standard deviations are as deterministic as the sums they
// come from. Negative input returns zero and false; zero returns zero, true.
func (r Ratio) Sqrt() (Ratio, bool) {
	if r.IsNegative() {
		return zero, false
	}
	if r.IsZero() {
		return zero, true
	}
	tol, _ := decimal.NewFromString(sqrtTolerance)

	// Seed with the float square root: a good guess costs nothing in
	// correctness since the iteration below converges in fixed point.
	seed := math.Sqrt(r.value.InexactFloat64())
	if math.IsInf(seed, 0) || math.IsNaN(seed) || seed <= 0 {
		seed = 1
	}
	x := Ratio{value: decimal.NewFromFloat(seed)}
	for i := 0; i < sqrtMaxIter; i++ {
		next := x.Add(r.Div(x)).Div(two)
		if next.Sub(x).Abs().value.LessThanOrEqual(tol) {
			return next.Round(18), true
		}
		x = next
	}
	return x.Round(18), true
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	return r.value.MarshalJSON()
}
func (r *Ratio) UnmarshalJSON(data []byte) error {
	return r.value.UnmarshalJSON(data)
}
