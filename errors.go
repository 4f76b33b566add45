package portfolio

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions that carry no useful payload beyond the fact
// that they occurred. Callers match them with errors.Is.
var (
	// ErrNoConvergence is returned when an iterative method (IRR root-finding,
	// long-only weight projection) exhausts its iteration budget or is given
	// degenerate input, such as cash flows that are all of the same sign.
	ErrNoConvergence = errors.New("no convergence")

	// ErrSingularCovariance is returned when the covariance matrix handed to
	// the optimizer is not invertible or too badly conditioned to trust.
	ErrSingularCovariance = errors.New("singular covariance matrix")
)

// InvalidTransactionError reports a malformed transaction: negative buy
// quantity, non-positive price, and similar input defects.
type InvalidTransactionError struct {
	Tx     Transaction
	Reason string
}

func (e *InvalidTransactionError) Error() string {
	return fmt.Sprintf("invalid transaction on %s (%s %s): %s", e.Tx.Date, e.Tx.Type, e.Tx.Security, e.Reason)
}

// InvalidSequenceError reports a ledger ordering violation, typically a sell
// that exceeds the quantity available in the lot queue at that point.
type InvalidSequenceError struct {
	Date      Date
	Account   string
	Security  string
	Requested Quantity
	Available Quantity
}

func (e *InvalidSequenceError) Error() string {
	return fmt.Sprintf("on %s, cannot sell %s of %s in account %q: only %s held",
		e.Date, e.Requested, e.Security, e.Account, e.Available)
}

// MissingPriceError reports a valuation request for a (security, date) pair
// with no known price. The engine never substitutes a guess.
type MissingPriceError struct {
	Security string
	Date     Date
}

func (e *MissingPriceError) Error() string {
	return fmt.Sprintf("no price for %s on or before %s", e.Security, e.Date)
}

// MisalignedSeriesError reports two return series that cannot be combined
// because their lengths or dates differ.
type MisalignedSeriesError struct {
	LenA, LenB int
	Detail     string
}

func (e *MisalignedSeriesError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("misaligned return series: %s", e.Detail)
	}
	return fmt.Sprintf("misaligned return series: lengths %d and %d", e.LenA, e.LenB)
}
