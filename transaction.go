package portfolio

// TxType is a typed string identifying the kind of a ledger transaction.
type TxType string

const (
	TxBuy       TxType = "buy"
	TxSell      TxType = "sell"
	TxDividend  TxType = "dividend"
	TxFee       TxType = "fee"
	TxInterest  TxType = "interest"
	TxLiability TxType = "liability"
	TxDeposit   TxType = "deposit"
	TxWithdraw  TxType = "withdraw"
)

// Transaction is a single immutable ledger record. The engine never mutates
// transactions; it only consumes them in ascending date order.
//
// Field usage by type:
//   - buy/sell: Quantity (sells negative), Price per unit, optional Fee.
//   - dividend: Amount is the cash received; when Reinvest is set, Quantity
//     and Price describe the reinvestment purchase.
//   - fee/interest/liability: Amount only, Quantity stays zero.
//   - deposit/withdraw: Amount is the external flow into or out of the
//     portfolio.
type Transaction struct {
	Type     TxType
	Date     Date
	Account  string
	Security string
	Quantity Quantity
	Price    Money // unit price
	Fee      Money
	Amount   Money
	Reinvest bool
	Memo     string
}

// NewBuy returns a buy of the given quantity at the given unit price.
func NewBuy(on Date, account, security string, quantity Quantity, price, fee Money) Transaction {
	return Transaction{Type: TxBuy, Date: on, Account: account, Security: security,
		Quantity: quantity, Price: price, Fee: fee}
}

// NewSell returns a sell. The quantity is recorded as a signed reduction:
// a positive argument is negated.
func NewSell(on Date, account, security string, quantity Quantity, price, fee Money) Transaction {
	if quantity.IsPositive() {
		quantity = quantity.Neg()
	}
	return Transaction{Type: TxSell, Date: on, Account: account, Security: security,
		Quantity: quantity, Price: price, Fee: fee}
}

// NewDividend returns a cash dividend for a security.
func NewDividend(on Date, account, security string, amount Money) Transaction {
	return Transaction{Type: TxDividend, Date: on, Account: account, Security: security, Amount: amount}
}

// NewReinvestedDividend returns a dividend immediately reinvested into the
// paying security: quantity shares bought at the given unit price.
func NewReinvestedDividend(on Date, account, security string, amount Money, quantity Quantity, price Money) Transaction {
	return Transaction{Type: TxDividend, Date: on, Account: account, Security: security,
		Amount: amount, Quantity: quantity, Price: price, Reinvest: true}
}

// NewFee returns a standalone fee charged to an account.
func NewFee(on Date, account string, amount Money) Transaction {
	return Transaction{Type: TxFee, Date: on, Account: account, Amount: amount}
}

// NewInterest returns interest credited to an account.
func NewInterest(on Date, account string, amount Money) Transaction {
	return Transaction{Type: TxInterest, Date: on, Account: account, Amount: amount}
}

// NewLiability records a change of what the account owes. A positive amount
// increases the liability.
func NewLiability(on Date, account string, amount Money) Transaction {
	return Transaction{Type: TxLiability, Date: on, Account: account, Amount: amount}
}

// NewDeposit returns an external contribution to an account.
func NewDeposit(on Date, account string, amount Money) Transaction {
	return Transaction{Type: TxDeposit, Date: on, Account: account, Amount: amount}
}

// NewWithdraw returns an external withdrawal from an account.
func NewWithdraw(on Date, account string, amount Money) Transaction {
	return Transaction{Type: TxWithdraw, Date: on, Account: account, Amount: amount}
}

// Validate checks a transaction's shape. It does not look at ledger context
// (oversells are detected by the holdings calculator, which is the first
// point where lot state exists).
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return &InvalidTransactionError{Tx: t, Reason: "date is missing"}
	}
	switch t.Type {
	case TxBuy:
		if t.Security == "" {
			return &InvalidTransactionError{Tx: t, Reason: "security is missing"}
		}
		if t.Quantity.IsNegative() || t.Quantity.IsZero() {
			return &InvalidTransactionError{Tx: t, Reason: "buy quantity must be positive"}
		}
		if !t.Price.IsPositive() {
			return &InvalidTransactionError{Tx: t, Reason: "buy price must be positive"}
		}
	case TxSell:
		if t.Security == "" {
			return &InvalidTransactionError{Tx: t, Reason: "security is missing"}
		}
		if !t.Quantity.IsNegative() {
			return &InvalidTransactionError{Tx: t, Reason: "sell quantity must be a signed reduction"}
		}
		if !t.Price.IsPositive() {
			return &InvalidTransactionError{Tx: t, Reason: "sell price must be positive"}
		}
	case TxDividend:
		if t.Security == "" {
			return &InvalidTransactionError{Tx: t, Reason: "security is missing"}
		}
		if t.Amount.IsNegative() {
			return &InvalidTransactionError{Tx: t, Reason: "dividend amount must be non-negative"}
		}
		if t.Reinvest {
			if t.Quantity.IsNegative() || t.Quantity.IsZero() {
				return &InvalidTransactionError{Tx: t, Reason: "reinvested dividend quantity must be positive"}
			}
			if !t.Price.IsPositive() {
				return &InvalidTransactionError{Tx: t, Reason: "reinvested dividend price must be positive"}
			}
		}
	case TxFee, TxInterest, TxLiability:
		if !t.Quantity.IsZero() {
			return &InvalidTransactionError{Tx: t, Reason: string(t.Type) + " transaction must carry zero quantity"}
		}
		if t.Amount.IsZero() {
			return &InvalidTransactionError{Tx: t, Reason: string(t.Type) + " amount is missing"}
		}
	case TxDeposit, TxWithdraw:
		if !t.Amount.IsPositive() {
			return &InvalidTransactionError{Tx: t, Reason: string(t.Type) + " amount must be positive"}
		}
	default:
		return &InvalidTransactionError{Tx: t, Reason: "unknown transaction type"}
	}
	if t.Fee.IsNegative() {
		return &InvalidTransactionError{Tx: t, Reason: "fee must be non-negative"}
	}
	return nil
}

// Cost returns the total cost of a buy: quantity times unit price plus fee.
func (t Transaction) Cost() Money {
	return t.Price.Mul(t.Quantity).Add(t.Fee)
}

// Proceeds returns the net proceeds of a sell: sold quantity times unit
// price minus fee.
func (t Transaction) Proceeds() Money {
	return t.Price.Mul(t.Quantity.Neg()).Sub(t.Fee)
}

// IsExternalFlow reports whether the transaction moves money across the
// portfolio boundary, which matters to TWR and MWR.
func (t Transaction) IsExternalFlow() bool {
	return t.Type == TxDeposit || t.Type == TxWithdraw
}

// Flow returns the signed external flow of the transaction: positive for a
// deposit, negative for a withdrawal, zero otherwise.
func (t Transaction) Flow() Money {
	switch t.Type {
	case TxDeposit:
		return t.Amount
	case TxWithdraw:
		return t.Amount.Neg()
	default:
		return Money{}
	}
}
