package portfolio

import (
	"iter"
	"sort"
)

// Ledger is an ordered collection of transactions for a single reporting
// currency. It is the engine's only input besides prices; the engine never
// mutates transactions once appended.
type Ledger struct {
	currency     string
	transactions []Transaction
}

// NewLedger returns an empty ledger in the given reporting currency.
func NewLedger(currency string) *Ledger {
	return &Ledger{currency: currency}
}

// Currency returns the ledger's reporting currency.
func (l *Ledger) Currency() string { return l.currency }

// Len returns the number of transactions in the ledger.
func (l *Ledger) Len() int { return len(l.transactions) }

// Append validates and adds transactions, keeping the ledger sorted by date.
// The sort is stable: same-day transactions keep their insertion order.
func (l *Ledger) Append(txs ...Transaction) error {
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return err
		}
		l.transactions = append(l.transactions, tx)
	}
	l.stableSort()
	return nil
}

func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].Date.Before(l.transactions[j].Date)
	})
}

// All returns an iterator over all transactions in ascending date order.
func (l *Ledger) All() iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, tx := range l.transactions {
			if !yield(tx) {
				return
			}
		}
	}
}

// Through returns an iterator over transactions on or before the given date.
func (l *Ledger) Through(on Date) iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, tx := range l.transactions {
			if tx.Date.After(on) {
				break
			}
			if !yield(tx) {
				return
			}
		}
	}
}

// Securities returns an iterator over all security symbols in the ledger,
// ordered by first appearance.
func (l *Ledger) Securities() iter.Seq[string] {
	return func(yield func(string) bool) {
		seen := make(map[string]struct{})
		for _, tx := range l.transactions {
			if tx.Security == "" {
				continue
			}
			if _, ok := seen[tx.Security]; ok {
				continue
			}
			seen[tx.Security] = struct{}{}
			if !yield(tx.Security) {
				return
			}
		}
	}
}

// Accounts returns an iterator over all account names in the ledger,
// ordered by first appearance.
func (l *Ledger) Accounts() iter.Seq[string] {
	return func(yield func(string) bool) {
		seen := make(map[string]struct{})
		for _, tx := range l.transactions {
			if tx.Account == "" {
				continue
			}
			if _, ok := seen[tx.Account]; ok {
				continue
			}
			seen[tx.Account] = struct{}{}
			if !yield(tx.Account) {
				return
			}
		}
	}
}

// Range returns the date range covered by the ledger; ok is false when the
// ledger is empty.
func (l *Ledger) Range() (r Range, ok bool) {
	if len(l.transactions) == 0 {
		return Range{}, false
	}
	return Range{
		From: l.transactions[0].Date,
		To:   l.transactions[len(l.transactions)-1].Date,
	}, true
}
