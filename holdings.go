package portfolio

import (
	"sort"
)

// Holding is a derived, read-only view of one security position, recomputed
// on demand from the lot queues plus a current price.
type Holding struct {
	Security           string
	Quantity           Quantity
	CostBasis          Money
	MarketValue        Money
	UnrealizedGainLoss Money
}

// AccountHolding is a Holding scoped to a single account.
type AccountHolding struct {
	Account string
	Holding
}

// HoldingsResult is the immutable output of the holdings calculator.
type HoldingsResult struct {
	AsOf Date

	// Holdings aggregates per security across all non-excluded accounts.
	// Quantities and cost bases are summed; lot queues stay per account.
	Holdings []Holding

	// ByAccount lists every position per (account, security), excluded
	// accounts included: exclusion alters aggregate views, not lot state.
	ByAccount []AccountHolding

	// Realized is the total realized gain/loss locked in by sells up to
	// AsOf, per FIFO cost basis, over non-excluded accounts.
	Realized Money

	// RealizedBySecurity breaks Realized down per security.
	RealizedBySecurity map[string]Money

	// Cash is the cash balance across non-excluded accounts: deposits and
	// proceeds in, purchases, fees, withdrawals out.
	Cash Money

	// Liabilities is the outstanding liability balance across non-excluded
	// accounts. TotalValue subtracts it.
	Liabilities Money
}

// TotalValue returns market value of all aggregated holdings plus cash,
// minus liabilities.
func (hr *HoldingsResult) TotalValue() Money {
	total := hr.Cash
	for _, h := range hr.Holdings {
		total = total.Add(h.MarketValue)
	}
	return total.Sub(hr.Liabilities)
}

// TotalCostBasis returns the cost basis of all aggregated holdings.
func (hr *HoldingsResult) TotalCostBasis() Money {
	var total Money
	for _, h := range hr.Holdings {
		total = total.Add(h.CostBasis)
	}
	return total
}

// TotalUnrealized returns the total paper gain/loss of aggregated holdings.
func (hr *HoldingsResult) TotalUnrealized() Money {
	var total Money
	for _, h := range hr.Holdings {
		total = total.Add(h.UnrealizedGainLoss)
	}
	return total
}

// HoldingsOptions tunes the holdings computation.
type HoldingsOptions struct {
	// ExcludedAccounts are removed from aggregate views (Holdings, Realized,
	// Cash, Liabilities) without altering their own lot state; their
	// positions still appear in ByAccount.
	ExcludedAccounts []string

	// SkipValuation leaves MarketValue and UnrealizedGainLoss zero instead
	// of failing when no price series is given.
	SkipValuation bool
}

func (o HoldingsOptions) excluded(account string) bool {
	for _, a := range o.ExcludedAccounts {
		if a == account {
			return true
		}
	}
	return false
}

// accountSecurity keys one FIFO lot queue.
type accountSecurity struct {
	account  string
	security string
}

// ComputeHoldings replays the ledger through asOf and derives current
// holdings, realized gain/loss and cash from the FIFO lot queues.
//
// It fails with InvalidSequenceError when a sell exceeds the quantity
// available in its (account, security) queue at that point of the ledger,
// with InvalidTransactionError on malformed records, and with
// MissingPriceError when a held security has no price on or before asOf
// (unless opts.SkipValuation is set).
func ComputeHoldings(ledger *Ledger, asOf Date, prices *PriceSeries, opts HoldingsOptions) (*HoldingsResult, error) {
	queues := make(map[accountSecurity]*lotQueue)
	var order []accountSecurity // queue creation order, for deterministic output

	result := &HoldingsResult{
		AsOf:               asOf,
		RealizedBySecurity: make(map[string]Money),
	}
	cash := M(0, ledger.currency)
	liabilities := M(0, ledger.currency)

	queue := func(key accountSecurity) *lotQueue {
		q, ok := queues[key]
		if !ok {
			q = &lotQueue{}
			queues[key] = q
			order = append(order, key)
		}
		return q
	}

	for tx := range ledger.Through(asOf) {
		if err := tx.Validate(); err != nil {
			return nil, err
		}
		excluded := opts.excluded(tx.Account)
		key := accountSecurity{account: tx.Account, security: tx.Security}

		switch tx.Type {
		case TxBuy:
			cost := tx.Cost()
			queue(key).push(lot{Date: tx.Date, Quantity: tx.Quantity, Cost: cost})
			if !excluded {
				cash = cash.Sub(cost)
			}
		case TxSell:
			sold := tx.Quantity.Neg() // sells are signed reductions
			q := queue(key)
			costOfSold, ok := q.consume(sold)
			if !ok {
				return nil, &InvalidSequenceError{
					Date:      tx.Date,
					Account:   tx.Account,
					Security:  tx.Security,
					Requested: sold,
					Available: q.available(),
				}
			}
			proceeds := tx.Proceeds()
			if !excluded {
				gain := proceeds.Sub(costOfSold)
				result.Realized = result.Realized.Add(gain)
				result.RealizedBySecurity[tx.Security] = result.RealizedBySecurity[tx.Security].Add(gain)
				cash = cash.Add(proceeds)
			}
		case TxDividend:
			if !excluded {
				cash = cash.Add(tx.Amount)
			}
			if tx.Reinvest {
				cost := tx.Price.Mul(tx.Quantity)
				queue(key).push(lot{Date: tx.Date, Quantity: tx.Quantity, Cost: cost})
				if !excluded {
					cash = cash.Sub(cost)
				}
			}
		case TxFee:
			if !excluded {
				cash = cash.Sub(tx.Amount)
			}
		case TxInterest:
			if !excluded {
				cash = cash.Add(tx.Amount)
			}
		case TxLiability:
			if !excluded {
				liabilities = liabilities.Add(tx.Amount)
			}
		case TxDeposit:
			if !excluded {
				cash = cash.Add(tx.Amount)
			}
		case TxWithdraw:
			if !excluded {
				cash = cash.Sub(tx.Amount)
			}
		}
	}
	result.Cash = cash
	result.Liabilities = liabilities

	// Per-account view, all accounts.
	for _, key := range order {
		q := queues[key]
		qty := q.available()
		if qty.IsZero() {
			continue
		}
		h := Holding{Security: key.security, Quantity: qty, CostBasis: q.costBasis()}
		if err := valueHolding(&h, prices, asOf, opts); err != nil {
			return nil, err
		}
		result.ByAccount = append(result.ByAccount, AccountHolding{Account: key.account, Holding: h})
	}

	// Aggregate per security over non-excluded accounts.
	aggregate := make(map[string]*Holding)
	var secOrder []string
	for _, key := range order {
		if opts.excluded(key.account) {
			continue
		}
		q := queues[key]
		qty := q.available()
		if qty.IsZero() {
			continue
		}
		h, ok := aggregate[key.security]
		if !ok {
			h = &Holding{Security: key.security}
			aggregate[key.security] = h
			secOrder = append(secOrder, key.security)
		}
		h.Quantity = h.Quantity.Add(qty)
		h.CostBasis = h.CostBasis.Add(q.costBasis())
	}
	sort.Strings(secOrder)
	for _, sec := range secOrder {
		h := aggregate[sec]
		if err := valueHolding(h, prices, asOf, opts); err != nil {
			return nil, err
		}
		result.Holdings = append(result.Holdings, *h)
	}

	return result, nil
}

func valueHolding(h *Holding, prices *PriceSeries, asOf Date, opts HoldingsOptions) error {
	if opts.SkipValuation {
		return nil
	}
	if prices == nil {
		return &MissingPriceError{Security: h.Security, Date: asOf}
	}
	price, err := prices.PriceAsOf(h.Security, asOf)
	if err != nil {
		return err
	}
	h.MarketValue = price.Mul(h.Quantity)
	h.UnrealizedGainLoss = h.MarketValue.Sub(h.CostBasis)
	return nil
}
