package portfolio

import (
	"errors"
	"testing"
)

func usd(v float64) Money { return M(v, "USD") }

func testPrices(t *testing.T, entries map[string]float64, on Date) *PriceSeries {
	t.Helper()
	series := NewPriceSeries("USD")
	for sec, p := range entries {
		series.Set(sec, on, usd(p))
	}
	return series
}

func TestComputeHoldings_FIFORealizedGain(t *testing.T) {
	// Buy 100 @ $150, buy 50 @ $300, sell 25 @ $160. The 25 sold come from
	// the oldest lot, so the realized gain is 25 x (160 - 150).
	ledger := NewLedger("USD")
	err := ledger.Append(
		NewBuy(NewDate(2025, 1, 10), "broker", "ACME", Q(100), usd(150), Money{}),
		NewBuy(NewDate(2025, 2, 10), "broker", "ACME", Q(50), usd(300), Money{}),
		NewSell(NewDate(2025, 3, 10), "broker", "ACME", Q(25), usd(160), Money{}),
	)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	asOf := NewDate(2025, 3, 31)
	prices := testPrices(t, map[string]float64{"ACME": 160}, asOf)
	hr, err := ComputeHoldings(ledger, asOf, prices, HoldingsOptions{})
	if err != nil {
		t.Fatalf("ComputeHoldings() error = %v", err)
	}

	if want := usd(250); !hr.Realized.Equal(want) {
		t.Errorf("Realized = %s, want %s", hr.Realized, want)
	}
	if len(hr.Holdings) != 1 {
		t.Fatalf("holdings = %d, want 1", len(hr.Holdings))
	}
	h := hr.Holdings[0]
	if want := Q(125); !h.Quantity.Equal(want) {
		t.Errorf("Quantity = %s, want %s", h.Quantity, want)
	}
	// 75 @ 150 + 50 @ 300.
	if want := usd(75*150 + 50*300); !h.CostBasis.Equal(want) {
		t.Errorf("CostBasis = %s, want %s", h.CostBasis, want)
	}
	if want := usd(125 * 160); !h.MarketValue.Equal(want) {
		t.Errorf("MarketValue = %s, want %s", h.MarketValue, want)
	}
	if want := h.MarketValue.Sub(h.CostBasis); !h.UnrealizedGainLoss.Equal(want) {
		t.Errorf("UnrealizedGainLoss = %s, want %s", h.UnrealizedGainLoss, want)
	}
}

func TestComputeHoldings_QuantityConservation(t *testing.T) {
	// Remaining quantity equals total bought minus total sold.
	ledger := NewLedger("USD")
	err := ledger.Append(
		NewBuy(NewDate(2025, 1, 1), "a", "X", Q(10), usd(1), Money{}),
		NewBuy(NewDate(2025, 1, 2), "a", "X", Q(7), usd(2), Money{}),
		NewSell(NewDate(2025, 1, 3), "a", "X", Q(4), usd(2), Money{}),
		NewBuy(NewDate(2025, 1, 4), "a", "X", Q(3), usd(3), Money{}),
		NewSell(NewDate(2025, 1, 5), "a", "X", Q(9), usd(3), Money{}),
	)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	hr, err := ComputeHoldings(ledger, NewDate(2025, 1, 31), nil, HoldingsOptions{SkipValuation: true})
	if err != nil {
		t.Fatalf("ComputeHoldings() error = %v", err)
	}
	if want := Q(10 + 7 + 3 - 4 - 9); !hr.Holdings[0].Quantity.Equal(want) {
		t.Errorf("Quantity = %s, want %s", hr.Holdings[0].Quantity, want)
	}
}

func TestComputeHoldings_Oversell(t *testing.T) {
	ledger := NewLedger("USD")
	err := ledger.Append(
		NewBuy(NewDate(2025, 1, 1), "broker", "ACME", Q(10), usd(100), Money{}),
		NewSell(NewDate(2025, 1, 2), "broker", "ACME", Q(11), usd(100), Money{}),
	)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	_, err = ComputeHoldings(ledger, NewDate(2025, 1, 31), nil, HoldingsOptions{SkipValuation: true})
	var seqErr *InvalidSequenceError
	if !errors.As(err, &seqErr) {
		t.Fatalf("ComputeHoldings() error = %v, want InvalidSequenceError", err)
	}
	if !seqErr.Requested.Equal(Q(11)) || !seqErr.Available.Equal(Q(10)) {
		t.Errorf("oversell detail = requested %s of %s, want 11 of 10", seqErr.Requested, seqErr.Available)
	}
}

func TestComputeHoldings_PerAccountQueues(t *testing.T) {
	// Lots are FIFO per (account, security): selling in one account must
	// not touch another account's lots, even for the same symbol.
	ledger := NewLedger("USD")
	err := ledger.Append(
		NewBuy(NewDate(2025, 1, 1), "a", "X", Q(10), usd(10), Money{}),
		NewBuy(NewDate(2025, 1, 2), "b", "X", Q(10), usd(20), Money{}),
		NewSell(NewDate(2025, 1, 3), "b", "X", Q(10), usd(30), Money{}),
	)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	hr, err := ComputeHoldings(ledger, NewDate(2025, 1, 31), nil, HoldingsOptions{SkipValuation: true})
	if err != nil {
		t.Fatalf("ComputeHoldings() error = %v", err)
	}
	// Gain must be against account b's 20 cost, not account a's 10.
	if want := usd(100); !hr.Realized.Equal(want) {
		t.Errorf("Realized = %s, want %s", hr.Realized, want)
	}
	if want := usd(100); !hr.Holdings[0].CostBasis.Equal(want) {
		t.Errorf("remaining cost basis = %s, want %s", hr.Holdings[0].CostBasis, want)
	}
}

func TestComputeHoldings_ExcludedAccount(t *testing.T) {
	ledger := NewLedger("USD")
	err := ledger.Append(
		NewBuy(NewDate(2025, 1, 1), "keep", "X", Q(5), usd(10), Money{}),
		NewBuy(NewDate(2025, 1, 1), "skip", "X", Q(7), usd(10), Money{}),
		NewDeposit(NewDate(2025, 1, 1), "skip", usd(1000)),
	)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	hr, err := ComputeHoldings(ledger, NewDate(2025, 1, 31), nil, HoldingsOptions{
		ExcludedAccounts: []string{"skip"},
		SkipValuation:    true,
	})
	if err != nil {
		t.Fatalf("ComputeHoldings() error = %v", err)
	}

	t.Run("aggregates skip the excluded account", func(t *testing.T) {
		if want := Q(5); !hr.Holdings[0].Quantity.Equal(want) {
			t.Errorf("aggregate quantity = %s, want %s", hr.Holdings[0].Quantity, want)
		}
		// Excluded deposit and purchase must not reach cash.
		if want := usd(-50); !hr.Cash.Equal(want) {
			t.Errorf("Cash = %s, want %s", hr.Cash, want)
		}
	})
	t.Run("per-account view still lists it", func(t *testing.T) {
		if len(hr.ByAccount) != 2 {
			t.Fatalf("ByAccount = %d entries, want 2", len(hr.ByAccount))
		}
	})
	t.Run("lot state survives exclusion", func(t *testing.T) {
		// The same ledger without exclusion sees all 12 shares: exclusion
		// only filtered the view.
		full, err := ComputeHoldings(ledger, NewDate(2025, 1, 31), nil, HoldingsOptions{SkipValuation: true})
		if err != nil {
			t.Fatalf("ComputeHoldings() error = %v", err)
		}
		if want := Q(12); !full.Holdings[0].Quantity.Equal(want) {
			t.Errorf("quantity without exclusion = %s, want %s", full.Holdings[0].Quantity, want)
		}
	})
}

func TestComputeHoldings_DividendReinvestment(t *testing.T) {
	ledger := NewLedger("USD")
	err := ledger.Append(
		NewBuy(NewDate(2025, 1, 1), "broker", "X", Q(10), usd(100), Money{}),
		NewReinvestedDividend(NewDate(2025, 2, 1), "broker", "X", usd(50), Q(0.5), usd(100)),
	)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	hr, err := ComputeHoldings(ledger, NewDate(2025, 2, 28), nil, HoldingsOptions{SkipValuation: true})
	if err != nil {
		t.Fatalf("ComputeHoldings() error = %v", err)
	}
	if want := Q(10.5); !hr.Holdings[0].Quantity.Equal(want) {
		t.Errorf("Quantity = %s, want %s", hr.Holdings[0].Quantity, want)
	}
	// Dividend credited, reinvestment debited: net zero cash effect beyond
	// the original purchase.
	if want := usd(-1000); !hr.Cash.Equal(want) {
		t.Errorf("Cash = %s, want %s", hr.Cash, want)
	}
}

func TestComputeHoldings_CashAndLiabilities(t *testing.T) {
	ledger := NewLedger("USD")
	err := ledger.Append(
		NewDeposit(NewDate(2025, 1, 1), "bank", usd(1000)),
		NewFee(NewDate(2025, 1, 2), "bank", usd(10)),
		NewInterest(NewDate(2025, 1, 3), "bank", usd(5)),
		NewWithdraw(NewDate(2025, 1, 4), "bank", usd(100)),
		NewLiability(NewDate(2025, 1, 5), "bank", usd(200)),
	)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	hr, err := ComputeHoldings(ledger, NewDate(2025, 1, 31), nil, HoldingsOptions{SkipValuation: true})
	if err != nil {
		t.Fatalf("ComputeHoldings() error = %v", err)
	}
	if want := usd(1000 - 10 + 5 - 100); !hr.Cash.Equal(want) {
		t.Errorf("Cash = %s, want %s", hr.Cash, want)
	}
	if want := usd(200); !hr.Liabilities.Equal(want) {
		t.Errorf("Liabilities = %s, want %s", hr.Liabilities, want)
	}
	if want := usd(895 - 200); !hr.TotalValue().Equal(want) {
		t.Errorf("TotalValue = %s, want %s", hr.TotalValue(), want)
	}
}

func TestComputeHoldings_MissingPrice(t *testing.T) {
	ledger := NewLedger("USD")
	if err := ledger.Append(NewBuy(NewDate(2025, 1, 1), "broker", "X", Q(1), usd(10), Money{})); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	_, err := ComputeHoldings(ledger, NewDate(2025, 1, 31), NewPriceSeries("USD"), HoldingsOptions{})
	var priceErr *MissingPriceError
	if !errors.As(err, &priceErr) {
		t.Fatalf("ComputeHoldings() error = %v, want MissingPriceError", err)
	}
	if priceErr.Security != "X" {
		t.Errorf("MissingPriceError.Security = %q, want X", priceErr.Security)
	}
}

func TestComputeHoldings_Idempotent(t *testing.T) {
	ledger := NewLedger("USD")
	err := ledger.Append(
		NewBuy(NewDate(2025, 1, 1), "a", "X", Q(3), usd(10.11), usd(0.07)),
		NewSell(NewDate(2025, 1, 9), "a", "X", Q(1), usd(12.34), usd(0.07)),
	)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	asOf := NewDate(2025, 1, 31)
	prices := testPrices(t, map[string]float64{"X": 13}, NewDate(2025, 1, 1))

	first, err := ComputeHoldings(ledger, asOf, prices, HoldingsOptions{})
	if err != nil {
		t.Fatalf("ComputeHoldings() error = %v", err)
	}
	second, err := ComputeHoldings(ledger, asOf, prices, HoldingsOptions{})
	if err != nil {
		t.Fatalf("ComputeHoldings() error = %v", err)
	}
	if !first.Realized.Equal(second.Realized) || !first.TotalValue().Equal(second.TotalValue()) {
		t.Error("two runs over identical inputs disagree")
	}
}
