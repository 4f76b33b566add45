package portfolio

import "testing"

func testLedgerWithFlow(t *testing.T) *Ledger {
	t.Helper()
	ledger := NewLedger("USD")
	err := ledger.Append(
		NewDeposit(NewDate(2025, 1, 2), "broker", usd(10_000)),
		NewBuy(NewDate(2025, 1, 10), "broker", "ACME", Q(100), usd(100), Money{}),
	)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	return ledger
}

func TestBuildValueSeries(t *testing.T) {
	ledger := testLedgerWithFlow(t)
	prices := NewPriceSeries("USD")
	prices.Set("ACME", NewDate(2025, 1, 10), usd(100))
	prices.Set("ACME", NewDate(2025, 1, 31), usd(110))
	prices.Set("ACME", NewDate(2025, 2, 28), usd(120))
	prices.Set("ACME", NewDate(2025, 3, 31), usd(130))

	rng := Range{From: NewDate(2025, 1, 1), To: NewDate(2025, 3, 31)}
	points, err := BuildValueSeries(ledger, prices, rng, Monthly, HoldingsOptions{})
	if err != nil {
		t.Fatalf("BuildValueSeries() error = %v", err)
	}

	// Both range bounds, every month end, and the deposit date.
	wantDates := []Date{
		NewDate(2025, 1, 1),
		NewDate(2025, 1, 2),
		NewDate(2025, 1, 31),
		NewDate(2025, 2, 28),
		NewDate(2025, 3, 31),
	}
	if len(points) != len(wantDates) {
		t.Fatalf("got %d points, want %d", len(points), len(wantDates))
	}
	for i, want := range wantDates {
		if points[i].Date != want {
			t.Errorf("points[%d].Date = %s, want %s", i, points[i].Date, want)
		}
	}

	// The buy converts cash to shares; value tracks the price after it.
	wantValues := []Money{usd(0), usd(10_000), usd(11_000), usd(12_000), usd(13_000)}
	for i, want := range wantValues {
		if !points[i].Value.Equal(want) {
			t.Errorf("points[%d].Value = %s, want %s", i, points[i].Value, want)
		}
	}

	// Only the deposit date carries a flow.
	if want := usd(10_000); !points[1].Flow.Equal(want) {
		t.Errorf("points[1].Flow = %s, want %s", points[1].Flow, want)
	}
	for _, i := range []int{0, 2, 3, 4} {
		if !points[i].Flow.IsZero() {
			t.Errorf("points[%d].Flow = %s, want 0", i, points[i].Flow)
		}
	}
}

func TestBuildValueSeries_ExcludedAccountFlows(t *testing.T) {
	ledger := testLedgerWithFlow(t)
	if err := ledger.Append(NewDeposit(NewDate(2025, 2, 14), "kids", usd(500))); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	prices := NewPriceSeries("USD")
	prices.Set("ACME", NewDate(2025, 1, 10), usd(100))

	rng := Range{From: NewDate(2025, 1, 1), To: NewDate(2025, 3, 31)}
	points, err := BuildValueSeries(ledger, prices, rng, Monthly,
		HoldingsOptions{ExcludedAccounts: []string{"kids"}})
	if err != nil {
		t.Fatalf("BuildValueSeries() error = %v", err)
	}
	for _, pt := range points {
		if pt.Date == NewDate(2025, 2, 14) {
			t.Error("excluded account's flow date should not become an observation")
		}
		if pt.Date.After(NewDate(2025, 2, 1)) && !pt.Flow.IsZero() {
			t.Errorf("flow on %s = %s, want none from the excluded account", pt.Date, pt.Flow)
		}
	}
}

func TestBuildValueSeries_RangeBoundsOnly(t *testing.T) {
	// A yearly period over a three-month range: only the bounds remain.
	ledger := NewLedger("USD")
	if err := ledger.Append(NewDeposit(NewDate(2024, 6, 1), "broker", usd(1000))); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	rng := Range{From: NewDate(2025, 1, 1), To: NewDate(2025, 3, 15)}
	points, err := BuildValueSeries(ledger, nil, rng, Yearly, HoldingsOptions{SkipValuation: true})
	if err != nil {
		t.Fatalf("BuildValueSeries() error = %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if points[0].Date != rng.From || points[1].Date != rng.To {
		t.Errorf("points at %s and %s, want the range bounds %s", points[0].Date, points[1].Date, rng)
	}
}
