package portfolio

import "testing"

func TestLotQueue_FIFOConsumption(t *testing.T) {
	q := &lotQueue{}
	q.push(lot{Date: NewDate(2025, 1, 2), Quantity: Q(100), Cost: M(15000, "USD")})
	q.push(lot{Date: NewDate(2025, 2, 3), Quantity: Q(50), Cost: M(15000, "USD")})

	cost, ok := q.consume(Q(25))
	if !ok {
		t.Fatal("consume(25) should succeed")
	}
	if want := M(3750, "USD"); !cost.Equal(want) {
		t.Errorf("cost of 25 sold = %s, want %s", cost, want)
	}
	if want := Q(125); !q.available().Equal(want) {
		t.Errorf("available = %s, want %s", q.available(), want)
	}

	// The head lot keeps its own unit cost for the remainder.
	lots := q.remaining()
	if len(lots) != 2 {
		t.Fatalf("remaining lots = %d, want 2", len(lots))
	}
	if want := Q(75); !lots[0].Quantity.Equal(want) {
		t.Errorf("head lot quantity = %s, want %s", lots[0].Quantity, want)
	}
	if want := M(11250, "USD"); !lots[0].Cost.Equal(want) {
		t.Errorf("head lot cost = %s, want %s", lots[0].Cost, want)
	}
}

func TestLotQueue_ConsumeSpansLots(t *testing.T) {
	q := &lotQueue{}
	q.push(lot{Quantity: Q(10), Cost: M(100, "USD")})
	q.push(lot{Quantity: Q(10), Cost: M(300, "USD")})

	// 15 shares: all of lot one, half of lot two.
	cost, ok := q.consume(Q(15))
	if !ok {
		t.Fatal("consume(15) should succeed")
	}
	if want := M(250, "USD"); !cost.Equal(want) {
		t.Errorf("cost of 15 sold = %s, want %s", cost, want)
	}
	if want := Q(5); !q.available().Equal(want) {
		t.Errorf("available = %s, want %s", q.available(), want)
	}
	if want := M(150, "USD"); !q.costBasis().Equal(want) {
		t.Errorf("cost basis = %s, want %s", q.costBasis(), want)
	}
}

func TestLotQueue_OversellLeavesQueueUntouched(t *testing.T) {
	q := &lotQueue{}
	q.push(lot{Quantity: Q(10), Cost: M(100, "USD")})

	if _, ok := q.consume(Q(11)); ok {
		t.Fatal("consume(11) of 10 should fail")
	}
	if want := Q(10); !q.available().Equal(want) {
		t.Errorf("available after failed consume = %s, want %s", q.available(), want)
	}
	if want := M(100, "USD"); !q.costBasis().Equal(want) {
		t.Errorf("cost basis after failed consume = %s, want %s", q.costBasis(), want)
	}
}

func TestLotQueue_ExactConsumptionEmptiesQueue(t *testing.T) {
	q := &lotQueue{}
	q.push(lot{Quantity: Q(10), Cost: M(100, "USD")})
	q.push(lot{Quantity: Q(5), Cost: M(75, "USD")})

	cost, ok := q.consume(Q(15))
	if !ok {
		t.Fatal("consume(15) should succeed")
	}
	if want := M(175, "USD"); !cost.Equal(want) {
		t.Errorf("cost = %s, want %s", cost, want)
	}
	if !q.available().IsZero() {
		t.Errorf("available = %s, want 0", q.available())
	}
	if len(q.remaining()) != 0 {
		t.Errorf("remaining = %v, want none", q.remaining())
	}
}
