package portfolio

// lot represents a single acquisition of a security, used for FIFO cost
// basis calculations.
type lot struct {
	Date     Date
	Quantity Quantity
	Cost     Money // Total cost of the lot (quantity * price + fee share)
}

// lotQueue is a FIFO queue of lots for one (account, security) pair.
//
// It is an arena with a head index: partial consumption shrinks the head lot
// in place and full consumption advances the head, so a sell is O(1)
// amortized and lots never need pointer chasing.
type lotQueue struct {
	lots []lot
	head int
}

// push appends a newly acquired lot.
func (q *lotQueue) push(l lot) {
	q.lots = append(q.lots, l)
}

// available returns the total quantity remaining in the queue.
func (q *lotQueue) available() Quantity {
	var total Quantity
	for _, l := range q.lots[q.head:] {
		total = total.Add(l.Quantity)
	}
	return total
}

// costBasis returns the total cost of the remaining lots.
func (q *lotQueue) costBasis() Money {
	var total Money
	for _, l := range q.lots[q.head:] {
		total = total.Add(l.Cost)
	}
	return total
}

// remaining returns the live lots in acquisition order.
func (q *lotQueue) remaining() []lot {
	return q.lots[q.head:]
}

// consume removes quantityToSell from the queue head in strict FIFO order
// and returns the cost of the sold shares, each partial lot valued at its
// own unit cost. ok is false when the queue holds less than requested; the
// queue is left untouched in that case.
func (q *lotQueue) consume(quantityToSell Quantity) (costOfSoldShares Money, ok bool) {
	if q.available().LessThan(quantityToSell) {
		return Money{}, false
	}
	for !quantityToSell.IsZero() {
		currentLot := &q.lots[q.head]
		if currentLot.Quantity.GreaterThan(quantityToSell) {
			// Partial sale from this lot.
			costOfSoldPortion := currentLot.Cost.Mul(quantityToSell).Div(currentLot.Quantity)
			costOfSoldShares = costOfSoldShares.Add(costOfSoldPortion)
			currentLot.Quantity = currentLot.Quantity.Sub(quantityToSell)
			currentLot.Cost = currentLot.Cost.Sub(costOfSoldPortion)
			return costOfSoldShares, true
		}
		// Full sale of this lot.
		costOfSoldShares = costOfSoldShares.Add(currentLot.Cost)
		quantityToSell = quantityToSell.Sub(currentLot.Quantity)
		q.lots[q.head] = lot{}
		q.head++
	}
	return costOfSoldShares, true
}
