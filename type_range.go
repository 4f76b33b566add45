package portfolio

import "iter"

// Range is an inclusive range of dates.
type Range struct {
	From, To Date
}

// NewRange returns a Range, swapping the bounds if given in reverse order.
func NewRange(from, to Date) Range {
	if to.Before(from) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// Contains reports whether d falls within the range.
func (r Range) Contains(d Date) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

// Days returns an iterator over every date in the range, in order.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

func (r Range) String() string {
	return r.From.String() + ".." + r.To.String()
}
