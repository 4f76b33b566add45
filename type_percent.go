package portfolio

import "fmt"

// Percent is a display-only percentage. Calculations use Ratio; Percent only
// ever appears in rendered output.
type Percent float64

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p))
}

func (p Percent) SignedString() string {
	return fmt.Sprintf("%+.2f%%", float64(p))
}
