package util

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// FormatAmount renders a rounded, comma-grouped amount like "Rp 406,071".
func FormatAmount(v float64, symbol string) string {
	n := humanize.Comma(int64(math.RoundToEven(math.Abs(v))))
	if v < 0 {
		n = "-" + n
	}
	if symbol == "" {
		return n
	}
	return symbol + " " + n
}

// FormatSignedAmount renders a deficit as "(- Rp 406,071)" when positive and
// "(+ Rp 23,810)" otherwise.
func FormatSignedAmount(deficit float64, symbol string) string {
	sign := "+ "
	if deficit > 0 {
		sign = "- "
	}
	return fmt.Sprintf("(%s%s)", sign, FormatAmount(math.Abs(deficit), symbol))
}
