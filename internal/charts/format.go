package charts

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer formats numbers with English thousands separators.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// centsMultiplier converts fractional dollars to cents.
const centsMultiplier = 100

// FormatCount formats an integer with thousands separators.
// Example: FormatCount(18248) returns "18,248".
func FormatCount(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatAmount formats a non-negative amount as "X,XXX.XX".
func FormatAmount(amount float64) string {
	amount = math.Abs(amount)
	whole := int64(amount)
	cents := int64(math.Round((amount - float64(whole)) * centsMultiplier))

	// Handle rounding up to next dollar
	if cents >= centsMultiplier {
		whole++
		cents -= centsMultiplier
	}
	return fmt.Sprintf("%s.%02d", FormatCount(whole), cents)
}

// FormatCurrency formats an amount in dollars, e.g. "$1,234.50" or "-$3.00".
func FormatCurrency(amount float64) string {
	if amount < 0 {
		return "-$" + FormatAmount(amount)
	}
	return "$" + FormatAmount(amount)
}

// FormatValue formats v the way series s labels its values.
func FormatValue(s Series, v float64) string {
	switch {
	case s.Currency:
		return FormatCurrency(v)
	case s.Percent:
		return fmt.Sprintf("%.1f%%", v)
	case v == math.Trunc(v):
		return FormatCount(int64(v))
	default:
		return FormatAmount(v)
	}
}
