package insight

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount with thousands separators and two decimals,
// e.g. "$1,234.50" or "-$80.00". Digits are taken from the decimal itself so
// large amounts keep their exact value.
func FormatMoney(symbol string, amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	fixed := rounded.StringFixed(2)
	dot := strings.IndexByte(fixed, '.')
	whole := rounded.Truncate(0).BigInt()
	return sign + symbol + humanize.BigComma(whole) + fixed[dot:]
}

// FormatPercent renders a ratio as a whole percentage, e.g. 0.456 -> "46%".
func FormatPercent(ratio float64) string {
	return decimal.NewFromFloat(ratio*100).Round(0).String() + "%"
}
