package accounts

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders amount as US dollars with two decimals and
// thousands separators, for example -$1,234.50. Amounts are not bounded.
func FormatCurrency(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	whole, cents, _ := strings.Cut(rounded.Abs().StringFixed(2), ".")
	return sign + "$" + groupThousands(whole) + "." + cents
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	var b strings.Builder
	b.Grow(len(digits) + len(digits)/3)
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
