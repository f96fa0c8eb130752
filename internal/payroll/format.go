package payroll

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency форматирует сумму для отображения: "IDR 1.234.567,50".
func FormatCurrency(value decimal.Decimal, currency string) string {
	if currency == "" {
		currency = "IDR"
	}

	s := value.Abs().StringFixed(scale)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(currency)
	b.WriteByte(' ')
	if value.IsNegative() {
		b.WriteByte('-')
	}

	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(ch)
	}
	b.WriteByte(',')
	b.WriteString(frac)

	return b.String()
}
