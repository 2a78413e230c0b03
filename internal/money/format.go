package money

import (
	"strconv"
	"strings"
)

// Format renders an amount with dot thousands separators and the đ suffix,
// dropping the fraction when the amount is whole: 1500000 -> "1.500.000đ".
func Format(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}

	whole := int64(v)
	frac := v - float64(whole)

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}

	out := b.String()
	if frac > 1e-9 {
		out += strings.TrimPrefix(strconv.FormatFloat(frac, 'f', 2, 64), "0")
	}
	if neg {
		out = "-" + out
	}
	return out + "đ"
}
