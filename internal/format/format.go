// Package format holds the pure display-formatting helpers shared by the
// wizard, the schedule views and the admin screens.
package format

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// TitleCase upper-cases the first letter of every word and lower-cases the
// rest, collapsing runs of whitespace to single spaces.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// Currency renders an amount as a dollar string with two decimal places and
// thousands separators, e.g. "$1,234.50".
func Currency(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)

	dot := strings.IndexByte(fixed, '.')
	whole, frac := fixed[:dot], fixed[dot:]

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteString(frac)
	return b.String()
}

// Phone renders a 10-digit US number as "(555) 123-4567". Eleven digits
// with a leading 1 are treated the same; anything else is returned as-is.
func Phone(s string) string {
	var digits strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}

	d := digits.String()
	if len(d) == 11 && d[0] == '1' {
		d = d[1:]
	}
	if len(d) != 10 {
		return s
	}

	return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
}
