package domain

import (
	"strconv"
	"strings"
)

// Amount is a price in whole currency units. Display strings are produced
// only by Format; payment hand-offs use Minor.
type Amount int64

// MaxAmount is the largest price the store accepts. Larger values saturate
// here so totals and minor-unit conversions stay within int64.
const MaxAmount Amount = 1_000_000_000_000

// ParseAmount keeps every ASCII digit of a display price and drops the rest,
// so "₹799" and "Rs. 799/-" both parse to 799. Strings without digits parse
// to zero; anything above MaxAmount parses to MaxAmount.
func ParseAmount(s string) Amount {
	n, _ := parseDigits(s)
	return n
}

// ValidPrice reports whether s carries a positive amount no larger than
// MaxAmount.
func ValidPrice(s string) bool {
	n, ok := parseDigits(s)
	return ok && n > 0
}

func parseDigits(s string) (Amount, bool) {
	var n Amount
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			continue
		}
		n = n*10 + Amount(c-'0')
		if n > MaxAmount {
			return MaxAmount, false
		}
	}
	return n, true
}

// Times multiplies the amount by a line quantity, saturating at MaxAmount.
func (a Amount) Times(qty int) Amount {
	if qty > 0 && a > 0 && a > MaxAmount/Amount(qty) {
		return MaxAmount
	}
	return a * Amount(qty)
}

// Minor converts to the smallest currency unit (paise, cents).
func (a Amount) Minor() int64 {
	return int64(a) * 100
}

// Format renders the amount with the currency symbol and Indian digit
// grouping for INR, Western grouping otherwise.
func (a Amount) Format(currency string) string {
	neg := a < 0
	v := int64(a)
	if neg {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)

	var grouped string
	if strings.EqualFold(currency, "INR") {
		grouped = groupIndian(digits)
	} else {
		grouped = groupThousands(digits)
	}

	out := currencySymbol(currency) + grouped
	if neg {
		return "-" + out
	}
	return out
}

func currencySymbol(code string) string {
	switch strings.ToUpper(code) {
	case "INR", "":
		return "₹"
	case "USD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	default:
		return strings.ToUpper(code) + " "
	}
}

func groupThousands(d string) string {
	if len(d) <= 3 {
		return d
	}
	var b strings.Builder
	head := len(d) % 3
	if head > 0 {
		b.WriteString(d[:head])
	}
	for i := head; i < len(d); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(d[i : i+3])
	}
	return b.String()
}

// groupIndian groups the last three digits, then pairs: 12,34,567.
func groupIndian(d string) string {
	if len(d) <= 3 {
		return d
	}
	rest, last := d[:len(d)-3], d[len(d)-3:]
	var parts []string
	for len(rest) > 2 {
		parts = append([]string{rest[len(rest)-2:]}, parts...)
		rest = rest[:len(rest)-2]
	}
	if rest != "" {
		parts = append([]string{rest}, parts...)
	}
	return strings.Join(parts, ",") + "," + last
}
