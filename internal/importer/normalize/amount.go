package normalize

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
)

// ParseAmount reads a signed amount using the configured separators.
// Parentheses and a trailing minus mark negatives; currency symbols, codes and
// whitespace around or inside the number are ignored. Empty or unparsable
// input reports false, never zero.
func ParseAmount(s string, opts mapping.FormatOptions) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}

	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsLetter(r) || unicode.Is(unicode.Sc, r) {
			return -1
		}

		return r
	}, s)

	negative := false

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	if strings.HasSuffix(s, "-") {
		negative = !negative
		s = strings.TrimSuffix(s, "-")
	}

	s = strings.TrimPrefix(s, "+")

	if sep := opts.ThousandsSeparator; sep != "" && strings.TrimSpace(sep) != "" {
		s = strings.ReplaceAll(s, sep, "")
	}

	if dec := opts.Decimal(); dec != "." {
		s = strings.ReplaceAll(s, dec, ".")
	}

	if s == "" {
		return decimal.Decimal{}, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}

	if negative {
		d = d.Neg()
	}

	return d, true
}

// ParseNullAmount is ParseAmount returning a decimal.NullDecimal.
func ParseNullAmount(s string, opts mapping.FormatOptions) decimal.NullDecimal {
	d, ok := ParseAmount(s, opts)
	return decimal.NullDecimal{Decimal: d, Valid: ok}
}

// FormatAmount renders d with the configured separators so that ParseAmount
// reads it back to the same value.
func FormatAmount(d decimal.Decimal, opts mapping.FormatOptions) string {
	text := d.Abs().String()

	intPart, fracPart, _ := strings.Cut(text, ".")

	if sep := opts.ThousandsSeparator; sep != "" {
		intPart = group(intPart, sep)
	}

	out := intPart
	if fracPart != "" {
		out += opts.Decimal() + fracPart
	}

	if d.IsNegative() {
		out = "-" + out
	}

	return out
}

func group(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder

	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}

	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}

		b.WriteString(digits[i : i+3])
	}

	return b.String()
}

// SignedAmount combines explicit debit and credit columns as credit minus
// debit. Column signs are ignored. It reports false when neither is present.
func SignedAmount(debit, credit decimal.NullDecimal) (decimal.Decimal, bool) {
	if !debit.Valid && !credit.Valid {
		return decimal.Decimal{}, false
	}

	amount := decimal.Zero
	if credit.Valid {
		amount = amount.Add(credit.Decimal.Abs())
	}

	if debit.Valid {
		amount = amount.Sub(debit.Decimal.Abs())
	}

	return amount, true
}
