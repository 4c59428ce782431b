// Package fx converts native row amounts into the target account currency.
package fx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/normalize"
)

// Mode selects how cross-currency rows are converted.
type Mode interface {
	mode()
	String() string
}

// SingleRate multiplies every cross-currency row by one rate.
type SingleRate struct {
	Rate decimal.Decimal
}

// RateColumn reads the rate of each row from a source column.
type RateColumn struct {
	Column string
}

// Skip leaves cross-currency rows unconverted and flags them.
type Skip struct{}

func (SingleRate) mode() {}
func (RateColumn) mode() {}
func (Skip) mode()       {}

func (SingleRate) String() string { return "single-rate" }
func (RateColumn) String() string { return "rate-column" }
func (Skip) String() string       { return "skip" }

var ErrUnknownMode = errors.New("unknown fx mode")

// Decode builds a Mode from its wire form. The rate is only read for
// single-rate and the column only for rate-column. An unparsable rate
// becomes a zero rate, which flags rows instead of failing the request.
func Decode(kind, rate, column string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "skip":
		return Skip{}, nil
	case "single-rate", "single_rate":
		r, err := decimal.NewFromString(strings.TrimSpace(rate))
		if err != nil {
			r = decimal.Zero
		}

		return SingleRate{Rate: r}, nil
	case "rate-column", "rate_column":
		return RateColumn{Column: strings.TrimSpace(column)}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, kind)
}

// Result is the outcome of converting one row.
type Result struct {
	Amount  decimal.NullDecimal
	Rate    decimal.NullDecimal
	NeedsFx bool
	Warning string
}

// Convert turns native into the account currency. Rows already in the
// account currency pass through untouched.
func Convert(native decimal.Decimal, nativeCurrency, accountCurrency string, m Mode, row map[string]string, opts mapping.FormatOptions) Result {
	if accountCurrency == "" || strings.EqualFold(nativeCurrency, accountCurrency) {
		return Result{Amount: decimal.NewNullDecimal(native)}
	}

	var rate decimal.Decimal

	switch m := m.(type) {
	case SingleRate:
		rate = m.Rate
	case RateColumn:
		if m.Column == "" {
			return flagged(nativeCurrency, accountCurrency, "no FX rate column mapped")
		}

		r, ok := normalize.ParseAmount(row[m.Column], opts)
		if !ok {
			return flagged(nativeCurrency, accountCurrency, "FX rate missing")
		}

		rate = r
	default:
		return flagged(nativeCurrency, accountCurrency, "FX conversion skipped")
	}

	if !rate.IsPositive() {
		return flagged(nativeCurrency, accountCurrency, "FX rate missing or invalid")
	}

	return Result{
		Amount: decimal.NewNullDecimal(native.Mul(rate).Round(2)),
		Rate:   decimal.NewNullDecimal(rate),
	}
}

func flagged(from, to, reason string) Result {
	return Result{
		NeedsFx: true,
		Warning: fmt.Sprintf("%s: %s to %s", reason, strings.ToUpper(from), strings.ToUpper(to)),
	}
}
