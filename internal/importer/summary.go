package importer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/preview"
	"github.com/MrJamesThe3rd/ledgerimport/internal/ledger"
)

// summarize counts every row by status and totals the imported ones.
func summarize(rows, imported []preview.Row) ledger.BatchSummary {
	counts := preview.Counts(rows)

	summary := ledger.BatchSummary{
		Imported:  len(imported),
		Duplicate: counts[preview.StatusDuplicate],
		Invalid:   counts[preview.StatusInvalid],
		NeedsFx:   counts[preview.StatusNeedsFx],
		Totals:    map[string]ledger.CurrencyTotals{},
	}

	for _, r := range imported {
		if r.FXRate.Valid {
			summary.FXApplied++
		}

		if summary.EarliestDate == nil || r.Date.Before(*summary.EarliestDate) {
			d := *r.Date
			summary.EarliestDate = &d
		}

		if summary.LatestDate == nil || r.Date.After(*summary.LatestDate) {
			d := *r.Date
			summary.LatestDate = &d
		}

		totals := summary.Totals[r.NativeCurrency]

		amount := r.NativeAmount.Decimal
		if amount.IsNegative() {
			totals.Debit = totals.Debit.Add(amount.Abs())
		} else {
			totals.Credit = totals.Credit.Add(amount)
		}

		summary.Totals[r.NativeCurrency] = totals
	}

	return summary
}

func batchLog(req CommitRequest, s ledger.BatchSummary) []string {
	source := req.FileName
	if source == "" {
		source = "upload"
	}

	log := []string{
		fmt.Sprintf("Imported %d transaction(s) from %s (%s)", s.Imported, source, req.FileFormat),
		fmt.Sprintf("Skipped %d duplicate(s), %d invalid, %d needing FX", s.Duplicate, s.Invalid, s.NeedsFx),
	}

	if req.IncludeDuplicates && s.Duplicate > 0 {
		log[1] = fmt.Sprintf("Included %d duplicate(s); skipped %d invalid, %d needing FX", s.Duplicate, s.Invalid, s.NeedsFx)
	}

	if s.FXApplied > 0 {
		log = append(log, fmt.Sprintf("Converted %d transaction(s) with an FX rate", s.FXApplied))
	}

	currencies := make([]string, 0, len(s.Totals))
	for code := range s.Totals {
		currencies = append(currencies, code)
	}

	slices.Sort(currencies)

	for _, code := range currencies {
		t := s.Totals[code]
		log = append(log, fmt.Sprintf("%s: debits %s, credits %s", displayCode(code), Display(t.Debit, code), Display(t.Credit, code)))
	}

	return log
}

func displayCode(code string) string {
	if code == "" {
		return "Unknown currency"
	}

	return strings.ToUpper(code)
}

// Display formats an amount with its currency's symbol and minor units.
// Unknown codes fall back to the plain amount followed by the code.
func Display(amount decimal.Decimal, code string) string {
	cur := money.GetCurrency(strings.ToUpper(code))
	if cur == nil {
		return strings.TrimSpace(amount.StringFixed(2) + " " + code)
	}

	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()

	return money.New(minor, cur.Code).Display()
}
