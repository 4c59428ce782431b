// Package preview turns raw rows into status-annotated transaction candidates.
//
// Build is a pure function of its Input: callers re-run it whenever the
// mapping, format options, FX mode, overrides or defaults change.
package preview

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/category"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/dedup"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/fx"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/normalize"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/parser"
	"github.com/MrJamesThe3rd/ledgerimport/internal/reference"
)

const (
	WarnMissingPayee = "Missing payee"
	WarnNoCategory   = "No category"
)

// Row is one normalized candidate transaction.
type Row struct {
	Index           int
	AccountID       *uuid.UUID
	AccountCurrency string
	Date            *time.Time

	// Amount is in the account currency; NativeAmount in NativeCurrency.
	Amount         decimal.NullDecimal
	NativeAmount   decimal.NullDecimal
	NativeCurrency string
	FXRate         decimal.NullDecimal
	NeedsFx        bool

	Description    string
	RawDescription string
	PayeeID        *uuid.UUID
	PayeeName      string
	CategoryID     *uuid.UUID
	SubCategoryID  *uuid.UUID
	Notes          string
	ExternalID     string
	Counterparty   string
	Balance        decimal.NullDecimal

	Duplicate   bool
	Fingerprint *string
	Errors      []string
	Warnings    []string
}

// Invalid reports a fatal error or an unresolved account, date or amount.
func (r Row) Invalid() bool {
	return len(r.Errors) > 0 || r.AccountID == nil || r.Date == nil || !r.NativeAmount.Valid
}

// Status derives the row status; the first matching condition wins.
func (r Row) Status() Status {
	switch {
	case r.Invalid():
		return StatusInvalid
	case r.NeedsFx:
		return StatusNeedsFx
	case r.Duplicate:
		return StatusDuplicate
	case len(r.Warnings) > 0:
		return StatusWarning
	}

	return StatusValid
}

// Defaults apply to every row that does not resolve its own value.
type Defaults struct {
	AccountID *uuid.UUID
}

// Input is everything a preview depends on.
type Input struct {
	Rows       []parser.RawRow
	Mapping    mapping.ColumnMapping
	Format     mapping.FormatOptions
	FX         fx.Mode
	Transforms mapping.Transforms
	Overrides  Overrides
	Defaults   Defaults
	Reference  reference.Snapshot

	// Existing holds fingerprints of transactions already in the ledger.
	Existing map[string]struct{}

	// Describe maps a raw description to its display form. Optional.
	Describe func(raw string) string
}

// Build normalizes every raw row. Rows come back in source order.
func Build(in Input) []Row {
	in.FX = rateSource(in.FX, in.Mapping)
	detector := dedup.NewDetector(in.Existing)
	rows := make([]Row, len(in.Rows))

	for i, raw := range in.Rows {
		row, pathWarning := normalizeRow(i, raw, in)

		override, overridden := in.Overrides[i]
		if overridden {
			if override.CategoryID != nil {
				pathWarning = ""
			}

			row = override.apply(row, in.Reference)
		}

		row.Warnings = append(row.Warnings, annotations(row, pathWarning)...)

		if row.AccountID != nil && row.Date != nil && row.Amount.Valid {
			fp := dedup.Fingerprint(*row.AccountID, *row.Date, row.Amount.Decimal, row.RawDescription)
			row.Fingerprint = &fp
			row.Duplicate = detector.Check(fp)
		}

		rows[i] = row
	}

	return rows
}

// rateSource reads rates from the mapped fx_rate column when the mode
// names no column of its own.
func rateSource(mode fx.Mode, m mapping.ColumnMapping) fx.Mode {
	if rc, ok := mode.(fx.RateColumn); ok && rc.Column == "" {
		rc.Column = m.Column(mapping.FieldFXRate)
		return rc
	}

	return mode
}

func normalizeRow(index int, raw parser.RawRow, in Input) (Row, string) {
	m := in.Mapping
	row := Row{Index: index}

	account, ok := resolveAccount(raw, in, &row)
	if ok {
		id := account.ID
		row.AccountID = &id
		row.AccountCurrency = account.Currency
	}

	dateText := raw.Get(m.Column(mapping.FieldDate))
	if d, ok := normalize.ParseDate(dateText, in.Format.DateFormat); ok {
		row.Date = &d
	} else if dateText == "" {
		row.Errors = append(row.Errors, "Missing date")
	} else {
		row.Errors = append(row.Errors, fmt.Sprintf("Invalid date %q for %s", dateText, in.Format.DateFormat))
	}

	if amount, ok := signedAmount(raw, in, &row); ok {
		if in.Transforms.InvertSign {
			amount = amount.Neg()
		}

		row.NativeAmount = decimal.NewNullDecimal(amount)
	}

	row.NativeCurrency = normalize.Currency(raw.Get(m.Column(mapping.FieldCurrency)), row.AccountCurrency)

	if row.NativeAmount.Valid && row.AccountID != nil {
		conv := fx.Convert(row.NativeAmount.Decimal, row.NativeCurrency, row.AccountCurrency, in.FX, raw, in.Format)
		row.Amount = conv.Amount
		row.FXRate = conv.Rate
		row.NeedsFx = conv.NeedsFx

		if conv.Warning != "" {
			row.Warnings = append(row.Warnings, conv.Warning)
		}
	}

	row.RawDescription = normalize.Join(values(raw, m.Columns(mapping.FieldDescription)), in.Transforms.Separator())
	row.Description = row.RawDescription

	if in.Describe != nil && row.RawDescription != "" {
		if d := in.Describe(row.RawDescription); d != "" {
			row.Description = d
		}
	}

	if name := raw.Get(m.Column(mapping.FieldPayee)); name != "" {
		row.PayeeName = name
		if p, ok := in.Reference.PayeeByName(name); ok {
			id := p.ID
			row.PayeeID = &id
			row.PayeeName = p.Name
		}
	}

	var pathWarning string

	if path := raw.Get(m.Column(mapping.FieldCategory)); path != "" {
		match := category.Resolve(path, in.Reference.Categories)
		row.CategoryID = match.CategoryID
		row.SubCategoryID = match.SubCategoryID
		pathWarning = match.Warning
	}

	row.Notes = normalize.Join(values(raw, m.Columns(mapping.FieldNotes)), in.Transforms.Separator())
	row.ExternalID = raw.Get(m.Column(mapping.FieldExternalID))
	row.Counterparty = raw.Get(m.Column(mapping.FieldCounterparty))

	if col := m.Column(mapping.FieldBalance); col != "" {
		row.Balance = normalize.ParseNullAmount(raw.Get(col), in.Format)
	}

	return row, pathWarning
}

func resolveAccount(raw parser.RawRow, in Input, row *Row) (reference.Account, bool) {
	if value := raw.Get(in.Mapping.Column(mapping.FieldAccount)); value != "" {
		if a, ok := normalize.Account(value, in.Reference.Accounts); ok {
			return a, true
		}

		row.Errors = append(row.Errors, fmt.Sprintf("Unknown account %q", value))

		return reference.Account{}, false
	}

	if in.Defaults.AccountID == nil {
		row.Errors = append(row.Errors, "No account selected")
		return reference.Account{}, false
	}

	a, ok := in.Reference.Account(*in.Defaults.AccountID)
	if !ok {
		row.Errors = append(row.Errors, "Selected account not found")
		return reference.Account{}, false
	}

	return a, true
}

func signedAmount(raw parser.RawRow, in Input, row *Row) (decimal.Decimal, bool) {
	m := in.Mapping

	if in.Format.SignConvention == mapping.SignDebitCredit {
		debit := normalize.ParseNullAmount(raw.Get(m.Column(mapping.FieldDebit)), in.Format)
		credit := normalize.ParseNullAmount(raw.Get(m.Column(mapping.FieldCredit)), in.Format)

		amount, ok := normalize.SignedAmount(debit, credit)
		if !ok {
			row.Errors = append(row.Errors, "Missing debit and credit")
		}

		return amount, ok
	}

	text := raw.Get(m.Column(mapping.FieldAmount))

	amount, ok := normalize.ParseAmount(text, in.Format)
	if !ok {
		if text == "" {
			row.Errors = append(row.Errors, "Missing amount")
		} else {
			row.Errors = append(row.Errors, fmt.Sprintf("Invalid amount %q", text))
		}
	}

	return amount, ok
}

// annotations lists the non-fatal issues left once overrides are merged.
func annotations(row Row, pathWarning string) []string {
	var warnings []string

	if row.PayeeID == nil && row.PayeeName == "" {
		warnings = append(warnings, WarnMissingPayee)
	}

	switch {
	case pathWarning != "":
		warnings = append(warnings, pathWarning)
	case row.CategoryID == nil:
		warnings = append(warnings, WarnNoCategory)
	}

	return warnings
}

func values(raw parser.RawRow, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = raw.Get(c)
	}

	return out
}
