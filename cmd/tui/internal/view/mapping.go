package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/fx"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/wizard"
	"github.com/MrJamesThe3rd/ledgerimport/internal/reference"
)

// mappingFields are the form bindings of the mapping step. The form keeps
// pointers into it, so it lives behind a pointer on the model.
type mappingFields struct {
	Account     string
	Date        string
	Amount      string
	Debit       string
	Credit      string
	Description []string
	Payee       string
	Currency    string
	Category    string
	Notes       []string

	DateFormat mapping.DateFormat
	Decimal    string
	Thousands  string
	Sign       mapping.SignConvention
	InvertSign bool

	FXKind   string
	FXRate   string
	FXColumn string
}

func newMappingFields(st wizard.State) *mappingFields {
	m := st.Mapping

	f := &mappingFields{
		Date:        m.Column(mapping.FieldDate),
		Amount:      m.Column(mapping.FieldAmount),
		Debit:       m.Column(mapping.FieldDebit),
		Credit:      m.Column(mapping.FieldCredit),
		Description: m.Columns(mapping.FieldDescription),
		Payee:       m.Column(mapping.FieldPayee),
		Currency:    m.Column(mapping.FieldCurrency),
		Category:    m.Column(mapping.FieldCategory),
		Notes:       m.Columns(mapping.FieldNotes),
		DateFormat:  st.Format.DateFormat,
		Decimal:     st.Format.DecimalSeparator,
		Thousands:   st.Format.ThousandsSeparator,
		Sign:        st.Format.SignConvention,
		InvertSign:  st.Transforms.InvertSign,
		FXKind:      fx.Skip{}.String(),
		FXColumn:    m.Column(mapping.FieldFXRate),
	}

	if st.AccountID != nil {
		f.Account = st.AccountID.String()
	}

	if f.Decimal == "" {
		f.Decimal = "."
	}

	switch mode := st.FX.(type) {
	case fx.SingleRate:
		f.FXKind = mode.String()
		f.FXRate = mode.Rate.String()
	case fx.RateColumn:
		f.FXKind = mode.String()
		f.FXColumn = mode.Column
	}

	return f
}

// settings is the outcome of a completed mapping form.
type settings struct {
	mapping    mapping.ColumnMapping
	format     mapping.FormatOptions
	transforms mapping.Transforms
	fx         fx.Mode
	accountID  *uuid.UUID
}

// settings overlays the form onto base, keeping fields the form does not edit.
func (f *mappingFields) settings(base mapping.ColumnMapping, separator string) (settings, error) {
	cm := base.Clone()

	single := map[mapping.Field]string{
		mapping.FieldDate:     f.Date,
		mapping.FieldAmount:   f.Amount,
		mapping.FieldDebit:    f.Debit,
		mapping.FieldCredit:   f.Credit,
		mapping.FieldPayee:    f.Payee,
		mapping.FieldCurrency: f.Currency,
		mapping.FieldCategory: f.Category,
	}

	if f.Sign == mapping.SignDebitCredit {
		single[mapping.FieldAmount] = ""
	} else {
		single[mapping.FieldDebit] = ""
		single[mapping.FieldCredit] = ""
	}

	for field, column := range single {
		if err := cm.Set(field, column); err != nil {
			return settings{}, err
		}
	}

	if err := cm.Set(mapping.FieldDescription, f.Description...); err != nil {
		return settings{}, err
	}

	if err := cm.Set(mapping.FieldNotes, f.Notes...); err != nil {
		return settings{}, err
	}

	if f.FXKind == (fx.RateColumn{}).String() {
		if err := cm.Set(mapping.FieldFXRate, f.FXColumn); err != nil {
			return settings{}, err
		}
	}

	format := mapping.FormatOptions{
		DateFormat:         f.DateFormat,
		DecimalSeparator:   f.Decimal,
		ThousandsSeparator: f.Thousands,
		SignConvention:     f.Sign,
	}

	if err := format.Validate(); err != nil {
		return settings{}, err
	}

	mode, err := fx.Decode(f.FXKind, f.FXRate, f.FXColumn)
	if err != nil {
		return settings{}, err
	}

	out := settings{
		mapping: cm,
		format:  format,
		transforms: mapping.Transforms{
			InvertSign:           f.InvertSign,
			DescriptionSeparator: separator,
		},
		fx: mode,
	}

	if f.Account != "" {
		id, err := uuid.Parse(f.Account)
		if err != nil {
			return settings{}, fmt.Errorf("account: %w", err)
		}

		out.accountID = &id
	}

	return out, nil
}

func columnOptions(headers []string) []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("(none)", "")}
	for _, h := range headers {
		opts = append(opts, huh.NewOption(h, h))
	}

	return opts
}

func buildMappingForm(f *mappingFields, headers []string, accounts []reference.Account) *huh.Form {
	accountOpts := []huh.Option[string]{huh.NewOption("(from file)", "")}
	for _, a := range accounts {
		label := fmt.Sprintf("%s (%s)", a.Name, a.Currency)
		if a.Number != "" {
			label = fmt.Sprintf("%s %s (%s)", a.Name, a.Number, a.Currency)
		}

		accountOpts = append(accountOpts, huh.NewOption(label, a.ID.String()))
	}

	dateOpts := make([]huh.Option[mapping.DateFormat], len(mapping.DateFormats))
	for i, d := range mapping.DateFormats {
		dateOpts[i] = huh.NewOption(d.String(), d)
	}

	separators := []huh.Option[string]{
		huh.NewOption("none", ""),
		huh.NewOption(". (dot)", "."),
		huh.NewOption(", (comma)", ","),
		huh.NewOption("space", " "),
		huh.NewOption("' (apostrophe)", "'"),
	}

	columns := columnOptions(headers)
	multi := columnOptions(headers)[1:]

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Account").Options(accountOpts...).Value(&f.Account),
			huh.NewSelect[mapping.SignConvention]().
				Title("Amount layout").
				Options(
					huh.NewOption("One signed amount column", mapping.SignSingle),
					huh.NewOption("Separate debit and credit columns", mapping.SignDebitCredit),
				).
				Value(&f.Sign),
			huh.NewSelect[string]().Title("Date").Options(columns...).Value(&f.Date),
			huh.NewMultiSelect[string]().Title("Description").Options(multi...).Value(&f.Description),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Amount").Options(columns...).Value(&f.Amount),
		).WithHideFunc(func() bool { return f.Sign == mapping.SignDebitCredit }),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Debit").Options(columns...).Value(&f.Debit),
			huh.NewSelect[string]().Title("Credit").Options(columns...).Value(&f.Credit),
		).WithHideFunc(func() bool { return f.Sign != mapping.SignDebitCredit }),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Payee").Options(columns...).Value(&f.Payee),
			huh.NewSelect[string]().Title("Currency").Options(columns...).Value(&f.Currency),
			huh.NewSelect[string]().Title("Category").Options(columns...).Value(&f.Category),
			huh.NewMultiSelect[string]().Title("Notes").Options(multi...).Value(&f.Notes),
		),
		huh.NewGroup(
			huh.NewSelect[mapping.DateFormat]().Title("Date format").Options(dateOpts...).Value(&f.DateFormat),
			huh.NewSelect[string]().Title("Decimal separator").Options(separators[1:3]...).Value(&f.Decimal),
			huh.NewSelect[string]().Title("Thousands separator").Options(separators...).Value(&f.Thousands).
				Validate(func(s string) error {
					if s != "" && s == f.Decimal {
						return fmt.Errorf("must differ from the decimal separator")
					}
					return nil
				}),
			huh.NewConfirm().Title("Invert signs").Value(&f.InvertSign),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Foreign currency rows").
				Options(
					huh.NewOption("Leave unconverted", fx.Skip{}.String()),
					huh.NewOption("Apply one rate", fx.SingleRate{}.String()),
					huh.NewOption("Read rate from a column", fx.RateColumn{}.String()),
				).
				Value(&f.FXKind),
			huh.NewInput().Title("Rate").Placeholder("1.0850").Value(&f.FXRate).
				Validate(func(s string) error {
					if f.FXKind == (fx.SingleRate{}).String() && strings.TrimSpace(s) == "" {
						return fmt.Errorf("rate is required")
					}
					return nil
				}),
			huh.NewSelect[string]().Title("Rate column").Options(columns...).Value(&f.FXColumn),
		),
	).WithWidth(60).WithShowHelp(false)
}
