package mapping

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Field is a canonical column that source columns are mapped onto.
type Field int

const (
	FieldDate Field = iota + 1
	FieldAmount
	FieldDebit
	FieldCredit
	FieldDescription
	FieldPayee
	FieldCurrency
	FieldCategory
	FieldNotes
	FieldExternalID
	FieldCounterparty
	FieldBalance
	FieldAccount
	FieldFXRate
)

// Fields lists every canonical field in display order.
var Fields = []Field{
	FieldDate,
	FieldAmount,
	FieldDebit,
	FieldCredit,
	FieldDescription,
	FieldPayee,
	FieldCurrency,
	FieldCategory,
	FieldNotes,
	FieldExternalID,
	FieldCounterparty,
	FieldBalance,
	FieldAccount,
	FieldFXRate,
}

var fieldNames = map[Field]string{
	FieldDate:         "date",
	FieldAmount:       "amount",
	FieldDebit:        "debit",
	FieldCredit:       "credit",
	FieldDescription:  "description",
	FieldPayee:        "payee",
	FieldCurrency:     "currency",
	FieldCategory:     "category",
	FieldNotes:        "notes",
	FieldExternalID:   "external_id",
	FieldCounterparty: "counterparty",
	FieldBalance:      "balance",
	FieldAccount:      "account",
	FieldFXRate:       "fx_rate",
}

var ErrUnknownField = errors.New("unknown field")

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}

	return fmt.Sprintf("field(%d)", int(f))
}

// Multi reports whether the field accepts more than one source column.
func (f Field) Multi() bool {
	return f == FieldDescription || f == FieldNotes
}

func ParseField(s string) (Field, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, name := range fieldNames {
		if name == s {
			return f, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownField, s)
}

func (f Field) MarshalText() ([]byte, error) {
	if _, ok := fieldNames[f]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownField, int(f))
	}

	return []byte(f.String()), nil
}

func (f *Field) UnmarshalText(b []byte) error {
	parsed, err := ParseField(string(b))
	if err != nil {
		return err
	}

	*f = parsed

	return nil
}

// ColumnMapping maps a canonical field to an ordered list of source columns.
type ColumnMapping map[Field][]string

// Set assigns columns to a field. Empty column names are dropped and
// single-column fields reject more than one column.
func (m ColumnMapping) Set(f Field, columns ...string) error {
	if _, ok := fieldNames[f]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownField, int(f))
	}

	cols := make([]string, 0, len(columns))
	for _, c := range columns {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}

	if len(cols) > 1 && !f.Multi() {
		return fmt.Errorf("field %s accepts a single column, got %d", f, len(cols))
	}

	if len(cols) == 0 {
		delete(m, f)
		return nil
	}

	m[f] = cols

	return nil
}

func (m ColumnMapping) Columns(f Field) []string {
	return m[f]
}

// Column returns the first column mapped to f, or "".
func (m ColumnMapping) Column(f Field) string {
	if cols := m[f]; len(cols) > 0 {
		return cols[0]
	}

	return ""
}

func (m ColumnMapping) Has(f Field) bool {
	return len(m[f]) > 0
}

func (m ColumnMapping) Clone() ColumnMapping {
	out := make(ColumnMapping, len(m))
	for f, cols := range m {
		out[f] = slices.Clone(cols)
	}

	return out
}

// Transforms are per-profile adjustments applied while normalizing rows.
type Transforms struct {
	InvertSign           bool   `json:"invert_sign"`
	DescriptionSeparator string `json:"description_separator"`
}

// Separator returns the description separator, defaulting to a single space.
func (t Transforms) Separator() string {
	if t.DescriptionSeparator == "" {
		return " "
	}

	return t.DescriptionSeparator
}

// HeaderFingerprint identifies a header set for profile lookup.
func HeaderFingerprint(headers []string) string {
	parts := make([]string, len(headers))
	for i, h := range headers {
		parts[i] = strings.ToLower(strings.TrimSpace(h))
	}

	return strings.Join(parts, "|")
}

var ErrIncomplete = errors.New("mapping incomplete")

// Missing lists what still has to be mapped before a preview can be built.
func (m ColumnMapping) Missing(sign SignConvention, accountSelected bool) []string {
	var missing []string

	if !m.Has(FieldDate) {
		missing = append(missing, FieldDate.String())
	}

	if !m.Has(FieldDescription) {
		missing = append(missing, FieldDescription.String())
	}

	switch sign {
	case SignDebitCredit:
		if !m.Has(FieldDebit) && !m.Has(FieldCredit) {
			missing = append(missing, "debit or credit")
		}
	default:
		if !m.Has(FieldAmount) {
			missing = append(missing, FieldAmount.String())
		}
	}

	if !accountSelected && !m.Has(FieldAccount) {
		missing = append(missing, FieldAccount.String())
	}

	return missing
}

// Complete returns ErrIncomplete naming the missing fields, or nil.
func (m ColumnMapping) Complete(sign SignConvention, accountSelected bool) error {
	missing := m.Missing(sign, accountSelected)
	if len(missing) == 0 {
		return nil
	}

	return fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
}
