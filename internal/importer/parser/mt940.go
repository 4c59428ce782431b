package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/normalize"
)

// MT940 row columns.
const (
	MT940ValueDate     = "Value Date"
	MT940EntryDate     = "Entry Date"
	MT940Amount        = "Amount"
	MT940Type          = "Type"
	MT940Reference     = "Reference"
	MT940BankReference = "Bank Reference"
	MT940Details       = "Details"
	MT940Narrative     = "Narrative"
	MT940Currency      = "Currency"
	MT940Account       = "Account"
)

var mt940Headers = []string{
	MT940ValueDate, MT940EntryDate, MT940Amount, MT940Type, MT940Reference,
	MT940BankReference, MT940Details, MT940Narrative, MT940Currency, MT940Account,
}

var (
	mt940Field = regexp.MustCompile(`^:(\d{2}[A-Z]?):(.*)$`)
	// value date, entry date, mark, funds code, amount, rest
	mt940Line = regexp.MustCompile(`^(\d{6})(\d{4})?(R?[CD])R?([A-Z])?(\d+,\d*)(.*)$`)
)

type mt940Parser struct{}

type mt940State struct {
	res      *Result
	account  string
	currency string
	current  RawRow
	narr     []string
	tag      string
}

func (s *mt940State) flush() {
	if s.current == nil {
		return
	}

	s.current[MT940Narrative] = strings.Join(s.narr, " ")
	s.res.Rows = append(s.res.Rows, s.current)
	s.current, s.narr = nil, nil
}

func (mt940Parser) Parse(text string) (*Result, error) {
	st := &mt940State{res: &Result{}}

	for _, raw := range splitLines(strings.TrimPrefix(text, "\ufeff")) {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "{") {
			continue
		}

		if line == "-" || strings.HasPrefix(line, "-}") {
			st.flush()
			st.tag = ""

			continue
		}

		m := mt940Field.FindStringSubmatch(line)
		if m == nil {
			st.continuation(line)
			continue
		}

		st.tag = m[1]
		st.field(m[1], strings.TrimSpace(m[2]))
	}

	st.flush()

	res := st.res
	if len(res.Rows) == 0 {
		return nil, &FormatError{Format: FormatMT940, Err: ErrNoTransactions}
	}

	res.Headers = mt940Headers
	res.SuggestedMapping = mapping.ColumnMapping{
		mapping.FieldDate:        {MT940ValueDate},
		mapping.FieldAmount:      {MT940Amount},
		mapping.FieldDescription: {MT940Narrative},
		mapping.FieldExternalID:  {MT940Reference},
		mapping.FieldCurrency:    {MT940Currency},
	}
	res.SuggestedFormat = mapping.FormatOptions{
		DateFormat:       mapping.DateISO,
		DecimalSeparator: ".",
		SignConvention:   mapping.SignSingle,
	}

	return res, nil
}

func (s *mt940State) field(tag, value string) {
	switch tag {
	case "20":
		if s.res.ProviderHint == "" {
			s.res.ProviderHint = value
		}
	case "25":
		s.flush()
		s.account = value
		if s.res.AccountHints.Number == "" {
			s.res.AccountHints.Number = value
		}
	case "60F", "60M":
		// C240131EUR1234,56: mark, date, then a three letter currency.
		if len(value) >= 10 {
			s.currency = strings.ToUpper(value[7:10])
			if s.res.AccountHints.Currency == "" {
				s.res.AccountHints.Currency = s.currency
			}
		}
	case "61":
		s.flush()
		s.current = s.statementLine(value)
	case "62F", "62M", "64", "65":
		// Balances close the transaction block; a later :86: is
		// statement-level information.
		s.flush()
	case "86":
		if s.current != nil && value != "" {
			s.narr = append(s.narr, value)
		}
	}
}

func (s *mt940State) continuation(line string) {
	if s.current == nil {
		return
	}

	switch s.tag {
	case "61":
		s.current[MT940Details] = strings.TrimSpace(s.current[MT940Details] + " " + line)
	case "86":
		s.narr = append(s.narr, line)
	}
}

// statementLine decodes a :61: field. Lines that do not match keep empty
// date and amount so the row surfaces as invalid rather than vanishing.
func (s *mt940State) statementLine(value string) RawRow {
	row := RawRow{
		MT940Currency: s.currency,
		MT940Account:  s.account,
	}

	m := mt940Line.FindStringSubmatch(value)
	if m == nil {
		row[MT940Details] = value
		return row
	}

	valueDate := mt940Date(m[1])
	row[MT940ValueDate] = valueDate
	row[MT940EntryDate] = mt940EntryDate(valueDate, m[2])
	row[MT940Amount] = mt940Amount(m[3], m[5])

	rest := m[6]
	if len(rest) >= 4 {
		row[MT940Type] = rest[:4]
		rest = rest[4:]
	}

	ref, bankRef, _ := strings.Cut(rest, "//")
	row[MT940Reference] = strings.TrimSpace(ref)
	row[MT940BankReference] = strings.TrimSpace(bankRef)

	return row
}

func mt940Date(yymmdd string) string {
	yy, _ := strconv.Atoi(yymmdd[0:2])
	return fmt.Sprintf("%04d-%s-%s", normalize.WindowYear(yy), yymmdd[2:4], yymmdd[4:6])
}

// mt940EntryDate completes an MMDD booking date with the value date's year,
// stepping over a year boundary when the months are a December/January pair.
func mt940EntryDate(valueDate, mmdd string) string {
	if mmdd == "" || len(valueDate) != 10 {
		return ""
	}

	year, _ := strconv.Atoi(valueDate[0:4])
	valueMonth, _ := strconv.Atoi(valueDate[5:7])
	entryMonth, _ := strconv.Atoi(mmdd[0:2])

	switch {
	case valueMonth == 12 && entryMonth == 1:
		year++
	case valueMonth == 1 && entryMonth == 12:
		year--
	}

	return fmt.Sprintf("%04d-%s-%s", year, mmdd[0:2], mmdd[2:4])
}

// mt940Amount signs a comma-decimal amount by its debit/credit mark.
// Reversals (RC, RD) flip the sign of the mark they reverse.
func mt940Amount(mark, amount string) string {
	amount = strings.Replace(amount, ",", ".", 1)
	if strings.HasSuffix(amount, ".") {
		amount += "00"
	}

	switch mark {
	case "D", "RC":
		return "-" + amount
	}

	return amount
}
