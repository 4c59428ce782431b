package parser

import (
	"sort"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/normalize"
)

// aliases lists known header names per field, most specific first.
var aliases = []struct {
	field mapping.Field
	names []string
}{
	{mapping.FieldDate, []string{"date", "transaction date", "posting date", "posted date", "booking date", "value date", "data mov", "data movimento", "data", "data valor", "datum", "dtposted"}},
	{mapping.FieldDebit, []string{"debit", "debit amount", "debito", "withdrawal", "withdrawals", "money out", "paid out"}},
	{mapping.FieldCredit, []string{"credit", "credit amount", "credito", "deposit", "deposits", "money in", "paid in"}},
	{mapping.FieldBalance, []string{"balance", "running balance", "saldo", "saldo contabilistico", "saldo disponivel"}},
	{mapping.FieldAmount, []string{"amount", "transaction amount", "montante", "movimento", "valor", "value", "betrag", "importe", "trnamt"}},
	{mapping.FieldDescription, []string{"description", "transaction description", "descricao", "details", "narrative", "name"}},
	{mapping.FieldPayee, []string{"payee", "merchant", "beneficiary", "payee name"}},
	{mapping.FieldCounterparty, []string{"counterparty", "counter party", "counterparty account", "iban"}},
	{mapping.FieldCurrency, []string{"currency", "currency code", "ccy", "moeda", "curdef"}},
	{mapping.FieldCategory, []string{"category", "category path", "categoria"}},
	{mapping.FieldNotes, []string{"notes", "note", "memo", "comment", "comments"}},
	{mapping.FieldExternalID, []string{"transaction id", "id", "reference", "ref", "fitid", "external id"}},
	{mapping.FieldAccount, []string{"account", "account name", "account number", "conta"}},
	{mapping.FieldFXRate, []string{"fx rate", "exchange rate", "rate", "cambio"}},
}

// fuzzyFields are the fields worth a fuzzy guess when no alias matches exactly.
var fuzzyFields = map[mapping.Field]bool{
	mapping.FieldDate:        true,
	mapping.FieldAmount:      true,
	mapping.FieldDescription: true,
	mapping.FieldDebit:       true,
	mapping.FieldCredit:      true,
}

const maxFuzzyDistance = 20

// SuggestMapping guesses a column mapping from header names.
func SuggestMapping(headers []string) (mapping.ColumnMapping, mapping.FormatOptions) {
	format := mapping.DefaultFormat()
	m := make(mapping.ColumnMapping)

	normalized := make(map[string]string, len(headers))
	for _, h := range headers {
		normalized[h] = normalizeHeader(h)
	}

	used := make(map[string]bool, len(headers))

	for _, a := range aliases {
		if col := exactMatch(a.names, headers, normalized, used); col != "" {
			used[col] = true
			m[a.field] = []string{col}
		}
	}

	for _, a := range aliases {
		if m.Has(a.field) || !fuzzyFields[a.field] {
			continue
		}

		if col := fuzzyMatch(a.names, headers, normalized, used); col != "" {
			used[col] = true
			m[a.field] = []string{col}
		}
	}

	if !m.Has(mapping.FieldAmount) && (m.Has(mapping.FieldDebit) || m.Has(mapping.FieldCredit)) {
		format.SignConvention = mapping.SignDebitCredit
	}

	return m, format
}

func exactMatch(names, headers []string, normalized map[string]string, used map[string]bool) string {
	for _, name := range names {
		for _, h := range headers {
			if !used[h] && normalized[h] == name {
				return h
			}
		}
	}

	return ""
}

func fuzzyMatch(names, headers []string, normalized map[string]string, used map[string]bool) string {
	var candidates []string

	byNorm := make(map[string]string, len(headers))
	for _, h := range headers {
		if used[h] {
			continue
		}

		candidates = append(candidates, normalized[h])
		byNorm[normalized[h]] = h
	}

	if len(candidates) == 0 {
		return ""
	}

	var best fuzzy.Rank

	found := false

	for _, name := range names {
		ranks := fuzzy.RankFindNormalizedFold(name, candidates)
		sort.Sort(ranks)

		for _, r := range ranks {
			if r.Distance > maxFuzzyDistance || !containsWord(r.Target, name) {
				continue
			}

			if !found || r.Distance < best.Distance {
				best = r
				found = true
			}

			break
		}
	}

	if !found {
		return ""
	}

	return byNorm[best.Target]
}

// containsWord keeps fuzzy hits anchored on whole words so "date" does not
// match "updated".
func containsWord(target, name string) bool {
	words := strings.Fields(target)
	for _, w := range strings.Fields(name) {
		found := false
		for _, tw := range words {
			if tw == w {
				found = true
				break
			}
		}

		if !found {
			return false
		}
	}

	return true
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeHeader lowercases, drops accents and reduces punctuation to spaces.
func normalizeHeader(h string) string {
	plain, _, err := transform.String(stripMarks, h)
	if err != nil {
		plain = h
	}

	plain = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}

		return ' '
	}, plain)

	return strings.Join(strings.Fields(plain), " ")
}

var dateSeparators = map[mapping.DateFormat]string{
	mapping.DateISO:      "-",
	mapping.DateDMYSlash: "/",
	mapping.DateMDYSlash: "/",
	mapping.DateDMYDash:  "-",
	mapping.DateDMYDot:   ".",
}

const dateSample = 50

// sniffDateFormat picks the date format that parses the most sampled values,
// preferring one whose separator matches the data.
func sniffDateFormat(rows []RawRow, column string, fallback mapping.DateFormat) mapping.DateFormat {
	if column == "" {
		return fallback
	}

	var values []string

	for _, r := range rows {
		if v := r.Get(column); v != "" {
			values = append(values, v)
		}

		if len(values) == dateSample {
			break
		}
	}

	if len(values) == 0 {
		return fallback
	}

	best, bestScore := fallback, 0

	for _, f := range mapping.DateFormats {
		parsed := 0
		for _, v := range values {
			if _, ok := normalize.ParseDate(v, f); ok {
				parsed++
			}
		}

		if parsed == 0 {
			continue
		}

		score := parsed * 2
		if strings.Contains(values[0], dateSeparators[f]) {
			score++
		}

		if score > bestScore {
			best, bestScore = f, score
		}
	}

	return best
}
