package profile

import (
	"strings"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
)

// layout describes a known bank export by the columns it must carry.
type layout struct {
	name        string
	date        string
	description string
	sign        mapping.SignConvention
	amount      string // used when sign == mapping.SignSingle
	debit       string // used when sign == mapping.SignDebitCredit
	credit      string // used when sign == mapping.SignDebitCredit
	dateFormat  mapping.DateFormat
}

func (l layout) required() []string {
	cols := []string{l.date, l.description}

	switch l.sign {
	case mapping.SignSingle:
		cols = append(cols, l.amount)
	case mapping.SignDebitCredit:
		cols = append(cols, l.debit, l.credit)
	}

	return cols
}

func (l layout) profile() *Profile {
	cm := mapping.ColumnMapping{}
	_ = cm.Set(mapping.FieldDate, l.date)
	_ = cm.Set(mapping.FieldDescription, l.description)

	if l.sign == mapping.SignDebitCredit {
		_ = cm.Set(mapping.FieldDebit, l.debit)
		_ = cm.Set(mapping.FieldCredit, l.credit)
	} else {
		_ = cm.Set(mapping.FieldAmount, l.amount)
	}

	return &Profile{
		Name:    l.name,
		Builtin: true,
		Mapping: cm,
		Format: mapping.FormatOptions{
			DateFormat:         l.dateFormat,
			DecimalSeparator:   ",",
			ThousandsSeparator: ".",
			SignConvention:     l.sign,
		},
	}
}

// builtins are tried in order when no saved profile matches; more specific
// layouts come first.
var builtins = []layout{
	{
		name:        "CGD cartão",
		date:        "Data",
		description: "Descrição",
		sign:        mapping.SignDebitCredit,
		debit:       "Débito",
		credit:      "Crédito",
		dateFormat:  mapping.DateDMYDash,
	},
	{
		name:        "CGD extrato",
		date:        "Data mov.",
		description: "Descrição",
		amount:      "Movimento",
		dateFormat:  mapping.DateDMYDash,
	},
	{
		name:        "CGD conta",
		date:        "Data mov.",
		description: "Descrição",
		amount:      "Montante",
		dateFormat:  mapping.DateDMYDash,
	},
}

// Builtin returns the first known layout whose required columns are all
// present in headers, mapped onto the headers' own spelling.
func Builtin(headers []string) *Profile {
	present := make(map[string]string, len(headers))
	for _, h := range headers {
		present[strings.ToLower(strings.TrimSpace(h))] = h
	}

	for _, l := range builtins {
		cols := l.required()

		matched := true

		for _, c := range cols {
			if _, ok := present[strings.ToLower(c)]; !ok {
				matched = false
				break
			}
		}

		if !matched {
			continue
		}

		p := l.profile()
		for f, mapped := range p.Mapping {
			p.Mapping[f] = []string{present[strings.ToLower(mapped[0])]}
		}

		p.HeaderFingerprint = mapping.HeaderFingerprint(headers)

		return p
	}

	return nil
}
