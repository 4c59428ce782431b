package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/normalize"
)

// QIF row columns.
const (
	QIFDate      = "Date"
	QIFAmount    = "Amount"
	QIFPayee     = "Payee"
	QIFMemo      = "Memo"
	QIFNumber    = "Number"
	QIFCategory  = "Category"
	QIFCleared   = "Cleared"
	QIFAddress   = "Address"
	QIFReference = "Reference"
	QIFSplits    = "Splits"
	QIFAccount   = "Account"
)

var qifHeaders = []string{
	QIFDate, QIFAmount, QIFPayee, QIFMemo, QIFNumber, QIFCategory,
	QIFCleared, QIFAddress, QIFReference, QIFSplits,
}

type qifSection int

const (
	qifNone qifSection = iota
	qifAccount
	qifTransactions
	qifIgnored
)

// qifSplit is one S/E/$ group of a split transaction.
type qifSplit struct {
	category, memo, amount string
}

func (s qifSplit) String() string {
	parts := []string{s.category}
	if s.memo != "" {
		parts = append(parts, s.memo)
	}

	if s.amount != "" {
		parts = append(parts, s.amount)
	}

	return strings.Join(parts, ":")
}

type qifRecord struct {
	fields  map[string]string
	address []string
	splits  []qifSplit
}

func newQIFRecord() *qifRecord {
	return &qifRecord{fields: make(map[string]string)}
}

func (r *qifRecord) empty() bool {
	return len(r.fields) == 0 && len(r.address) == 0 && len(r.splits) == 0
}

func (r *qifRecord) split() *qifSplit {
	if len(r.splits) == 0 {
		r.splits = append(r.splits, qifSplit{})
	}

	return &r.splits[len(r.splits)-1]
}

type qifParser struct{}

func (qifParser) Parse(text string) (*Result, error) {
	res := &Result{}

	section := qifNone
	account := ""
	pendingAccount := ""
	rec := newQIFRecord()
	hasAccount := false

	flush := func() {
		if rec.empty() {
			return
		}

		row := rec.row()
		if account != "" {
			row[QIFAccount] = account
			hasAccount = true
		}

		res.Rows = append(res.Rows, row)
		rec = newQIFRecord()
	}

	for _, raw := range splitLines(strings.TrimPrefix(text, "\ufeff")) {
		line := strings.TrimRight(raw, " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if line[0] == '!' {
			if section == qifTransactions || section == qifNone {
				flush()
			}

			section = qifSectionFor(line, section)

			continue
		}

		switch section {
		case qifAccount:
			switch {
			case line[0] == 'N':
				pendingAccount = strings.TrimSpace(line[1:])
			case line[0] == '^':
				if pendingAccount != "" {
					account = pendingAccount
					res.AccountHints.Names = append(res.AccountHints.Names, pendingAccount)
				}

				pendingAccount = ""
			}
		case qifTransactions, qifNone:
			if line[0] == '^' {
				flush()
				continue
			}

			rec.add(line[0], strings.TrimSpace(line[1:]))
		}
	}

	if section == qifTransactions || section == qifNone {
		flush()
	}

	if len(res.Rows) == 0 {
		return nil, &FormatError{Format: FormatQIF, Err: ErrNoTransactions}
	}

	res.Headers = qifHeaders
	if hasAccount {
		res.Headers = append(append([]string(nil), qifHeaders...), QIFAccount)
	}

	res.SuggestedMapping = mapping.ColumnMapping{
		mapping.FieldDate:        {QIFDate},
		mapping.FieldAmount:      {QIFAmount},
		mapping.FieldDescription: {QIFPayee},
		mapping.FieldPayee:       {QIFPayee},
		mapping.FieldNotes:       {QIFMemo},
		mapping.FieldCategory:    {QIFCategory},
		mapping.FieldExternalID:  {QIFNumber},
	}

	if hasAccount {
		res.SuggestedMapping[mapping.FieldAccount] = []string{QIFAccount}
	}

	res.SuggestedFormat = mapping.FormatOptions{
		DateFormat:         mapping.DateISO,
		DecimalSeparator:   ".",
		ThousandsSeparator: ",",
		SignConvention:     mapping.SignSingle,
	}

	return res, nil
}

func qifSectionFor(line string, current qifSection) qifSection {
	lower := strings.ToLower(strings.TrimSpace(line))

	switch {
	case strings.HasPrefix(lower, "!account"):
		return qifAccount
	case strings.HasPrefix(lower, "!type:"):
		switch strings.TrimSpace(strings.TrimPrefix(lower, "!type:")) {
		case "cat", "class", "memorized", "security", "prices":
			return qifIgnored
		}

		return qifTransactions
	}

	// !Option and !Clear directives leave the current section untouched.
	return current
}

func (r *qifRecord) add(prefix byte, value string) {
	switch prefix {
	case 'D':
		r.fields[QIFDate] = qifDate(value)
	case 'T', 'U':
		if _, ok := r.fields[QIFAmount]; !ok || prefix == 'T' {
			r.fields[QIFAmount] = value
		}
	case 'P':
		r.fields[QIFPayee] = value
	case 'M':
		r.fields[QIFMemo] = value
	case 'N':
		r.fields[QIFNumber] = value
	case 'L':
		r.fields[QIFCategory] = strings.Trim(value, "[]")
	case 'C':
		r.fields[QIFCleared] = value
	case 'A':
		if value != "" {
			r.address = append(r.address, value)
		}
	case 'R':
		r.fields[QIFReference] = value
	case 'S':
		r.splits = append(r.splits, qifSplit{category: strings.Trim(value, "[]")})
	case 'E':
		r.split().memo = value
	case '$':
		r.split().amount = value
	}
}

func (r *qifRecord) row() RawRow {
	row := make(RawRow, len(qifHeaders))
	for _, h := range qifHeaders {
		row[h] = r.fields[h]
	}

	row[QIFAddress] = strings.Join(r.address, ", ")

	if len(r.splits) > 0 {
		parts := make([]string, len(r.splits))
		for i, s := range r.splits {
			parts[i] = s.String()
		}

		row[QIFSplits] = strings.Join(parts, "; ")
	}

	return row
}

// qifDate reads the loose QIF date notations (1/31'24, 01/31/2024,
// 2024-01-31, 31/01/24) and renders them as ISO. Unreadable values are kept
// as-is so the row fails date parsing downstream.
func qifDate(s string) string {
	clean := strings.ReplaceAll(strings.ReplaceAll(s, "'", "/"), " ", "")

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '/' || r == '-' || r == '.'
	})
	if len(parts) != 3 {
		return s
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return s
		}

		nums[i] = n
	}

	var year, month, day int

	if len(parts[0]) == 4 {
		year, month, day = nums[0], nums[1], nums[2]
	} else {
		month, day, year = nums[0], nums[1], nums[2]
		if month > 12 && day <= 12 {
			month, day = day, month
		}

		if len(parts[2]) <= 2 {
			year = normalize.WindowYear(year)
		}
	}

	formatted := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	if _, ok := normalize.ParseDate(formatted, mapping.DateISO); !ok {
		return s
	}

	return formatted
}
