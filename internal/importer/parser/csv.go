package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
)

type csvParser struct{}

var delimiters = []rune{',', ';', '\t', '|'}

func (csvParser) Parse(text string) (*Result, error) {
	text = strings.TrimPrefix(text, "\ufeff")

	header := firstNonBlankLine(text)
	if header == "" {
		return nil, &FormatError{Format: FormatCSV, Err: ErrMissingHeader}
	}

	delim := sniffDelimiter(header)

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delim
	reader.FieldsPerRecord = -1

	records, err := readRecords(reader)
	if err != nil {
		return nil, err
	}

	for len(records) > 0 && blankRecord(records[0]) {
		records = records[1:]
	}

	if len(records) == 0 {
		return nil, &FormatError{Format: FormatCSV, Err: ErrMissingHeader}
	}

	headers := headerNames(records[0])

	var rows []RawRow

	for _, rec := range records[1:] {
		if blankRecord(rec) {
			continue
		}

		row := make(RawRow, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = strings.TrimSpace(rec[i])
			} else {
				row[h] = ""
			}
		}

		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, &FormatError{Format: FormatCSV, Err: ErrNoTransactions}
	}

	suggested, format := SuggestMapping(headers)
	if delim == ';' {
		format.DecimalSeparator = ","
		format.ThousandsSeparator = "."
	}

	format.DateFormat = sniffDateFormat(rows, suggested.Column(mapping.FieldDate), format.DateFormat)

	return &Result{
		Headers:          headers,
		Rows:             rows,
		SuggestedMapping: suggested,
		SuggestedFormat:  format,
	}, nil
}

func readRecords(reader *csv.Reader) ([][]string, error) {
	var records [][]string

	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}

		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				if errors.Is(perr.Err, csv.ErrQuote) {
					return nil, &FormatError{Format: FormatCSV, Line: perr.StartLine, Err: ErrUnterminatedQuote}
				}

				return nil, &FormatError{Format: FormatCSV, Line: perr.Line, Err: perr.Err}
			}

			return nil, fmt.Errorf("reading csv: %w", err)
		}

		records = append(records, rec)
	}
}

// headerNames trims header cells, names blank ones by position and
// disambiguates repeats so every column has a unique key.
func headerNames(rec []string) []string {
	headers := make([]string, len(rec))
	seen := make(map[string]int, len(rec))

	for i, cell := range rec {
		name := strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("Column %d", i+1)
		}

		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s (%d)", name, n)
		}

		headers[i] = name
	}

	return headers
}

func blankRecord(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

func firstNonBlankLine(text string) string {
	for _, line := range splitLines(text) {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}

	return ""
}

// sniffDelimiter counts candidate delimiters outside quotes in the header line.
func sniffDelimiter(line string) rune {
	counts := make(map[rune]int, len(delimiters))
	inQuotes := false

	for _, r := range line {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}

		if !inQuotes {
			counts[r]++
		}
	}

	best := ','
	for _, d := range delimiters {
		if counts[d] > counts[best] {
			best = d
		}
	}

	return best
}
