package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
)

var (
	ErrMissingHeader     = errors.New("missing header row")
	ErrNoTransactions    = errors.New("no transactions found")
	ErrUnterminatedQuote = errors.New("unterminated quoted field")
	ErrUnknownFormat     = errors.New("unknown file format")
)

// FormatError is a whole-file parse failure.
type FormatError struct {
	Format Format
	Line   int
	Err    error
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %v", e.Format, e.Line, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Format, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// RawRow maps a source column name to its trimmed value.
type RawRow map[string]string

// Get returns the trimmed value of column, or "" when absent.
func (r RawRow) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// AccountHints is account information found in the file itself.
type AccountHints struct {
	Number   string
	BankID   string
	Currency string
	Names    []string
}

// Result is the output of a format parser.
type Result struct {
	Format           Format
	Headers          []string
	Rows             []RawRow
	ProviderHint     string
	AccountHints     AccountHints
	SuggestedMapping mapping.ColumnMapping
	SuggestedFormat  mapping.FormatOptions
}

// Parser extracts rows from decoded file text.
type Parser interface {
	Parse(text string) (*Result, error)
}

var parsers = map[Format]Parser{
	FormatCSV:   csvParser{},
	FormatOFX:   ofxParser{},
	FormatQIF:   qifParser{},
	FormatMT940: mt940Parser{},
}

// Parse runs the parser registered for format.
func Parse(format Format, text string) (*Result, error) {
	p, ok := parsers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	res, err := p.Parse(text)
	if err != nil {
		return nil, err
	}

	res.Format = format

	return res, nil
}

// splitLines splits text on any line ending and drops a trailing empty line.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	return lines
}
