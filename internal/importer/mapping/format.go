package mapping

import (
	"fmt"
	"strings"
)

// DateFormat is the field order of dates in the source file.
type DateFormat int

const (
	DateISO DateFormat = iota
	DateDMYSlash
	DateMDYSlash
	DateDMYDash
	DateDMYDot
)

var dateFormatNames = []string{
	DateISO:      "YYYY-MM-DD",
	DateDMYSlash: "DD/MM/YYYY",
	DateMDYSlash: "MM/DD/YYYY",
	DateDMYDash:  "DD-MM-YYYY",
	DateDMYDot:   "DD.MM.YYYY",
}

// DateFormats lists every supported date format.
var DateFormats = []DateFormat{DateISO, DateDMYSlash, DateMDYSlash, DateDMYDash, DateDMYDot}

func (d DateFormat) String() string {
	if int(d) >= 0 && int(d) < len(dateFormatNames) {
		return dateFormatNames[d]
	}

	return fmt.Sprintf("dateformat(%d)", int(d))
}

func ParseDateFormat(s string) (DateFormat, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range dateFormatNames {
		if name == s {
			return DateFormat(i), nil
		}
	}

	return 0, fmt.Errorf("unknown date format %q", s)
}

func (d DateFormat) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DateFormat) UnmarshalText(b []byte) error {
	parsed, err := ParseDateFormat(string(b))
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}

// SignConvention describes how the signed amount is laid out in the file.
type SignConvention int

const (
	// SignSingle is one signed amount column, positive meaning credit.
	SignSingle SignConvention = iota
	// SignDebitCredit is separate debit and credit columns.
	SignDebitCredit
)

func (s SignConvention) String() string {
	switch s {
	case SignSingle:
		return "single"
	case SignDebitCredit:
		return "debit_credit"
	}

	return fmt.Sprintf("sign(%d)", int(s))
}

func ParseSignConvention(s string) (SignConvention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "":
		return SignSingle, nil
	case "debit_credit":
		return SignDebitCredit, nil
	}

	return 0, fmt.Errorf("unknown sign convention %q", s)
}

func (s SignConvention) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SignConvention) UnmarshalText(b []byte) error {
	parsed, err := ParseSignConvention(string(b))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

// FormatOptions controls how dates and numbers in a source file are read.
type FormatOptions struct {
	DateFormat         DateFormat     `json:"date_format"`
	DecimalSeparator   string         `json:"decimal_separator"`
	ThousandsSeparator string         `json:"thousands_separator"`
	SignConvention     SignConvention `json:"sign_convention"`
}

func DefaultFormat() FormatOptions {
	return FormatOptions{
		DateFormat:         DateISO,
		DecimalSeparator:   ".",
		ThousandsSeparator: ",",
		SignConvention:     SignSingle,
	}
}

// Decimal returns the decimal separator, defaulting to ".".
func (o FormatOptions) Decimal() string {
	if o.DecimalSeparator == "" {
		return "."
	}

	return o.DecimalSeparator
}

func (o FormatOptions) Validate() error {
	if o.DecimalSeparator != "" && o.DecimalSeparator == o.ThousandsSeparator {
		return fmt.Errorf("decimal and thousands separators must differ, both are %q", o.DecimalSeparator)
	}

	if _, err := ParseDateFormat(o.DateFormat.String()); err != nil {
		return err
	}

	return nil
}
