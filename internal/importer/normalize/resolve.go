package normalize

import (
	"strings"

	"github.com/MrJamesThe3rd/ledgerimport/internal/reference"
)

// Currency returns the uppercased row currency, or the account currency when
// the row has none.
func Currency(value, accountCurrency string) string {
	if v := strings.ToUpper(strings.TrimSpace(value)); v != "" {
		return v
	}

	return strings.ToUpper(accountCurrency)
}

// Account matches value case-insensitively against account names and numbers.
func Account(value string, accounts []reference.Account) (reference.Account, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return reference.Account{}, false
	}

	for _, a := range accounts {
		if strings.EqualFold(a.Name, value) {
			return a, true
		}

		if a.Number != "" && strings.EqualFold(a.Number, value) {
			return a, true
		}
	}

	return reference.Account{}, false
}

// Join concatenates the non-empty values with sep.
func Join(values []string, sep string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}

	return strings.Join(parts, sep)
}
