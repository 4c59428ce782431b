package view

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer"
)

const dbTimeout = 5 * time.Second

// FormatAmount renders an amount in its currency, or "-" when unset.
func FormatAmount(amount decimal.NullDecimal, currency string) string {
	if !amount.Valid {
		return "-"
	}

	return importer.Display(amount.Decimal, currency)
}

// FormatDate formats a date as YYYY-MM-DD, or "-" when unset.
func FormatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}

	return t.Format("2006-01-02")
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
