package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmptyBatch = errors.New("import batch has no transactions")
)

// Transaction is a ledger entry. Amount is in the account currency;
// NativeAmount and NativeCurrency keep the pre-conversion values.
type Transaction struct {
	ID             uuid.UUID
	AccountID      uuid.UUID
	Date           time.Time
	Amount         decimal.Decimal
	NativeAmount   decimal.Decimal
	NativeCurrency string
	FXRate         decimal.NullDecimal
	Description    string
	RawDescription string
	PayeeID        *uuid.UUID
	PayeeName      string
	CategoryID     *uuid.UUID
	SubCategoryID  *uuid.UUID
	Notes          string
	ExternalID     string
	Tags           []string
	ImportBatchID  *uuid.UUID
	CreatedAt      time.Time
}

// ImportBatch records one committed import. The most recent batch is the
// only undo target.
type ImportBatch struct {
	ID                uuid.UUID
	AccountID         *uuid.UUID
	ProfileID         *uuid.UUID
	CreatedAt         time.Time
	SourceFileName    string
	HeaderFingerprint string
	Options           BatchOptions
	Summary           BatchSummary
	TransactionIDs    []uuid.UUID
	Log               []string
}

// BatchOptions are the import settings a batch was committed with.
type BatchOptions struct {
	Format             string `json:"format"`
	Charset            string `json:"charset,omitempty"`
	DateFormat         string `json:"date_format"`
	DecimalSeparator   string `json:"decimal_separator"`
	ThousandsSeparator string `json:"thousands_separator"`
	SignConvention     string `json:"sign_convention"`
	FXMode             string `json:"fx_mode"`
	InvertSign         bool   `json:"invert_sign,omitempty"`
	IncludeDuplicates  bool   `json:"include_duplicates"`
}

// BatchSummary aggregates a batch. Totals are keyed by native currency.
type BatchSummary struct {
	Imported     int                       `json:"imported"`
	Duplicate    int                       `json:"duplicate"`
	Invalid      int                       `json:"invalid"`
	FXApplied    int                       `json:"fx_applied"`
	NeedsFx      int                       `json:"needs_fx"`
	EarliestDate *time.Time                `json:"earliest_date,omitempty"`
	LatestDate   *time.Time                `json:"latest_date,omitempty"`
	Totals       map[string]CurrencyTotals `json:"totals"`
}

type CurrencyTotals struct {
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
}

// Material is what duplicate detection needs from an existing transaction.
type Material struct {
	AccountID      uuid.UUID
	Date           time.Time
	Amount         decimal.Decimal
	RawDescription string
}

// NetByAccount sums transaction amounts per account.
func NetByAccount(txs []*Transaction) map[uuid.UUID]decimal.Decimal {
	net := make(map[uuid.UUID]decimal.Decimal)
	for _, tx := range txs {
		net[tx.AccountID] = net[tx.AccountID].Add(tx.Amount)
	}

	return net
}
