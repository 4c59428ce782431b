// Package dedup fingerprints candidate rows and flags repeats.
package dedup

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NormalizeDescription drops punctuation and symbols, collapses whitespace
// and lower-cases.
func NormalizeDescription(s string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}

		return unicode.ToLower(r)
	}, s)

	return strings.Join(strings.Fields(stripped), " ")
}

// Fingerprint is account|YYYY-MM-DD|abs(amount) to 2dp|normalized description.
func Fingerprint(accountID uuid.UUID, date time.Time, amount decimal.Decimal, description string) string {
	return strings.Join([]string{
		accountID.String(),
		date.Format(time.DateOnly),
		amount.Abs().StringFixed(2),
		NormalizeDescription(description),
	}, "|")
}

// Detector flags fingerprints already in the ledger or seen earlier in the
// same batch. The first occurrence within a batch is never flagged.
type Detector struct {
	existing map[string]struct{}
	seen     map[string]struct{}
}

func NewDetector(existing map[string]struct{}) *Detector {
	if existing == nil {
		existing = map[string]struct{}{}
	}

	return &Detector{existing: existing, seen: make(map[string]struct{})}
}

// Check reports whether fp is a duplicate and records it as seen.
func (d *Detector) Check(fp string) bool {
	if _, ok := d.existing[fp]; ok {
		d.seen[fp] = struct{}{}
		return true
	}

	if _, ok := d.seen[fp]; ok {
		return true
	}

	d.seen[fp] = struct{}{}

	return false
}

// Material is what the ledger keeps per transaction for duplicate checks.
type Material struct {
	AccountID   uuid.UUID
	Date        time.Time
	Amount      decimal.Decimal
	Description string
}

// Set fingerprints existing ledger transactions.
func Set(materials []Material) map[string]struct{} {
	set := make(map[string]struct{}, len(materials))
	for _, m := range materials {
		set[Fingerprint(m.AccountID, m.Date, m.Amount, m.Description)] = struct{}{}
	}

	return set
}
