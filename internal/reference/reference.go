package reference

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Account is an active ledger account the importer may post to.
type Account struct {
	ID       uuid.UUID
	Name     string
	Number   string
	Currency string
}

// Payee carries an optional default category used when an imported row has none.
type Payee struct {
	ID                   uuid.UUID
	Name                 string
	DefaultCategoryID    *uuid.UUID
	DefaultSubCategoryID *uuid.UUID
}

type Category struct {
	ID            uuid.UUID
	Name          string
	MasterID      string
	SubCategories []SubCategory
}

type SubCategory struct {
	ID   uuid.UUID
	Name string
}

// Directory is the read-only source of reference data.
type Directory interface {
	Accounts(ctx context.Context) ([]Account, error)
	Payees(ctx context.Context) ([]Payee, error)
	Categories(ctx context.Context) ([]Category, error)
}

// Snapshot is a point-in-time copy of the directory used for one preview.
type Snapshot struct {
	Accounts   []Account
	Payees     []Payee
	Categories []Category
}

func Load(ctx context.Context, d Directory) (Snapshot, error) {
	accounts, err := d.Accounts(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading accounts: %w", err)
	}

	payees, err := d.Payees(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading payees: %w", err)
	}

	categories, err := d.Categories(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading categories: %w", err)
	}

	return Snapshot{Accounts: accounts, Payees: payees, Categories: categories}, nil
}

func (s Snapshot) Account(id uuid.UUID) (Account, bool) {
	for _, a := range s.Accounts {
		if a.ID == id {
			return a, true
		}
	}

	return Account{}, false
}

// AccountByNumber finds an account whose number equals or ends with number.
// Statement files often prefix the account number with a bank code.
func (s Snapshot) AccountByNumber(number string) (Account, bool) {
	number = strings.TrimSpace(number)
	if number == "" {
		return Account{}, false
	}

	for _, a := range s.Accounts {
		if a.Number == "" {
			continue
		}

		if strings.EqualFold(a.Number, number) || strings.HasSuffix(number, a.Number) {
			return a, true
		}
	}

	return Account{}, false
}

func (s Snapshot) Payee(id uuid.UUID) (Payee, bool) {
	for _, p := range s.Payees {
		if p.ID == id {
			return p, true
		}
	}

	return Payee{}, false
}

func (s Snapshot) PayeeByName(name string) (Payee, bool) {
	name = strings.TrimSpace(name)
	for _, p := range s.Payees {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}

	return Payee{}, false
}
