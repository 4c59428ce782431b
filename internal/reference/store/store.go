package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerimport/internal/reference"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Accounts(ctx context.Context) ([]reference.Account, error) {
	query := `
		SELECT id, name, COALESCE(number, ''), currency
		FROM accounts
		WHERE active
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []reference.Account

	for rows.Next() {
		var a reference.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Number, &a.Currency); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}

	return accounts, nil
}

func (s *Store) Payees(ctx context.Context) ([]reference.Payee, error) {
	query := `
		SELECT id, name, default_category_id, default_sub_category_id
		FROM payees
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing payees: %w", err)
	}
	defer rows.Close()

	var payees []reference.Payee

	for rows.Next() {
		var p reference.Payee
		if err := rows.Scan(&p.ID, &p.Name, &p.DefaultCategoryID, &p.DefaultSubCategoryID); err != nil {
			return nil, fmt.Errorf("scanning payee: %w", err)
		}

		payees = append(payees, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payees: %w", err)
	}

	return payees, nil
}

// Categories returns categories in directory order with their sub-categories.
func (s *Store) Categories(ctx context.Context) ([]reference.Category, error) {
	query := `
		SELECT c.id, c.name, c.master_id, sc.id, sc.name
		FROM categories c
		LEFT JOIN sub_categories sc ON sc.category_id = c.id
		ORDER BY c.position ASC, c.name ASC, sc.name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []reference.Category

	index := make(map[uuid.UUID]int)

	for rows.Next() {
		var (
			c       reference.Category
			subID   *uuid.UUID
			subName sql.NullString
		)

		if err := rows.Scan(&c.ID, &c.Name, &c.MasterID, &subID, &subName); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		i, seen := index[c.ID]
		if !seen {
			i = len(categories)
			index[c.ID] = i
			categories = append(categories, c)
		}

		if subID != nil {
			categories[i].SubCategories = append(categories[i].SubCategories, reference.SubCategory{
				ID:   *subID,
				Name: subName.String,
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}

	return categories, nil
}
