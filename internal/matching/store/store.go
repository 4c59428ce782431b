package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerimport/internal/matching"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindMatch(ctx context.Context, rawDescription string) (string, error) {
	query := `
		SELECT preferred_description
		FROM description_mappings
		WHERE $1 ILIKE '%' || raw_pattern || '%'
		ORDER BY LENGTH(raw_pattern) DESC, created_at DESC
		LIMIT 1
	`

	var preferred string

	err := s.db.QueryRowContext(ctx, query, rawDescription).Scan(&preferred)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding match: %w", err)
	}

	return preferred, nil
}

func (s *Store) CreateMapping(ctx context.Context, rawPattern, preferredDescription string) (*matching.Rule, error) {
	query := `
		INSERT INTO description_mappings (raw_pattern, preferred_description, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at
	`

	r := matching.Rule{RawPattern: rawPattern, PreferredDescription: preferredDescription}

	if err := s.db.QueryRowContext(ctx, query, rawPattern, preferredDescription).Scan(&r.ID, &r.CreatedAt); err != nil {
		return nil, fmt.Errorf("creating mapping: %w", err)
	}

	return &r, nil
}

func (s *Store) ListRules(ctx context.Context) ([]matching.Rule, error) {
	query := `
		SELECT id, raw_pattern, preferred_description, created_at
		FROM description_mappings
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing mappings: %w", err)
	}
	defer rows.Close()

	var rules []matching.Rule

	for rows.Next() {
		var r matching.Rule
		if err := rows.Scan(&r.ID, &r.RawPattern, &r.PreferredDescription, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}

		rules = append(rules, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mappings: %w", err)
	}

	return rules, nil
}

func (s *Store) DeleteMapping(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM description_mappings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting mapping: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return matching.ErrNotFound
	}

	return nil
}
