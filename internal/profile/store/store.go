package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerimport/internal/profile"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectColumns = `id, name, header_fingerprint, mapping, format, transforms, created_at, updated_at`

func scanProfile(s scanner) (*profile.Profile, error) {
	var (
		p                              profile.Profile
		rawMapping, rawFormat, rawXfrm []byte
	)

	if err := s.Scan(&p.ID, &p.Name, &p.HeaderFingerprint, &rawMapping, &rawFormat, &rawXfrm, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(rawMapping, &p.Mapping); err != nil {
		return nil, fmt.Errorf("decoding mapping: %w", err)
	}

	if err := json.Unmarshal(rawFormat, &p.Format); err != nil {
		return nil, fmt.Errorf("decoding format: %w", err)
	}

	if err := json.Unmarshal(rawXfrm, &p.Transforms); err != nil {
		return nil, fmt.Errorf("decoding transforms: %w", err)
	}

	return &p, nil
}

func (s *Store) Save(ctx context.Context, p *profile.Profile) error {
	rawMapping, err := json.Marshal(p.Mapping)
	if err != nil {
		return fmt.Errorf("encoding mapping: %w", err)
	}

	rawFormat, err := json.Marshal(p.Format)
	if err != nil {
		return fmt.Errorf("encoding format: %w", err)
	}

	rawXfrm, err := json.Marshal(p.Transforms)
	if err != nil {
		return fmt.Errorf("encoding transforms: %w", err)
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	query := `
		INSERT INTO import_profiles (id, name, header_fingerprint, mapping, format, transforms, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			header_fingerprint = EXCLUDED.header_fingerprint,
			mapping = EXCLUDED.mapping,
			format = EXCLUDED.format,
			transforms = EXCLUDED.transforms,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		p.ID,
		p.Name,
		p.HeaderFingerprint,
		rawMapping,
		rawFormat,
		rawXfrm,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM import_profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return profile.ErrNotFound
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	query := `SELECT ` + selectColumns + ` FROM import_profiles WHERE id = $1`

	p, err := scanProfile(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, profile.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}

	return p, nil
}

// FindByFingerprint returns the most recently updated profile for the fingerprint.
func (s *Store) FindByFingerprint(ctx context.Context, fingerprint string) (*profile.Profile, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM import_profiles
		WHERE header_fingerprint = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`

	p, err := scanProfile(s.db.QueryRowContext(ctx, query, fingerprint))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, profile.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("finding profile: %w", err)
	}

	return p, nil
}

func (s *Store) List(ctx context.Context) ([]*profile.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM import_profiles ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	var out []*profile.Profile

	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}

		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profiles: %w", err)
	}

	return out, nil
}
