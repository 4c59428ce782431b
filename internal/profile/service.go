package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=profile
type Repository interface {
	// Save inserts the profile, or overwrites the one with the same ID.
	Save(ctx context.Context, p *Profile) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*Profile, error)
	FindByFingerprint(ctx context.Context, fingerprint string) (*Profile, error)
	List(ctx context.Context) ([]*Profile, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type SaveParams struct {
	// ID overwrites an existing profile when set.
	ID         *uuid.UUID
	Name       string
	Headers    []string
	Mapping    mapping.ColumnMapping
	Format     mapping.FormatOptions
	Transforms mapping.Transforms
}

func (s *Service) Save(ctx context.Context, params SaveParams) (*Profile, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}

	if len(params.Headers) == 0 {
		return nil, fmt.Errorf("%w: headers are required", ErrInvalid)
	}

	if err := params.Format.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	p := &Profile{
		Name:              name,
		HeaderFingerprint: mapping.HeaderFingerprint(params.Headers),
		Mapping:           params.Mapping.Clone(),
		Format:            params.Format,
		Transforms:        params.Transforms,
	}

	if params.ID != nil {
		p.ID = *params.ID
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}

	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Profile, error) {
	return s.repo.List(ctx)
}

// Detect returns the saved profile whose fingerprint exactly matches the
// headers, then a matching built-in layout, or nil when neither exists.
func (s *Service) Detect(ctx context.Context, headers []string) (*Profile, error) {
	if len(headers) == 0 {
		return nil, nil
	}

	p, err := s.repo.FindByFingerprint(ctx, mapping.HeaderFingerprint(headers))
	if errors.Is(err, ErrNotFound) {
		return Builtin(headers), nil
	}

	if err != nil {
		return nil, fmt.Errorf("detecting profile: %w", err)
	}

	return p, nil
}
