package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("rule not found")
	ErrInvalid  = errors.New("invalid rule")
)

// Rule rewrites any raw description containing RawPattern to PreferredDescription.
type Rule struct {
	ID                   uuid.UUID `json:"id"`
	RawPattern           string    `json:"raw_pattern"`
	PreferredDescription string    `json:"preferred_description"`
	CreatedAt            time.Time `json:"created_at"`
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	FindMatch(ctx context.Context, rawDescription string) (string, error)
	CreateMapping(ctx context.Context, rawPattern, preferredDescription string) (*Rule, error)
	ListRules(ctx context.Context) ([]Rule, error)
	DeleteMapping(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest tries to find a preferred description for the given raw description.
// Returns empty string if no match found.
func (s *Service) Suggest(ctx context.Context, rawDescription string) (string, error) {
	return s.repo.FindMatch(ctx, rawDescription)
}

// Learn remembers a new mapping between a raw pattern and a preferred description.
func (s *Service) Learn(ctx context.Context, rawPattern, preferredDescription string) (*Rule, error) {
	rawPattern = strings.TrimSpace(rawPattern)
	preferredDescription = strings.TrimSpace(preferredDescription)

	if rawPattern == "" || preferredDescription == "" {
		return nil, fmt.Errorf("%w: pattern and description are required", ErrInvalid)
	}

	return s.repo.CreateMapping(ctx, rawPattern, preferredDescription)
}

func (s *Service) Rules(ctx context.Context) ([]Rule, error) {
	return s.repo.ListRules(ctx)
}

func (s *Service) Forget(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteMapping(ctx, id)
}

// Describer loads every rule once and returns a matcher over them, so a
// whole preview resolves descriptions without a query per row.
func (s *Service) Describer(ctx context.Context) (func(string) string, error) {
	rules, err := s.repo.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}

	return func(raw string) string { return Describe(rules, raw) }, nil
}

// Describe returns the preferred description of the rule whose pattern occurs
// in raw, ignoring case. The longest pattern wins, then the newest rule.
func Describe(rules []Rule, raw string) string {
	lower := strings.ToLower(raw)

	var best *Rule

	for i := range rules {
		r := &rules[i]
		if r.RawPattern == "" || !strings.Contains(lower, strings.ToLower(r.RawPattern)) {
			continue
		}

		if best == nil || len(r.RawPattern) > len(best.RawPattern) ||
			(len(r.RawPattern) == len(best.RawPattern) && r.CreatedAt.After(best.CreatedAt)) {
			best = r
		}
	}

	if best == nil {
		return ""
	}

	return best.PreferredDescription
}
