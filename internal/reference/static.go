package reference

import (
	"context"
	"slices"
)

// Static is an in-memory Directory.
type Static struct {
	snapshot Snapshot
}

func NewStatic(s Snapshot) *Static {
	return &Static{snapshot: s}
}

func (s *Static) Accounts(_ context.Context) ([]Account, error) {
	return slices.Clone(s.snapshot.Accounts), nil
}

func (s *Static) Payees(_ context.Context) ([]Payee, error) {
	return slices.Clone(s.snapshot.Payees), nil
}

func (s *Static) Categories(_ context.Context) ([]Category, error) {
	return slices.Clone(s.snapshot.Categories), nil
}
