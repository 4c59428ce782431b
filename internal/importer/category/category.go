// Package category resolves free-text category paths against the directory.
package category

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerimport/internal/reference"
)

const WarnNotRecognised = "Category path not recognised"

// Match is the outcome of resolving a path. A nil CategoryID means no match.
type Match struct {
	CategoryID    *uuid.UUID
	SubCategoryID *uuid.UUID
	Warning       string
}

// Resolve reads a "Master > Category > Sub" path (">" or "/" separated).
// The category is looked up by the second token's name, then by the first
// token as a master id, then by the first token's name. The sub-category
// is always the third token.
func Resolve(path string, categories []reference.Category) Match {
	tokens := Tokens(path)
	if len(tokens) == 0 {
		return Match{}
	}

	cat, sub, ok := lookup(tokens, categories)
	if !ok {
		return Match{Warning: WarnNotRecognised}
	}

	id := cat.ID
	m := Match{CategoryID: &id}

	if sub == "" {
		return m
	}

	for _, s := range cat.SubCategories {
		if strings.EqualFold(strings.TrimSpace(s.Name), sub) {
			subID := s.ID
			m.SubCategoryID = &subID

			return m
		}
	}

	m.Warning = fmt.Sprintf("Sub-category %q not found under %s", sub, cat.Name)

	return m
}

func lookup(tokens []string, categories []reference.Category) (reference.Category, string, bool) {
	if len(tokens) >= 2 {
		if c, ok := byName(tokens[1], categories); ok {
			return c, at(tokens, 2), true
		}
	}

	for _, c := range categories {
		if c.MasterID != "" && strings.EqualFold(c.MasterID, tokens[0]) {
			return c, at(tokens, 2), true
		}
	}

	if c, ok := byName(tokens[0], categories); ok {
		return c, at(tokens, 2), true
	}

	return reference.Category{}, "", false
}

func byName(name string, categories []reference.Category) (reference.Category, bool) {
	for _, c := range categories {
		if strings.EqualFold(strings.TrimSpace(c.Name), name) {
			return c, true
		}
	}

	return reference.Category{}, false
}

func at(tokens []string, i int) string {
	if i < len(tokens) {
		return tokens[i]
	}

	return ""
}

// Tokens splits a path into trimmed, lower-cased, non-empty segments.
func Tokens(path string) []string {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '>' || r == '/'
	})

	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			tokens = append(tokens, p)
		}
	}

	return tokens
}
