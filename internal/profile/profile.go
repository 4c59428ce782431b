// Package profile stores reusable column mappings keyed by header fingerprint.
package profile

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
)

var (
	ErrNotFound = errors.New("profile not found")
	ErrInvalid  = errors.New("invalid profile")
)

// Profile is a saved mapping and format configuration.
type Profile struct {
	ID                uuid.UUID             `json:"id"`
	Name              string                `json:"name"`
	HeaderFingerprint string                `json:"header_fingerprint"`
	Mapping           mapping.ColumnMapping `json:"mapping"`
	Format            mapping.FormatOptions `json:"format"`
	Transforms        mapping.Transforms    `json:"transforms"`

	// Builtin marks a known bank layout that was never saved.
	Builtin   bool      `json:"builtin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
