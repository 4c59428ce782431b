// Package importer runs the statement import pipeline: upload, preview,
// commit and undo.
package importer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerimport/internal/encoding"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/fx"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/parser"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/preview"
	"github.com/MrJamesThe3rd/ledgerimport/internal/ledger"
	"github.com/MrJamesThe3rd/ledgerimport/internal/profile"
)

var ErrNothingToImport = errors.New("no importable rows")

// Ledger is the part of the ledger the pipeline writes to.
type Ledger interface {
	Material(ctx context.Context, accountIDs []uuid.UUID, from, to time.Time) ([]ledger.Material, error)
	CommitImport(ctx context.Context, batch *ledger.ImportBatch, params []ledger.CreateParams) (*ledger.ImportBatch, error)
	UndoLastImport(ctx context.Context) (*ledger.ImportBatch, error)
	LatestImport(ctx context.Context) (*ledger.ImportBatch, error)
}

type ProfileDetector interface {
	Detect(ctx context.Context, headers []string) (*profile.Profile, error)
}

type DescriptionRules interface {
	Describer(ctx context.Context) (func(string) string, error)
}

// Upload is a parsed file plus the mapping the wizard should start from.
type Upload struct {
	FileName          string
	Charset           encoding.Charset
	Result            *parser.Result
	HeaderFingerprint string

	// Profile is the detected profile, nil when none matched.
	Profile    *profile.Profile
	Mapping    mapping.ColumnMapping
	Format     mapping.FormatOptions
	Transforms mapping.Transforms

	// AccountID is preselected from the file's account number hint.
	AccountID *uuid.UUID
}

// Request is everything a preview or commit is computed from.
type Request struct {
	Rows       []parser.RawRow
	Mapping    mapping.ColumnMapping
	Format     mapping.FormatOptions
	Transforms mapping.Transforms
	FX         fx.Mode
	Overrides  preview.Overrides
	AccountID  *uuid.UUID
}

type Preview struct {
	Rows       []preview.Row
	Counts     map[preview.Status]int
	Importable int
}

// CommitRequest adds the batch metadata recorded with a commit.
type CommitRequest struct {
	Request

	FileName          string
	FileFormat        parser.Format
	Charset           encoding.Charset
	HeaderFingerprint string
	ProfileID         *uuid.UUID
	IncludeDuplicates bool
}
