// Package wizard sequences the import steps and gates forward moves.
package wizard

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/fx"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/parser"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/preview"
	"github.com/MrJamesThe3rd/ledgerimport/internal/ledger"
)

// Step is a wizard screen, in order.
type Step int

const (
	StepUpload Step = iota
	StepMapping
	StepPreview
	StepConflicts
	StepImport
	StepSummary
)

var Steps = []Step{StepUpload, StepMapping, StepPreview, StepConflicts, StepImport, StepSummary}

func (s Step) String() string {
	switch s {
	case StepUpload:
		return "upload"
	case StepMapping:
		return "mapping"
	case StepPreview:
		return "preview"
	case StepConflicts:
		return "conflicts"
	case StepImport:
		return "import"
	case StepSummary:
		return "summary"
	}

	return fmt.Sprintf("Step(%d)", int(s))
}

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var ErrStep = errors.New("step not allowed")

// State is everything the wizard has accumulated.
type State struct {
	FileName   string
	Source     *parser.Result
	Mapping    mapping.ColumnMapping
	Format     mapping.FormatOptions
	Transforms mapping.Transforms
	FX         fx.Mode
	AccountID  *uuid.UUID
	Overrides  preview.Overrides
	Rows       []preview.Row
	Batch      *ledger.ImportBatch
}

// Machine holds the current step and state. It is not safe for concurrent use.
type Machine struct {
	step    Step
	reached Step
	state   State
}

func New() *Machine {
	return &Machine{}
}

func (m *Machine) Step() Step { return m.step }

// State returns the accumulated state. Slices and maps are shared.
func (m *Machine) State() State { return m.state }

// Upload accepts a parsed file and moves to mapping, seeding the mapping and
// format from the parser's suggestion.
func (m *Machine) Upload(fileName string, res *parser.Result) error {
	if m.step != StepUpload {
		return fmt.Errorf("%w: upload from %s", ErrStep, m.step)
	}

	if res == nil || len(res.Rows) == 0 {
		return fmt.Errorf("%w: no parsed rows", ErrStep)
	}

	m.state = State{
		FileName: fileName,
		Source:   res,
		Mapping:  res.SuggestedMapping.Clone(),
		Format:   res.SuggestedFormat,
		FX:       fx.Skip{},
	}

	if m.state.Mapping == nil {
		m.state.Mapping = mapping.ColumnMapping{}
	}

	m.advance(StepMapping)

	return nil
}

// Configure replaces the mapping-step settings. Existing overrides are kept.
func (m *Machine) Configure(cm mapping.ColumnMapping, format mapping.FormatOptions, transforms mapping.Transforms, mode fx.Mode) {
	m.state.Mapping = cm
	m.state.Format = format
	m.state.Transforms = transforms

	if mode == nil {
		mode = fx.Skip{}
	}

	m.state.FX = mode
}

func (m *Machine) SelectAccount(id *uuid.UUID) {
	m.state.AccountID = id
}

func (m *Machine) SetOverrides(o preview.Overrides) {
	m.state.Overrides = o
}

// Ready reports whether the mapping is complete enough to preview.
func (m *Machine) Ready() error {
	if m.state.Source == nil {
		return fmt.Errorf("%w: no file uploaded", ErrStep)
	}

	return m.state.Mapping.Complete(m.state.Format.SignConvention, m.state.AccountID != nil)
}

// Preview builds rows and moves from mapping to preview. From a later step
// it only rebuilds the rows.
func (m *Machine) Preview(build func(State) []preview.Row) error {
	if m.step < StepMapping {
		return fmt.Errorf("%w: preview from %s", ErrStep, m.step)
	}

	if err := m.Ready(); err != nil {
		return err
	}

	m.state.Rows = build(m.state)

	if m.step == StepMapping {
		m.advance(StepPreview)
	}

	return nil
}

// Next takes the unconditional forward steps preview→conflicts→import.
func (m *Machine) Next() error {
	switch m.step {
	case StepPreview:
		m.advance(StepConflicts)
	case StepConflicts:
		m.advance(StepImport)
	default:
		return fmt.Errorf("%w: next from %s", ErrStep, m.step)
	}

	return nil
}

// Complete records the commit outcome and moves from import to summary.
func (m *Machine) Complete(batch *ledger.ImportBatch) error {
	if m.step != StepImport {
		return fmt.Errorf("%w: complete from %s", ErrStep, m.step)
	}

	m.state.Batch = batch
	m.advance(StepSummary)

	return nil
}

// GoTo jumps back to a step at or before the current one. Future steps are
// a no-op and report false.
func (m *Machine) GoTo(s Step) bool {
	if s < StepUpload || s > m.step {
		return false
	}

	m.step = s

	return true
}

// Reached is the furthest step visited since the last restart.
func (m *Machine) Reached() Step { return m.reached }

// Restart clears all state back to upload.
func (m *Machine) Restart() {
	*m = Machine{}
}

func (m *Machine) advance(s Step) {
	m.step = s
	if s > m.reached {
		m.reached = s
	}
}
