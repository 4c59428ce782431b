package wizard_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/fx"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/parser"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/preview"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/wizard"
	"github.com/MrJamesThe3rd/ledgerimport/internal/ledger"
)

func parsed() *parser.Result {
	return &parser.Result{
		Format:  parser.FormatCSV,
		Headers: []string{"Date", "Description", "Amount"},
		Rows:    []parser.RawRow{{"Date": "2024-01-01", "Description": "x", "Amount": "1"}},
		SuggestedMapping: mapping.ColumnMapping{
			mapping.FieldDate:        {"Date"},
			mapping.FieldDescription: {"Description"},
			mapping.FieldAmount:      {"Amount"},
		},
		SuggestedFormat: mapping.DefaultFormat(),
	}
}

func build(s wizard.State) []preview.Row {
	return make([]preview.Row, len(s.Source.Rows))
}

func TestMachine_HappyPath(t *testing.T) {
	m := wizard.New()
	assert.Equal(t, wizard.StepUpload, m.Step())

	require.NoError(t, m.Upload("a.csv", parsed()))
	assert.Equal(t, wizard.StepMapping, m.Step())
	assert.Equal(t, fx.Skip{}, m.State().FX)

	require.ErrorIs(t, m.Preview(build), mapping.ErrIncomplete)
	assert.Equal(t, wizard.StepMapping, m.Step())

	acct := uuid.New()
	m.SelectAccount(&acct)
	require.NoError(t, m.Preview(build))
	assert.Equal(t, wizard.StepPreview, m.Step())
	assert.Len(t, m.State().Rows, 1)

	require.NoError(t, m.Next())
	assert.Equal(t, wizard.StepConflicts, m.Step())
	require.NoError(t, m.Next())
	assert.Equal(t, wizard.StepImport, m.Step())
	require.ErrorIs(t, m.Next(), wizard.ErrStep)

	batch := &ledger.ImportBatch{ID: uuid.New()}
	require.NoError(t, m.Complete(batch))
	assert.Equal(t, wizard.StepSummary, m.Step())
	assert.Equal(t, batch, m.State().Batch)
}

func TestMachine_UploadGate(t *testing.T) {
	m := wizard.New()

	require.ErrorIs(t, m.Upload("a.csv", nil), wizard.ErrStep)
	require.ErrorIs(t, m.Upload("a.csv", &parser.Result{}), wizard.ErrStep)
	assert.Equal(t, wizard.StepUpload, m.Step())

	require.ErrorIs(t, m.Preview(build), wizard.ErrStep)
	require.ErrorIs(t, m.Next(), wizard.ErrStep)
	require.ErrorIs(t, m.Complete(nil), wizard.ErrStep)
}

func TestMachine_GoTo(t *testing.T) {
	m := wizard.New()
	require.NoError(t, m.Upload("a.csv", parsed()))

	acct := uuid.New()
	m.SelectAccount(&acct)
	require.NoError(t, m.Preview(build))
	require.NoError(t, m.Next())

	assert.False(t, m.GoTo(wizard.StepSummary))
	assert.Equal(t, wizard.StepConflicts, m.Step())

	assert.True(t, m.GoTo(wizard.StepConflicts))
	assert.True(t, m.GoTo(wizard.StepMapping))
	assert.Equal(t, wizard.StepMapping, m.Step())
	assert.Equal(t, wizard.StepConflicts, m.Reached())

	assert.False(t, m.GoTo(wizard.StepPreview))
}

func TestMachine_Restart(t *testing.T) {
	m := wizard.New()
	require.NoError(t, m.Upload("a.csv", parsed()))
	m.SetOverrides(preview.Overrides{0: {}})

	m.Restart()

	assert.Equal(t, wizard.StepUpload, m.Step())
	assert.Nil(t, m.State().Source)
	assert.Nil(t, m.State().Overrides)
	assert.Nil(t, m.State().Mapping)
	require.NoError(t, m.Upload("b.csv", parsed()))
}
