package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/ledgerimport/cmd/cli/internal/commands"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer"
	"github.com/MrJamesThe3rd/ledgerimport/internal/ledger"
	"github.com/MrJamesThe3rd/ledgerimport/internal/ledger/memstore"
	"github.com/MrJamesThe3rd/ledgerimport/internal/matching"
	"github.com/MrJamesThe3rd/ledgerimport/internal/metrics"
	"github.com/MrJamesThe3rd/ledgerimport/internal/profile"
	"github.com/MrJamesThe3rd/ledgerimport/internal/reference"
)

type fixture struct {
	load     commands.Loader
	store    *memstore.Store
	profiles *profile.MockRepository
	checking uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{checking: uuid.New()}
	f.store = memstore.New(map[uuid.UUID]decimal.Decimal{f.checking: decimal.RequireFromString("100")})
	f.profiles = profile.NewMockRepository(ctrl)
	f.profiles.EXPECT().FindByFingerprint(gomock.Any(), gomock.Any()).Return(nil, profile.ErrNotFound).AnyTimes()

	rules := matching.NewMockRepository(ctrl)
	rules.EXPECT().ListRules(gomock.Any()).Return(nil, nil).AnyTimes()

	directory := reference.NewStatic(reference.Snapshot{
		Accounts: []reference.Account{{ID: f.checking, Name: "Checking", Number: "500001", Currency: "EUR"}},
	})

	profiles := profile.NewService(f.profiles)
	app := &commands.App{
		Importer: importer.NewService(
			ledger.NewService(f.store),
			directory,
			profiles,
			matching.NewService(rules),
			metrics.New(prometheus.NewRegistry()),
			importer.Options{},
		),
		Profiles: profiles,
	}

	f.load = func(context.Context) (*commands.App, error) { return app, nil }

	return f
}

func (f fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := commands.NewRootCommand(f.load)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func writeStatement(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "april.csv")
	text := "Date,Description,Payee,Amount\n" +
		"2024-04-02,Groceries,Market,-20.00\n" +
		"2024-04-03,Refund,Shop,5.50\n"

	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))

	return path
}

func TestImport_DryRun(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "import", writeStatement(t), "--account", "500001", "--dry-run", "--rows")
	require.NoError(t, err)

	assert.Contains(t, out, "april.csv: 2 row(s), csv")
	assert.Contains(t, out, "importable 2")
	assert.Contains(t, out, "Groceries")
	assert.Empty(t, f.store.Transactions())
}

func TestImport_CommitAndUndo(t *testing.T) {
	f := newFixture(t)
	path := writeStatement(t)

	out, err := f.run(t, "import", path, "--account", "Checking")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 transaction(s) from april.csv")
	assert.Equal(t, "85.5", f.store.Balance(f.checking).String())

	out, err = f.run(t, "import", path, "--account", "Checking")
	require.ErrorIs(t, err, importer.ErrNothingToImport)
	assert.Contains(t, out, "duplicate 2")

	out, err = f.run(t, "latest")
	require.NoError(t, err)
	assert.Contains(t, out, "File: april.csv (csv)")
	assert.Contains(t, out, "Imported 2, duplicate 0")

	out, err = f.run(t, "undo")
	require.NoError(t, err)
	assert.Contains(t, out, "Reverted 2 transaction(s) from april.csv")
	assert.Equal(t, "100", f.store.Balance(f.checking).String())

	out, err = f.run(t, "undo")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to undo.")

	out, err = f.run(t, "latest")
	require.NoError(t, err)
	assert.Contains(t, out, "No imports yet.")
}

func TestImport_Errors(t *testing.T) {
	type args struct {
		flags []string
	}

	type testCase struct {
		name    string
		args    args
		wantErr string
	}

	tests := []testCase{
		{
			name:    "UnknownAccount",
			args:    args{flags: []string{"--account", "Savings"}},
			wantErr: `unknown account "Savings"`,
		},
		{
			name:    "UnknownFXMode",
			args:    args{flags: []string{"--fx", "guess"}},
			wantErr: "unknown fx mode",
		},
		{
			name:    "BadDateFormat",
			args:    args{flags: []string{"--date-format", "YY"}},
			wantErr: "YY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.run(t, append([]string{"import", writeStatement(t)}, tt.args.flags...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMigrate_Unavailable(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "migrate")
	require.EqualError(t, err, "migrations are not available")
}
