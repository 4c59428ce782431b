package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer"
	"github.com/MrJamesThe3rd/ledgerimport/internal/profile"
)

// App is what the commands run against.
type App struct {
	Importer *importer.Service
	Profiles *profile.Service
	Migrate  func(ctx context.Context) error
}

// Loader builds the App on first use, so --help works without a database.
type Loader func(ctx context.Context) (*App, error)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(load Loader) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ledgerimport",
		Short: "Import bank statements into the ledger",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newImportCommand(load),
		newUndoCommand(load),
		newLatestCommand(load),
		newMigrateCommand(load),
	)

	return rootCmd
}
