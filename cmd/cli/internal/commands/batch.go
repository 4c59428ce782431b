package commands

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer"
	"github.com/MrJamesThe3rd/ledgerimport/internal/ledger"
)

func newUndoCommand(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the most recent import",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}

			batch, err := app.Importer.Undo(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if batch == nil {
				fmt.Fprintln(out, "Nothing to undo.")
				return nil
			}

			fmt.Fprintf(out, "Reverted %d transaction(s) from %s\n", len(batch.TransactionIDs), batch.SourceFileName)

			return nil
		},
	}
}

func newLatestCommand(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Show the import that undo would revert",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}

			batch, err := app.Importer.LatestBatch(cmd.Context())
			if errors.Is(err, ledger.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "No imports yet.")
				return nil
			}

			if err != nil {
				return err
			}

			printBatch(cmd.OutOrStdout(), batch)

			return nil
		},
	}
}

func newMigrateCommand(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}

			if app.Migrate == nil {
				return errors.New("migrations are not available")
			}

			return app.Migrate(cmd.Context())
		},
	}
}

func printBatch(out io.Writer, b *ledger.ImportBatch) {
	fmt.Fprintf(out, "Batch %s\n", b.ID)
	fmt.Fprintf(out, "File: %s (%s)\n", b.SourceFileName, b.Options.Format)
	fmt.Fprintf(out, "Created: %s\n", b.CreatedAt.Format("2006-01-02 15:04:05"))

	s := b.Summary
	fmt.Fprintf(out, "Imported %d, duplicate %d, invalid %d, needs FX %d, converted %d\n",
		s.Imported, s.Duplicate, s.Invalid, s.NeedsFx, s.FXApplied)

	if s.EarliestDate != nil && s.LatestDate != nil {
		fmt.Fprintf(out, "Dates: %s to %s\n", s.EarliestDate.Format("2006-01-02"), s.LatestDate.Format("2006-01-02"))
	}

	for _, code := range slices.Sorted(maps.Keys(s.Totals)) {
		t := s.Totals[code]
		fmt.Fprintf(out, "%s: debits %s, credits %s\n", code, importer.Display(t.Debit, code), importer.Display(t.Credit, code))
	}

	if len(b.Log) > 0 {
		fmt.Fprintln(out, strings.Join(b.Log, "\n"))
	}
}
