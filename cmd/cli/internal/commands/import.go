package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/fx"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/normalize"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/preview"
	"github.com/MrJamesThe3rd/ledgerimport/internal/profile"
)

type importOptions struct {
	account           string
	dateFormat        string
	fxMode            string
	fxRate            string
	fxColumn          string
	invert            bool
	includeDuplicates bool
	dryRun            bool
	showRows          bool
	saveProfile       string
}

func newImportCommand(load Loader) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Preview and commit a statement file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd.Context())
			if err != nil {
				return err
			}

			return runImport(cmd, app, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.account, "account", "", "account name or number (defaults to the one named in the file)")
	cmd.Flags().StringVar(&opts.dateFormat, "date-format", "", "override the detected date format, e.g. DD/MM/YYYY")
	cmd.Flags().StringVar(&opts.fxMode, "fx", "skip", "foreign currency handling: skip, single-rate or rate-column")
	cmd.Flags().StringVar(&opts.fxRate, "fx-rate", "", "rate for --fx single-rate")
	cmd.Flags().StringVar(&opts.fxColumn, "fx-column", "", "column for --fx rate-column")
	cmd.Flags().BoolVar(&opts.invert, "invert", false, "flip the sign of every amount")
	cmd.Flags().BoolVar(&opts.includeDuplicates, "include-duplicates", false, "import rows that already exist in the ledger")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "preview only, do not commit")
	cmd.Flags().BoolVar(&opts.showRows, "rows", false, "print every preview row")
	cmd.Flags().StringVar(&opts.saveProfile, "save-profile", "", "save the mapping as a profile with this name")

	return cmd
}

func runImport(cmd *cobra.Command, app *App, path string, opts importOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	up, err := app.Importer.Upload(ctx, filepath.Base(path), f)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %d row(s), %s, %s\n", up.FileName, len(up.Result.Rows), up.Result.Format, up.Charset)

	if up.Profile != nil {
		fmt.Fprintf(out, "Using profile %q\n", up.Profile.Name)
	}

	req := importer.Request{
		Rows:       up.Result.Rows,
		Mapping:    up.Mapping,
		Format:     up.Format,
		Transforms: up.Transforms,
		AccountID:  up.AccountID,
	}

	req.Transforms.InvertSign = req.Transforms.InvertSign || opts.invert

	if opts.dateFormat != "" {
		if req.Format.DateFormat, err = mapping.ParseDateFormat(opts.dateFormat); err != nil {
			return err
		}
	}

	if req.FX, err = fx.Decode(opts.fxMode, opts.fxRate, opts.fxColumn); err != nil {
		return err
	}

	if opts.fxColumn != "" {
		req.Mapping = req.Mapping.Clone()
		if err := req.Mapping.Set(mapping.FieldFXRate, opts.fxColumn); err != nil {
			return err
		}
	}

	if opts.account != "" {
		accounts, err := app.Importer.Accounts(ctx)
		if err != nil {
			return err
		}

		a, ok := normalize.Account(opts.account, accounts)
		if !ok {
			return fmt.Errorf("unknown account %q", opts.account)
		}

		req.AccountID = &a.ID
	}

	p, err := app.Importer.Preview(ctx, req)
	if err != nil {
		return err
	}

	printCounts(out, p)

	if opts.showRows {
		fmt.Fprintln(out, rowsTable(p.Rows))
	}

	if opts.saveProfile != "" {
		saved, err := app.Profiles.Save(ctx, profile.SaveParams{
			Name:       opts.saveProfile,
			Headers:    up.Result.Headers,
			Mapping:    req.Mapping,
			Format:     req.Format,
			Transforms: req.Transforms,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Saved profile %q\n", saved.Name)
	}

	if opts.dryRun {
		return nil
	}

	commit := importer.CommitRequest{
		Request:           req,
		FileName:          up.FileName,
		FileFormat:        up.Result.Format,
		Charset:           up.Charset,
		HeaderFingerprint: up.HeaderFingerprint,
		IncludeDuplicates: opts.includeDuplicates,
	}

	if up.Profile != nil && !up.Profile.Builtin {
		commit.ProfileID = &up.Profile.ID
	}

	batch, err := app.Importer.Commit(ctx, commit)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, strings.Join(batch.Log, "\n"))

	return nil
}

func printCounts(out io.Writer, p *importer.Preview) {
	parts := make([]string, 0, len(preview.Statuses))
	for _, s := range preview.Statuses {
		parts = append(parts, fmt.Sprintf("%s %d", s, p.Counts[s]))
	}

	fmt.Fprintf(out, "%s, importable %d\n", strings.Join(parts, ", "), p.Importable)
}

func rowsTable(rows []preview.Row) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Status", "Date", "Amount", "Description", "Issues")

	for _, r := range rows {
		date := "-"
		if r.Date != nil {
			date = r.Date.Format("2006-01-02")
		}

		amount := "-"
		if r.NativeAmount.Valid {
			amount = importer.Display(r.NativeAmount.Decimal, r.NativeCurrency)
		}

		issues := append(append([]string{}, r.Errors...), r.Warnings...)

		t.Row(fmt.Sprint(r.Index+1), r.Status().String(), date, amount, r.Description, strings.Join(issues, "; "))
	}

	return t.String()
}
