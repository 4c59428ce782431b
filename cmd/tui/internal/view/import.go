package view

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/preview"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/wizard"
	"github.com/MrJamesThe3rd/ledgerimport/internal/ledger"
	"github.com/MrJamesThe3rd/ledgerimport/internal/profile"
	"github.com/MrJamesThe3rd/ledgerimport/internal/reference"
)

const importTimeout = 2 * time.Minute

type ImportModel struct {
	CommonModel
	importService  *importer.Service
	profileService *profile.Service
	separator      string

	machine    *wizard.Machine
	filePicker filepicker.Model
	spinner    spinner.Model
	table      table.Model

	accounts []reference.Account
	upload   *importer.Upload
	fields   *mappingFields
	form     *huh.Form

	counts            map[preview.Status]int
	importable        int
	includeDuplicates bool

	// profileName is bound to the save-profile form on the summary screen.
	profileName *string
	saving      bool

	busy   bool
	status string
	err    error
}

func NewImportModel(impSvc *importer.Service, profileSvc *profile.Service, separator string) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt", ".ofx", ".qfx", ".qif", ".sta", ".940"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ImportModel{
		importService:  impSvc,
		profileService: profileSvc,
		separator:      separator,
		machine:        wizard.New(),
		filePicker:     fp,
		spinner:        s,
		table: newTable([]table.Column{
			{Title: "#", Width: 4},
			{Title: "Status", Width: 10},
			{Title: "Date", Width: 12},
			{Title: "Amount", Width: 14},
			{Title: "Description", Width: 36},
			{Title: "Issues", Width: 40},
		}, 15),
		profileName: new(string),
	}
}

func (m ImportModel) Title() string { return "Import Statement" }

func (m ImportModel) ShortHelp() string {
	switch m.machine.Step() {
	case wizard.StepUpload:
		return "Enter: select file | u: undo last import | Esc: back"
	case wizard.StepMapping:
		return "Enter: next | Esc: choose another file"
	case wizard.StepPreview:
		return "Enter: continue | p: fill payee down | g: fill category down | m/Esc: edit mapping"
	case wizard.StepConflicts:
		return "i: include duplicates | Enter: import | Esc: back to preview"
	case wizard.StepImport:
		return "Enter: retry import | Esc: back to conflicts"
	case wizard.StepSummary:
		return "s: save profile | u: undo | Enter: new import | Esc: back"
	}

	return ""
}

func (m ImportModel) Init() tea.Cmd {
	return tea.Batch(m.filePicker.Init(), m.loadAccountsCmd())
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case accountsMsg:
		if msg.err != nil {
			m.err = msg.err
		}

		m.accounts = msg.accounts

		return m, nil

	case uploadMsg:
		return m.handleUpload(msg)

	case previewMsg:
		return m.handlePreview(msg)

	case commitMsg:
		return m.handleCommit(msg)

	case undoMsg:
		m.busy = false
		m.err = msg.err

		switch {
		case msg.err != nil:
			m.status = ""
		case msg.batch == nil:
			m.status = "Nothing to undo."
		default:
			m.status = fmt.Sprintf("Undid %d transaction(s) from %s.", len(msg.batch.TransactionIDs), msg.batch.SourceFileName)
		}

		if m.machine.Step() == wizard.StepSummary {
			m.machine.Restart()
			return m, m.filePicker.Init()
		}

		return m, nil

	case profileSavedMsg:
		m.err = msg.err

		if msg.err == nil {
			m.status = fmt.Sprintf("Saved profile %q.", msg.profile.Name)
		}

		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	if m.busy {
		return m, nil
	}

	switch m.machine.Step() {
	case wizard.StepUpload:
		return m.updateUpload(msg)
	case wizard.StepMapping:
		return m.updateMapping(msg)
	case wizard.StepPreview:
		return m.updatePreview(msg)
	case wizard.StepConflicts:
		return m.updateConflicts(msg)
	case wizard.StepImport:
		return m.updateImport(msg)
	case wizard.StepSummary:
		return m.updateSummary(msg)
	}

	return m, nil
}

func (m ImportModel) updateUpload(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "u":
			return m.startBusy("Undoing last import...", m.undoCmd())
		}
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		return m.startBusy(fmt.Sprintf("Reading %s...", filepath.Base(path)), m.uploadCmd(path))
	}

	return m, cmd
}

func (m ImportModel) handleUpload(msg uploadMsg) (tea.Model, tea.Cmd) {
	m.busy = false

	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}

	if err := m.machine.Upload(msg.upload.FileName, msg.upload.Result); err != nil {
		m.err = err
		return m, nil
	}

	m.upload = msg.upload
	m.machine.Configure(msg.upload.Mapping, msg.upload.Format, msg.upload.Transforms, nil)
	m.machine.SelectAccount(msg.upload.AccountID)
	m.err = nil
	m.status = fmt.Sprintf("%s: %d row(s), %s, %s", msg.upload.FileName, len(msg.upload.Result.Rows),
		msg.upload.Result.Format, msg.upload.Charset)

	if msg.upload.Profile != nil {
		m.status += fmt.Sprintf(", profile %q", msg.upload.Profile.Name)
	}

	return m.openMappingForm()
}

func (m ImportModel) openMappingForm() (tea.Model, tea.Cmd) {
	st := m.machine.State()
	m.fields = newMappingFields(st)
	m.form = buildMappingForm(m.fields, st.Source.Headers, m.accounts)

	return m, m.form.Init()
}

func (m ImportModel) updateMapping(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.machine.Restart()
		m.upload = nil
		m.status = ""

		return m, m.filePicker.Init()
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	st := m.machine.State()

	s, err := m.fields.settings(st.Mapping, m.separator)
	if err == nil {
		m.machine.Configure(s.mapping, s.format, s.transforms, s.fx)
		m.machine.SelectAccount(s.accountID)
		err = m.machine.Ready()
	}

	if err != nil {
		m.err = err
		return m.openMappingForm()
	}

	m.err = nil

	return m.startBusy("Building preview...", m.previewCmd(m.machine.State()))
}

func (m ImportModel) handlePreview(msg previewMsg) (tea.Model, tea.Cmd) {
	m.busy = false

	err := msg.err
	if err == nil {
		err = m.machine.Preview(func(wizard.State) []preview.Row { return msg.preview.Rows })
	}

	if err != nil {
		m.err = err
		m.machine.GoTo(wizard.StepMapping)

		return m.openMappingForm()
	}

	m.err = nil
	m.counts = msg.preview.Counts
	m.importable = msg.preview.Importable
	cursor := m.table.Cursor()
	m.refreshTable(msg.preview.Rows)
	m.table.SetCursor(min(cursor, max(len(msg.preview.Rows)-1, 0)))
	m.table.Focus()

	return m, nil
}

func (m ImportModel) updatePreview(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc", "m":
			m.machine.GoTo(wizard.StepMapping)
			return m.openMappingForm()
		case "enter":
			if err := m.machine.Next(); err != nil {
				m.err = err
			}

			return m, nil
		case "p":
			return m.fillDown(preview.FillPayee)
		case "g":
			return m.fillDown(preview.FillCategory)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

// fillDown copies the selected row's payee or category onto the rows below
// it and rebuilds the preview.
func (m ImportModel) fillDown(field preview.FillField) (tea.Model, tea.Cmd) {
	st := m.machine.State()

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(st.Rows) {
		return m, nil
	}

	m.machine.SetOverrides(preview.FillDown(st.Rows, st.Overrides, st.Rows[idx].Index, field))

	return m.startBusy("Rebuilding preview...", m.previewCmd(m.machine.State()))
}

func (m ImportModel) updateConflicts(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		m.machine.GoTo(wizard.StepPreview)
	case "i":
		m.includeDuplicates = !m.includeDuplicates
	case "enter":
		if err := m.machine.Next(); err != nil {
			m.err = err
			return m, nil
		}

		return m.startBusy("Importing...", m.commitCmd(m.machine.State(), m.includeDuplicates))
	}

	return m, nil
}

// updateImport handles the import step after a failed commit.
func (m ImportModel) updateImport(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		m.err = nil
		m.machine.GoTo(wizard.StepConflicts)
	case "enter":
		return m.startBusy("Importing...", m.commitCmd(m.machine.State(), m.includeDuplicates))
	}

	return m, nil
}

// handleCommit moves to the summary on success. A failed commit persists
// nothing, so the wizard stays on the import step with the error shown.
func (m ImportModel) handleCommit(msg commitMsg) (tea.Model, tea.Cmd) {
	m.busy = false

	if msg.err != nil {
		m.err = msg.err
		m.status = ""

		return m, nil
	}

	if err := m.machine.Complete(msg.batch); err != nil {
		m.err = err
		return m, nil
	}

	m.err = nil
	m.status = ""

	return m, nil
}

func (m ImportModel) updateSummary(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.saving {
		return m.updateProfileForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		m.machine.Restart()
		return m, Back
	case "enter":
		m.machine.Restart()
		m.status = ""

		return m, m.filePicker.Init()
	case "u":
		return m.startBusy("Undoing import...", m.undoCmd())
	case "s":
		*m.profileName = ""
		if m.upload != nil && m.upload.Profile != nil && !m.upload.Profile.Builtin {
			*m.profileName = m.upload.Profile.Name
		}

		m.saving = true
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Profile name").
					Value(m.profileName).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return errors.New("name cannot be empty")
						}
						return nil
					}),
			),
		).WithWidth(45).WithShowHelp(false)

		return m, m.form.Init()
	}

	return m, nil
}

func (m ImportModel) updateProfileForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.saving = false
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.saving = false

	return m, m.saveProfileCmd(m.machine.State(), *m.profileName)
}

func (m ImportModel) startBusy(status string, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.busy = true
	m.err = nil
	m.status = status

	return m, tea.Batch(m.spinner.Tick, cmd)
}

func (m *ImportModel) refreshTable(rows []preview.Row) {
	out := make([]table.Row, 0, len(rows))

	for _, r := range rows {
		issues := append(append([]string{}, r.Errors...), r.Warnings...)

		out = append(out, table.Row{
			fmt.Sprint(r.Index + 1),
			r.Status().String(),
			FormatDate(r.Date),
			FormatAmount(r.NativeAmount, r.NativeCurrency),
			r.Description,
			strings.Join(issues, "; "),
		})
	}

	m.table.SetRows(out)
}

func (m ImportModel) View() string {
	var body string

	switch {
	case m.busy:
		body = fmt.Sprintf("%s %s", m.spinner.View(), m.status)
	case m.machine.Step() == wizard.StepUpload:
		body = "Select a statement file (CSV, OFX, QIF, MT940):\n\n" + m.filePicker.View()
		if m.status != "" {
			body = faintStyle.Render(m.status) + "\n\n" + body
		}
	case m.machine.Step() == wizard.StepMapping:
		body = faintStyle.Render(m.status) + "\n\n" + m.form.View()
	case m.machine.Step() == wizard.StepPreview:
		body = lipgloss.JoinVertical(lipgloss.Left, m.viewCounts(), "", boxed(m.table.View()))
	case m.machine.Step() == wizard.StepConflicts:
		body = m.viewConflicts()
	case m.machine.Step() == wizard.StepImport:
		body = faintStyle.Render("The import was not saved. Press Enter to retry.")
	case m.machine.Step() == wizard.StepSummary:
		body = m.viewSummary()
	}

	if m.err != nil {
		body = errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + body
	}

	return lipgloss.NewStyle().Padding(1).Render(m.viewSteps() + "\n\n" + body)
}

func (m ImportModel) viewSteps() string {
	parts := make([]string, len(wizard.Steps))

	for i, s := range wizard.Steps {
		switch {
		case s == m.machine.Step():
			parts[i] = activeStyle("[" + s.String() + "]")
		case s <= m.machine.Reached():
			parts[i] = s.String()
		default:
			parts[i] = faintStyle.Render(s.String())
		}
	}

	return strings.Join(parts, " > ")
}

func (m ImportModel) viewCounts() string {
	parts := make([]string, 0, len(preview.Statuses))
	for _, s := range preview.Statuses {
		parts = append(parts, fmt.Sprintf("%s: %s", s, activeStyle(fmt.Sprint(m.counts[s]))))
	}

	return strings.Join(parts, " | ") + fmt.Sprintf("  (importable: %d)", m.importable)
}

func (m ImportModel) viewConflicts() string {
	var b strings.Builder

	dupes := 0

	for _, r := range m.machine.State().Rows {
		if r.Status() != preview.StatusDuplicate {
			continue
		}

		dupes++
		fmt.Fprintf(&b, "  %s  %s  %s\n", FormatDate(r.Date), FormatAmount(r.Amount, r.AccountCurrency), r.Description)
	}

	if dupes == 0 {
		return "No duplicates found.\n\nPress Enter to import."
	}

	choice := "skip them"
	if m.includeDuplicates {
		choice = "import them anyway"
	}

	return fmt.Sprintf("%d row(s) already exist in the ledger:\n\n%s\nDuplicates will %s. [i] to toggle, Enter to import.",
		dupes, b.String(), activeStyle(choice))
}

func (m ImportModel) viewSummary() string {
	batch := m.machine.State().Batch
	if batch == nil {
		return ""
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46")).Render("Import Complete!")
	lines := []string{header, ""}
	lines = append(lines, batch.Log...)

	if m.saving {
		lines = append(lines, "", m.form.View())
	} else if m.status != "" {
		lines = append(lines, "", successStyle.Render(m.status))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Messages

type accountsMsg struct {
	accounts []reference.Account
	err      error
}

type uploadMsg struct {
	upload *importer.Upload
	err    error
}

type previewMsg struct {
	preview *importer.Preview
	err     error
}

type commitMsg struct {
	batch *ledger.ImportBatch
	err   error
}

type undoMsg struct {
	batch *ledger.ImportBatch
	err   error
}

type profileSavedMsg struct {
	profile *profile.Profile
	err     error
}

func (m ImportModel) loadAccountsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accounts, err := m.importService.Accounts(ctx)

		return accountsMsg{accounts: accounts, err: err}
	}
}

func (m ImportModel) uploadCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return uploadMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := DbCtx()
		defer cancel()

		up, err := m.importService.Upload(ctx, filepath.Base(path), f)

		return uploadMsg{upload: up, err: err}
	}
}

func request(st wizard.State) importer.Request {
	return importer.Request{
		Rows:       st.Source.Rows,
		Mapping:    st.Mapping,
		Format:     st.Format,
		Transforms: st.Transforms,
		FX:         st.FX,
		Overrides:  st.Overrides,
		AccountID:  st.AccountID,
	}
}

func (m ImportModel) previewCmd(st wizard.State) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		p, err := m.importService.Preview(ctx, request(st))

		return previewMsg{preview: p, err: err}
	}
}

func (m ImportModel) commitCmd(st wizard.State, includeDuplicates bool) tea.Cmd {
	req := importer.CommitRequest{
		Request:           request(st),
		FileName:          st.FileName,
		FileFormat:        st.Source.Format,
		IncludeDuplicates: includeDuplicates,
	}

	if up := m.upload; up != nil {
		req.Charset = up.Charset
		req.HeaderFingerprint = up.HeaderFingerprint

		if up.Profile != nil && !up.Profile.Builtin {
			id := up.Profile.ID
			req.ProfileID = &id
		}
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		batch, err := m.importService.Commit(ctx, req)

		return commitMsg{batch: batch, err: err}
	}
}

func (m ImportModel) undoCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		batch, err := m.importService.Undo(ctx)

		return undoMsg{batch: batch, err: err}
	}
}

func (m ImportModel) saveProfileCmd(st wizard.State, name string) tea.Cmd {
	params := profile.SaveParams{
		Name:       name,
		Headers:    st.Source.Headers,
		Mapping:    st.Mapping,
		Format:     st.Format,
		Transforms: st.Transforms,
	}

	if up := m.upload; up != nil && up.Profile != nil && !up.Profile.Builtin && up.Profile.Name == name {
		id := up.Profile.ID
		params.ID = &id
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		p, err := m.profileService.Save(ctx, params)

		return profileSavedMsg{profile: p, err: err}
	}
}
