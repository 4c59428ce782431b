package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/ledgerimport/internal/matching"
)

type rulesState int

const (
	rulesStateBrowse rulesState = iota
	rulesStateEdit
)

// rulesForm holds the form bindings; the form keeps pointers into it.
type rulesForm struct {
	pattern     string
	description string
}

type RulesModel struct {
	CommonModel
	matchingService *matching.Service

	state  rulesState
	table  table.Model
	rules  []matching.Rule
	form   *huh.Form
	fields *rulesForm

	loading bool
	err     error
	status  string
}

func NewRulesModel(svc *matching.Service) RulesModel {
	return RulesModel{
		matchingService: svc,
		table: newTable([]table.Column{
			{Title: "Pattern", Width: 36},
			{Title: "Description", Width: 36},
			{Title: "Created", Width: 12},
		}, 15),
		loading: true,
	}
}

func (m RulesModel) Title() string { return "Description Rules" }

func (m RulesModel) ShortHelp() string {
	if m.state == rulesStateEdit {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | n: new rule | d: delete | r: refresh"
}

func (m RulesModel) Init() tea.Cmd {
	return m.loadRulesCmd()
}

func (m RulesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadRulesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.rules = msg.rules
		m.refreshTable()

		return m, nil

	case ruleChangedMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = rulesStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadRulesCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case rulesStateBrowse:
		return m.updateBrowse(msg)
	case rulesStateEdit:
		return m.updateEdit(msg)
	}

	return m, nil
}

func (m RulesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadRulesCmd()
		case "n":
			return m.enterEditMode()
		case "d":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.rules) {
				return m, nil
			}

			return m, m.forgetCmd(m.rules[idx])
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m RulesModel) enterEditMode() (tea.Model, tea.Cmd) {
	m.fields = &rulesForm{}

	required := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New(field + " cannot be empty")
			}
			return nil
		}
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Raw pattern").
				Description("Matched case-insensitively anywhere in the bank description").
				Value(&m.fields.pattern).
				Validate(required("pattern")),
			huh.NewInput().
				Title("Description").
				Value(&m.fields.description).
				Validate(required("description")),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = rulesStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m RulesModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = rulesStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = rulesStateBrowse
	m.form = nil
	m.table.Focus()

	return m, m.learnCmd(m.fields.pattern, m.fields.description)
}

func (m RulesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading rules...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	content := boxed(m.table.View())

	if m.state == rulesStateEdit && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("New Rule\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *RulesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.rules))
	for _, r := range m.rules {
		created := r.CreatedAt
		rows = append(rows, table.Row{r.RawPattern, r.PreferredDescription, FormatDate(&created)})
	}

	m.table.SetRows(rows)
}

// Messages

type loadRulesMsg struct {
	rules []matching.Rule
	err   error
}

type ruleChangedMsg struct {
	status string
	err    error
}

func (m RulesModel) loadRulesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		rules, err := m.matchingService.Rules(ctx)

		return loadRulesMsg{rules: rules, err: err}
	}
}

func (m RulesModel) learnCmd(pattern, description string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		rule, err := m.matchingService.Learn(ctx, pattern, description)
		if err != nil {
			return ruleChangedMsg{err: err}
		}

		return ruleChangedMsg{status: fmt.Sprintf("Added rule %q.", rule.RawPattern)}
	}
}

func (m RulesModel) forgetCmd(rule matching.Rule) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.matchingService.Forget(ctx, rule.ID); err != nil {
			return ruleChangedMsg{err: err}
		}

		return ruleChangedMsg{status: fmt.Sprintf("Deleted rule %q.", rule.RawPattern)}
	}
}
