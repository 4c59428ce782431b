package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/ledgerimport/internal/profile"
)

type ProfilesModel struct {
	CommonModel
	profileService *profile.Service

	table    table.Model
	profiles []*profile.Profile

	loading bool
	err     error
	status  string
}

func NewProfilesModel(svc *profile.Service) ProfilesModel {
	return ProfilesModel{
		profileService: svc,
		table: newTable([]table.Column{
			{Title: "Name", Width: 24},
			{Title: "Headers", Width: 44},
			{Title: "Dates", Width: 12},
			{Title: "Updated", Width: 12},
		}, 15),
		loading: true,
	}
}

func (m ProfilesModel) Title() string { return "Import Profiles" }

func (m ProfilesModel) ShortHelp() string {
	return "Esc: back | d: delete | r: refresh"
}

func (m ProfilesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ProfilesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadProfilesMsg:
		m.loading = false
		m.err = msg.err
		m.profiles = msg.profiles
		m.refreshTable()

		return m, nil

	case profileDeletedMsg:
		m.status = fmt.Sprintf("Deleted profile %q.", msg.name)
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		return m, m.loadCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "d":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.profiles) {
				return m, nil
			}

			return m, m.deleteCmd(m.profiles[idx])
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ProfilesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading profiles...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	content := boxed(m.table.View())
	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ProfilesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.profiles))
	for _, p := range m.profiles {
		updated := p.UpdatedAt
		rows = append(rows, table.Row{p.Name, p.HeaderFingerprint, p.Format.DateFormat.String(), FormatDate(&updated)})
	}

	m.table.SetRows(rows)
}

// Messages

type loadProfilesMsg struct {
	profiles []*profile.Profile
	err      error
}

type profileDeletedMsg struct {
	name string
	err  error
}

func (m ProfilesModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		profiles, err := m.profileService.List(ctx)

		return loadProfilesMsg{profiles: profiles, err: err}
	}
}

func (m ProfilesModel) deleteCmd(p *profile.Profile) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return profileDeletedMsg{name: p.Name, err: m.profileService.Delete(ctx, p.ID)}
	}
}
