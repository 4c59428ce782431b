package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MrJamesThe3rd/ledgerimport/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/ledgerimport/internal/config"
	"github.com/MrJamesThe3rd/ledgerimport/internal/database"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer"
	"github.com/MrJamesThe3rd/ledgerimport/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/ledgerimport/internal/ledger/store"
	"github.com/MrJamesThe3rd/ledgerimport/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/ledgerimport/internal/matching/store"
	"github.com/MrJamesThe3rd/ledgerimport/internal/metrics"
	"github.com/MrJamesThe3rd/ledgerimport/internal/profile"
	profileStore "github.com/MrJamesThe3rd/ledgerimport/internal/profile/store"
	referenceStore "github.com/MrJamesThe3rd/ledgerimport/internal/reference/store"
)

type model struct {
	importService   *importer.Service
	profileService  *profile.Service
	matchingService *matching.Service
	separator       string

	currentView View

	importView   view.ImportModel
	rulesView    view.RulesModel
	profilesView view.ProfilesModel
}

type View int

const (
	ViewMenu     View = 0
	ViewImport   View = 1
	ViewRules    View = 2
	ViewProfiles View = 3
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.ConnectionString(), cfg.DB.MaxConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	matchSvc := matching.NewService(matchingStore.New(db))
	profileSvc := profile.NewService(profileStore.New(db))
	impSvc := importer.NewService(
		ledger.NewService(ledgerStore.New(db)),
		referenceStore.New(db),
		profileSvc,
		matchSvc,
		metrics.New(prometheus.NewRegistry()),
		importer.Options{
			MaxUploadBytes:       cfg.Import.MaxUploadBytes,
			DescriptionSeparator: cfg.Import.DescriptionSeparator,
		},
	)

	return model{
		importService:   impSvc,
		profileService:  profileSvc,
		matchingService: matchSvc,
		separator:       cfg.Import.DescriptionSeparator,
		currentView:     ViewMenu,
		importView:      view.NewImportModel(impSvc, profileSvc, cfg.Import.DescriptionSeparator),
		rulesView:       view.NewRulesModel(matchSvc),
		profilesView:    view.NewProfilesModel(profileSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.importService, m.profileService, m.separator)

				return m, m.importView.Init()
			case "2":
				m.currentView = ViewRules
				m.rulesView = view.NewRulesModel(m.matchingService)

				return m, m.rulesView.Init()
			case "3":
				m.currentView = ViewProfiles
				m.profilesView = view.NewProfilesModel(m.profileService)

				return m, m.profilesView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewRules:
		var newModel tea.Model
		newModel, cmd = m.rulesView.Update(msg)
		m.rulesView = newModel.(view.RulesModel)
	case ViewProfiles:
		var newModel tea.Model
		newModel, cmd = m.profilesView.Update(msg)
		m.profilesView = newModel.(view.ProfilesModel)
	}

	return m, cmd
}

func (m model) View() string {
	var current view.View

	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Ledger Import\n\n" +
				"1. Import Statement\n" +
				"2. Description Rules\n" +
				"3. Import Profiles\n\n" +
				"q. Quit",
		)
	case ViewImport:
		current = m.importView
	case ViewRules:
		current = m.rulesView
	case ViewProfiles:
		current = m.profilesView
	default:
		return "Unknown View"
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Render(current.Title())
	help := lipgloss.NewStyle().Faint(true).Render(current.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, title, current.View(), help)
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
