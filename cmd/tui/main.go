package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/posrecon/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/posrecon/internal/app"
	"github.com/MrJamesThe3rd/posrecon/internal/config"
	"github.com/MrJamesThe3rd/posrecon/internal/scheduler"
)

type model struct {
	app   *app.App
	sched *scheduler.Scheduler

	currentView View

	ingestView view.IngestModel
	statusView view.StatusModel
	lookupView view.LookupModel
}

type View int

const (
	ViewMenu   View = 0
	ViewIngest View = 1
	ViewStatus View = 2
	ViewLookup View = 3
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The terminal belongs to bubbletea; logs go to a file when LOG_FILE is set.
	var logOut io.Writer = io.Discard
	if path := os.Getenv("LOG_FILE"); path != "" {
		if f, err := tea.LogToFile(path, "posrecon"); err == nil {
			logOut = f
		}
	}

	logger := app.NewLogger(cfg, logOut)
	slog.SetDefault(logger)

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}

	sched, err := scheduler.New(scheduler.Params{
		Logger:      logger,
		Reconciler:  a.Reconciler,
		Tracker:     a.Tracker,
		Metrics:     a.ReconcileMetrics,
		PassTimeout: cfg.Sync.PassTimeout,
		BatchSize:   cfg.Sync.BatchSize,
	})
	if err != nil {
		slog.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}

	return model{
		app:         a,
		sched:       sched,
		currentView: ViewMenu,
		ingestView:  view.NewIngestModel(a.Importer, a.Upload),
		statusView:  view.NewStatusModel(sched, a.Staging, a.Transactions, a.Tracker),
		lookupView:  view.NewLookupModel(a.Transactions),
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
				m.currentView = ViewIngest
				m.ingestView = view.NewIngestModel(m.app.Importer, m.app.Upload)

				return m, m.ingestView.Init()
			case "2":
				m.currentView = ViewStatus
				m.statusView = view.NewStatusModel(m.sched, m.app.Staging, m.app.Transactions, m.app.Tracker)

				return m, m.statusView.Init()
			case "3":
				m.currentView = ViewLookup
				m.lookupView = view.NewLookupModel(m.app.Transactions)

				return m, m.lookupView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewIngest:
		var newModel tea.Model
		newModel, cmd = m.ingestView.Update(msg)
		m.ingestView = newModel.(view.IngestModel)
	case ViewStatus:
		var newModel tea.Model
		newModel, cmd = m.statusView.Update(msg)
		m.statusView = newModel.(view.StatusModel)
	case ViewLookup:
		var newModel tea.Model
		newModel, cmd = m.lookupView.Update(msg)
		m.lookupView = newModel.(view.LookupModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"POS Reconciliation\n\n" +
				"1. Ingest POS Export\n" +
				"2. Pipeline Status & Sync\n" +
				"3. Look Up Transaction\n\n" +
				"q. Quit",
		)
	case ViewIngest:
		return m.ingestView.View()
	case ViewStatus:
		return m.statusView.View()
	case ViewLookup:
		return m.lookupView.View()
	}

	return "Unknown View"
}

func main() {
	m := initialModel()
	defer m.app.Close()

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
