package view

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/posrecon/internal/reconcile"
	"github.com/MrJamesThe3rd/posrecon/internal/scheduler"
	"github.com/MrJamesThe3rd/posrecon/internal/status"
	"github.com/MrJamesThe3rd/posrecon/internal/transaction"
)

const refreshInterval = 2 * time.Second

type Runner interface {
	RunOnce(ctx context.Context) (reconcile.Result, error)
}

type PendingCounter interface {
	Pending(ctx context.Context) (int64, error)
}

type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// StatusModel shows pipeline progress and runs reconciliation passes on demand.
type StatusModel struct {
	CommonModel
	runner    Runner
	staging   PendingCounter
	canonical Counter
	tracker   *status.Tracker

	table   table.Model
	spinner spinner.Model
	syncing bool

	pending   int64
	canonRows int64
	lastSync  string
	err       error
}

func NewStatusModel(runner Runner, staging PendingCounter, canonical Counter, tracker *status.Tracker) StatusModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Metric", Width: 22},
			{Title: "Value", Width: 30},
		}),
		table.WithHeight(14),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return StatusModel{
		runner:    runner,
		staging:   staging,
		canonical: canonical,
		tracker:   tracker,
		table:     t,
		spinner:   sp,
	}
}

func (m StatusModel) Title() string { return "Pipeline Status" }

func (m StatusModel) ShortHelp() string {
	return "Esc: back | s: sync now | r: refresh"
}

func (m StatusModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), tick())
}

func (m StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadCmd()
		case "s":
			if m.syncing {
				return m, nil
			}

			m.syncing = true
			m.lastSync = ""

			return m, tea.Batch(m.spinner.Tick, m.syncCmd())
		}

	case refreshMsg:
		return m, tea.Batch(m.loadCmd(), tick())

	case countsMsg:
		m.err = msg.err
		m.pending = msg.pending
		m.canonRows = msg.canonical
		m.refreshTable()

		return m, nil

	case syncDoneMsg:
		m.syncing = false
		m.lastSync = describeSync(msg)

		return m, m.loadCmd()

	case spinner.TickMsg:
		if !m.syncing {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func describeSync(msg syncDoneMsg) string {
	switch {
	case errors.Is(msg.err, scheduler.ErrPassInProgress), errors.Is(msg.err, transaction.ErrPassLocked):
		return warnStyle.Render("A pass is already running, try again shortly.")
	case msg.err != nil:
		return errorStyle.Render(fmt.Sprintf("Sync failed: %v", msg.err))
	}

	return successStyle.Render(fmt.Sprintf("Synced %d records, %d errors.", msg.result.Synced, msg.result.Errors))
}

func (m *StatusModel) refreshTable() {
	snap := m.tracker.Snapshot()

	lastErr := snap.LastPassError
	if lastErr == "" {
		lastErr = "-"
	}

	m.table.SetRows([]table.Row{
		{"State", string(snap.State)},
		{"Pending in staging", strconv.FormatInt(m.pending, 10)},
		{"Canonical rows", strconv.FormatInt(m.canonRows, 10)},
		{"Uploads", strconv.FormatInt(snap.Uploads, 10)},
		{"Rows staged", strconv.FormatInt(snap.Staged, 10)},
		{"Rows rejected", strconv.FormatInt(snap.Rejected, 10)},
		{"Passes", strconv.FormatInt(snap.Passes, 10)},
		{"Records synced", strconv.FormatInt(snap.Synced, 10)},
		{"Errors", strconv.FormatInt(snap.ErrorCount, 10)},
		{"Last pass duration", fmt.Sprintf("%.2fs", snap.ProcessingTime)},
		{"Last pass", FormatTime(snap.LastPassAt)},
		{"Last pass error", lastErr},
		{"Last update", FormatTime(snap.LastUpdate)},
	})
}

func (m StatusModel) View() string {
	content := m.table.View()

	if m.err != nil {
		content = errorStyle.Render(fmt.Sprintf("Counts unavailable: %v", m.err)) + "\n\n" + content
	}

	footer := m.lastSync
	if m.syncing {
		footer = fmt.Sprintf("%s Reconciling...", m.spinner.View())
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			activeStyle(m.Title()),
			"",
			lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")).Render(content),
			"",
			footer,
		),
	)
}

// Messages

type refreshMsg struct{}

type countsMsg struct {
	pending   int64
	canonical int64
	err       error
}

type syncDoneMsg struct {
	result reconcile.Result
	err    error
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m StatusModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var msg countsMsg

		pending, err := m.staging.Pending(ctx)
		if err != nil {
			msg.err = fmt.Errorf("staging: %w", err)
		}

		canonical, err := m.canonical.Count(ctx)
		if err != nil && msg.err == nil {
			msg.err = fmt.Errorf("canonical store: %w", err)
		}

		msg.pending, msg.canonical = pending, canonical

		return msg
	}
}

func (m StatusModel) syncCmd() tea.Cmd {
	return func() tea.Msg {
		result, err := m.runner.RunOnce(context.Background())
		return syncDoneMsg{result: result, err: err}
	}
}
