package view

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/posrecon/internal/importer"
	"github.com/MrJamesThe3rd/posrecon/internal/importer/record"
	"github.com/MrJamesThe3rd/posrecon/internal/upload"
)

const stageTimeout = 2 * time.Minute

type ingestState int

const (
	ingestStateFilePick ingestState = iota
	ingestStateParsing
	ingestStateReview
	ingestStateStaging
	ingestStateResult
)

type IngestModel struct {
	CommonModel
	importService *importer.Service
	uploadService *upload.Service

	state      ingestState
	filePicker filepicker.Model
	spinner    spinner.Model
	rejected   table.Model
	form       *huh.Form

	path    string
	content []byte
	report  *importer.Report
	confirm *bool

	status string
	err    error
}

func NewIngestModel(impSvc *importer.Service, uploadSvc *upload.Service) IngestModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.AllowedTypes = []string{".txt", ".csv", ".tsv", ".psv", ".dat", ".xlsx"}
	fp.SetHeight(15)

	s := spinner.New()
	s.Spinner = spinner.Dot

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Line", Width: 8},
			{Title: "Reason", Width: 80},
		}),
		table.WithHeight(10),
	)

	return IngestModel{
		importService: impSvc,
		uploadService: uploadSvc,
		filePicker:    fp,
		spinner:       s,
		rejected:      t,
	}
}

func (m IngestModel) Title() string { return "Ingest POS Export" }

func (m IngestModel) ShortHelp() string {
	if m.state == ingestStateReview {
		return "Up/Down: rejected rows | Enter: confirm | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m IngestModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m IngestModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height

	case parsedMsg:
		return m.handleParsed(msg)

	case stagedMsg:
		return m.handleStaged(msg)

	case spinner.TickMsg:
		if m.state != ingestStateParsing && m.state != ingestStateStaging {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	switch m.state {
	case ingestStateFilePick:
		return m.updateFilePick(msg)
	case ingestStateReview:
		return m.updateReview(msg)
	}

	return m, nil
}

func (m IngestModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case ingestStateReview, ingestStateResult:
		m.reset()
		return m, m.filePicker.Init()
	case ingestStateParsing, ingestStateStaging:
		return m, nil
	}

	return m, Back
}

func (m *IngestModel) reset() {
	m.state = ingestStateFilePick
	m.path = ""
	m.content = nil
	m.report = nil
	m.form = nil
	m.confirm = nil
	m.status = ""
	m.err = nil
}

func (m IngestModel) updateFilePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = ingestStateParsing
		m.path = path
		m.status = fmt.Sprintf("Parsing %s...", filepath.Base(path))

		return m, tea.Batch(m.spinner.Tick, m.parseCmd(path))
	}

	return m, cmd
}

func (m IngestModel) handleParsed(msg parsedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil && !errors.Is(msg.err, importer.ErrNoRowsAccepted) {
		m.state = ingestStateResult
		m.err = msg.err
		m.status = describeIngestError(msg.err)

		return m, nil
	}

	m.content = msg.content
	m.report = msg.report
	m.refreshRejected()

	if len(msg.report.Accepted) == 0 {
		m.state = ingestStateResult
		m.err = msg.err
		m.status = fmt.Sprintf("No valid rows: %d rejected.", len(msg.report.Rejected))

		return m, nil
	}

	m.confirm = new(true)
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("stage").
				Title(fmt.Sprintf("Stage %d accepted rows?", len(msg.report.Accepted))).
				Affirmative("Stage").
				Negative("Cancel").
				Value(m.confirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = ingestStateReview

	return m, m.form.Init()
}

func (m IngestModel) updateReview(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && (keyMsg.String() == "up" || keyMsg.String() == "down") {
		var cmd tea.Cmd
		m.rejected, cmd = m.rejected.Update(msg)

		return m, cmd
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !*m.confirm {
		m.reset()
		return m, m.filePicker.Init()
	}

	m.state = ingestStateStaging
	m.status = fmt.Sprintf("Staging %d rows...", len(m.report.Accepted))

	return m, tea.Batch(m.spinner.Tick, m.stageCmd())
}

func (m IngestModel) handleStaged(msg stagedMsg) (tea.Model, tea.Cmd) {
	m.state = ingestStateResult

	if msg.err != nil {
		m.err = msg.err
		m.status = describeIngestError(msg.err)

		if msg.result != nil {
			m.status += "\n" + msg.result.Message
		}

		return m, nil
	}

	m.status = fmt.Sprintf("%s: %s", msg.result.Status, msg.result.Message)
	for _, f := range msg.result.StageFailures {
		m.status += fmt.Sprintf("\n  line %d not staged: %v", f.Line, f.Err)
	}

	return m, nil
}

func (m *IngestModel) refreshRejected() {
	rows := make([]table.Row, 0, len(m.report.Rejected))
	for _, re := range m.report.Rejected {
		rows = append(rows, table.Row{strconv.Itoa(re.Line), re.Reason})
	}

	m.rejected.SetRows(rows)
	m.rejected.Focus()
}

func describeIngestError(err error) string {
	var schemaErr *record.SchemaError
	if errors.As(err, &schemaErr) {
		return fmt.Sprintf("Error: %v\nColumns found: %v", schemaErr, schemaErr.Present)
	}

	return fmt.Sprintf("Error: %v", err)
}

func (m IngestModel) View() string {
	switch m.state {
	case ingestStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select a POS export (delimited text or xlsx):\n\n%s", m.filePicker.View()),
		)
	case ingestStateParsing, ingestStateStaging:
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("%s %s", m.spinner.View(), m.status))
	case ingestStateReview:
		return m.viewReview()
	case ingestStateResult:
		return m.viewResult()
	}

	return ""
}

func (m IngestModel) viewReview() string {
	r := m.report

	summary := fmt.Sprintf("%s\n\nFormat: %s | Encoding: %s | Header: %t\nAccepted: %s | Rejected: %s",
		filepath.Base(m.path),
		r.Format, r.Encoding, r.HasHeader,
		successStyle.Render(strconv.Itoa(len(r.Accepted))),
		warnStyle.Render(strconv.Itoa(len(r.Rejected))),
	)

	content := summary
	if len(r.Rejected) > 0 {
		content = lipgloss.JoinVertical(lipgloss.Left,
			summary,
			"",
			lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")).Render(m.rejected.View()),
		)
	}

	panel := lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Render(m.form.View())

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, content, "", panel))
}

func (m IngestModel) viewResult() string {
	style := successStyle
	if m.err != nil {
		style = errorStyle
	}

	content := style.Render(m.status)
	if m.report != nil && len(m.report.Rejected) > 0 {
		content += "\n\n" + m.rejected.View()
	}

	return lipgloss.NewStyle().Padding(2).Render(content + "\n\n" + faintStyle.Render("(Esc to go back)"))
}

// Messages

type parsedMsg struct {
	content []byte
	report  *importer.Report
	err     error
}

type stagedMsg struct {
	result *upload.Result
	err    error
}

func (m IngestModel) parseCmd(path string) tea.Cmd {
	return func() tea.Msg {
		content, err := os.ReadFile(path)
		if err != nil {
			return parsedMsg{err: err}
		}

		report, err := m.importService.Ingest(content)

		return parsedMsg{content: content, report: report, err: err}
	}
}

func (m IngestModel) stageCmd() tea.Cmd {
	filename := filepath.Base(m.path)
	content := m.content

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), stageTimeout)
		defer cancel()

		result, err := m.uploadService.Upload(ctx, filename, content)

		return stagedMsg{result: result, err: err}
	}
}
