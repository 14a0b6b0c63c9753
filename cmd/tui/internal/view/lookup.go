package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/posrecon/internal/transaction"
)

// LookupModel fetches one canonical transaction by its id_key.
type LookupModel struct {
	CommonModel
	txService *transaction.Service

	form      *huh.Form
	idKey     *string
	searching bool

	tx  *transaction.Transaction
	err error
}

func NewLookupModel(txSvc *transaction.Service) LookupModel {
	m := LookupModel{txService: txSvc}
	m.resetForm()

	return m
}

func (m *LookupModel) resetForm() {
	m.idKey = new("")
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("id_key").
				Title("id_key").
				Placeholder("1398249674").
				Value(m.idKey).
				Validate(func(s string) error {
					n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
					if err != nil || n <= 0 {
						return fmt.Errorf("id_key must be a positive integer")
					}

					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m LookupModel) Title() string { return "Look Up Transaction" }

func (m LookupModel) ShortHelp() string { return "Enter: search | Esc: back" }

func (m LookupModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LookupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

	case lookupMsg:
		m.tx, m.err = msg.tx, msg.err
		m.searching = false
		m.resetForm()

		return m, m.form.Init()
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted || m.searching {
		return m, cmd
	}

	m.searching = true
	idKey, _ := strconv.ParseInt(strings.TrimSpace(*m.idKey), 10, 64)

	return m, m.lookupCmd(idKey)
}

func (m LookupModel) View() string {
	panel := lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(48).
		Render(m.form.View())

	var result string

	switch {
	case errors.Is(m.err, transaction.ErrNotFound):
		result = warnStyle.Render("No transaction with that id_key.")
	case m.err != nil:
		result = errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	case m.tx != nil:
		result = renderTransaction(m.tx)
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinHorizontal(lipgloss.Top, panel, "  ", result))
}

func renderTransaction(tx *transaction.Transaction) string {
	rows := [][2]string{
		{"Store", fmt.Sprintf("%s (%s)", tx.StoreCode, tx.StoreDisplayName)},
		{"Date", fmt.Sprintf("%s %s", FormatDate(tx.TransDate), tx.TransTime)},
		{"Trans no", tx.TransNo},
		{"Till", tx.TillNo},
		{"Net sales", FormatAmount(tx.NetSalesHeaderValues)},
		{"Discount", FormatAmount(tx.DiscountHeader)},
		{"Tax", FormatAmount(tx.TaxHeader)},
		{"Quantity", strconv.FormatInt(tx.Quantity, 10)},
		{"Tender", FormatOptional(tx.Tender)},
		{"Source", tx.SourceSystem},
		{"Region", FormatOptional(tx.StoreRegion)},
		{"Terminal", FormatOptional(tx.TerminalType)},
		{"Duty free", strconv.FormatBool(tx.DutyFree)},
		{"Updated", FormatTime(tx.UpdatedAt)},
	}

	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%-10s %s\n", faintStyle.Render(r[0]), r[1])
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(strings.TrimRight(b.String(), "\n"))
}

// Messages

type lookupMsg struct {
	tx  *transaction.Transaction
	err error
}

func (m LookupModel) lookupCmd(idKey int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		tx, err := m.txService.Get(ctx, idKey)

		return lookupMsg{tx: tx, err: err}
	}
}
