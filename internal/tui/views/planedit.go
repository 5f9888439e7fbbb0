package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/harborops/stevedore/internal/plan"
	"github.com/harborops/stevedore/internal/reconcile"
	"github.com/harborops/stevedore/internal/session"
	"github.com/harborops/stevedore/internal/tui/components"
	"github.com/harborops/stevedore/internal/tui/msgs"
	"github.com/harborops/stevedore/internal/tui/styles"
)

// PlanEditModel is the model for editing one plan's container assignments
// and header.
type PlanEditModel struct {
	session *session.Session
	cursor  int
	saving  bool
	spinner spinner.Model
	report  *reconcile.Report
	saveErr error
	notice  string
	width   int
	height  int
}

// NewPlanEditModel creates an edit view over an open session.
func NewPlanEditModel(sess *session.Session) PlanEditModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SelectedStyle
	return PlanEditModel{
		session: sess,
		spinner: sp,
	}
}

// Init implements tea.Model.
func (m PlanEditModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PlanEditModel) Update(msg tea.Msg) (PlanEditModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.saving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case msgs.SaveDoneMsg:
		m.saving = false
		m.report = msg.Report
		m.saveErr = msg.Err
		return m, nil

	case tea.KeyMsg:
		if m.session.PendingSwitch() != nil {
			return m.updateSwitchPrompt(msg)
		}
		if m.saving {
			// The save control stays disabled until the result comes back.
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

// updateSwitchPrompt handles the discard-or-keep decision for a held plan
// switch.
func (m PlanEditModel) updateSwitchPrompt(msg tea.KeyMsg) (PlanEditModel, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		target := m.session.ConfirmSwitch()
		return m, func() tea.Msg { return msgs.SwitchConfirmedMsg{Plan: target} }
	case "n", "N", "esc":
		m.session.CancelSwitch()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m PlanEditModel) updateKeys(msg tea.KeyMsg) (PlanEditModel, tea.Cmd) {
	m.notice = ""
	pool := m.session.Pool()

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		return m, func() tea.Msg { return msgs.GoToPlanListMsg{} }
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(pool)-1 {
			m.cursor++
		}
	case " ", "enter":
		if m.cursor < len(pool) {
			m.report = nil
			m.saveErr = nil
			if err := m.session.ToggleContainer(pool[m.cursor].ID); err != nil {
				m.notice = err.Error()
			}
		}
	case "e":
		return m.toggleHeader(func(h *plan.Header) { h.EquipmentBooked = !h.EquipmentBooked })
	case "a":
		return m.toggleHeader(func(h *plan.Header) { h.AppointmentConfirmed = !h.AppointmentConfirmed })
	case "s":
		if !m.session.Dirty() {
			m.notice = "nothing to save"
			return m, nil
		}
		m.saving = true
		m.report = nil
		m.saveErr = nil
		sess := m.session
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			report, err := sess.Save(context.Background())
			return msgs.SaveDoneMsg{Report: report, Err: err}
		})
	}
	return m, nil
}

func (m PlanEditModel) toggleHeader(mutate func(*plan.Header)) (PlanEditModel, tea.Cmd) {
	h := m.session.Header()
	mutate(&h)
	if err := m.session.SetHeader(h); err != nil {
		m.notice = err.Error()
	}
	return m, nil
}

// View implements tea.Model.
func (m PlanEditModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder
	p := m.session.Plan()

	title := fmt.Sprintf("Plan %s  %s", p.ID, p.Status)
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.renderHeader(p))
	b.WriteString("\n\n")
	b.WriteString(m.renderPool())
	b.WriteString("\n")

	if guards := plan.EvaluateGuards(p); guards.Blocked() {
		b.WriteString("\n")
		b.WriteString(styles.WarningStyle.Render(guards.Explain()))
		b.WriteString("\n")
	}

	if m.session.PendingSwitch() != nil {
		b.WriteString("\n")
		b.WriteString(styles.WarningStyle.Render(fmt.Sprintf(
			"Unsaved changes on plan %s. Discard them and open plan %s? (y/n)",
			p.ID, m.session.PendingSwitch().ID)))
		b.WriteString("\n")
	} else if m.saving {
		b.WriteString("\n")
		b.WriteString(m.spinner.View())
		b.WriteString(" Saving...")
		b.WriteString("\n")
	} else if m.report != nil || m.saveErr != nil {
		b.WriteString("\n")
		b.WriteString(m.renderSaveResult())
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	statusItems := []string{
		"↑↓ Navigate", "Space Toggle",
		"e Equipment", "a Appointment",
		"s Save", "Esc Plans",
	}
	note := ""
	if n := len(m.session.Changes()); n > 0 {
		note = fmt.Sprintf("%d unsaved", n)
	}
	b.WriteString(components.NewStatusBar().Render(m.width, statusItems, note))

	return b.String()
}

func (m PlanEditModel) renderHeader(p *plan.Plan) string {
	h := m.session.Header()
	window := fmt.Sprintf("%s to %s",
		h.PlannedStart.Local().Format("2006-01-02 15:04"),
		h.PlannedEnd.Local().Format("2006-01-02 15:04"))

	parts := []string{
		"Planned: " + window,
		"Equipment: " + checkbox(h.EquipmentBooked),
		"Appointment: " + checkbox(h.AppointmentConfirmed),
	}
	line := strings.Join(parts, "    ")
	if !p.Editable() {
		line += "    " + styles.SubtleStyle.Render("(header locked)")
	}
	return line
}

func (m PlanEditModel) renderPool() string {
	pool := m.session.Pool()
	if len(pool) == 0 {
		return styles.SubtleStyle.Render("No containers available for this forwarder.")
	}

	var lines []string
	for i := range pool {
		lines = append(lines, m.formatContainerLine(i, &pool[i]))
	}
	return strings.Join(lines, "\n")
}

func (m PlanEditModel) formatContainerLine(index int, oc *plan.OrderContainer) string {
	mark := "[ ]"
	if m.session.Selected(oc.ID) {
		mark = "[x]"
	}

	unitStr := fmt.Sprintf("%d units", len(oc.CargoUnits))
	if len(oc.CargoUnits) == 1 {
		unitStr = "1 unit"
	}

	var flags []string
	if !oc.AllowStuffingOrDestuffing {
		flags = append(flags, "destuffing blocked")
	}
	if !oc.ReleaseApproved() {
		flags = append(flags, "release not approved")
	}

	line := fmt.Sprintf("%s %-16s %10s", mark, oc.Label(), unitStr)
	if len(flags) > 0 {
		line += "  " + styles.WarningStyle.Render(strings.Join(flags, ", "))
	}

	if index == m.cursor {
		return styles.SelectedStyle.Render("› ") + line
	}
	return "  " + line
}

// renderSaveResult summarizes the reconciliation report: how many changes
// persisted and, per container, what was rejected.
func (m PlanEditModel) renderSaveResult() string {
	var b strings.Builder

	if m.saveErr != nil {
		b.WriteString(styles.ErrorStyle.Render("Save failed: " + m.saveErr.Error()))
		if m.report == nil {
			return b.String()
		}
		b.WriteString("\n")
	}

	if m.report.Empty() {
		b.WriteString(styles.SubtleStyle.Render("Nothing to save."))
		return b.String()
	}

	b.WriteString(styles.SuccessStyle.Render(fmt.Sprintf("%d of %d changes saved.",
		m.report.Succeeded(), len(m.report.Outcomes))))

	for _, group := range m.report.Failures() {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(fmt.Sprintf("  %s: %s",
			group.Label, strings.Join(group.Messages, "; "))))
	}
	return b.String()
}

// SetSize updates the model dimensions.
func (m *PlanEditModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Session returns the edit session this view drives.
func (m PlanEditModel) Session() *session.Session {
	return m.session
}

// Saving reports whether a save is in flight.
func (m PlanEditModel) Saving() bool {
	return m.saving
}

// Cursor returns the current cursor position.
func (m PlanEditModel) Cursor() int {
	return m.cursor
}

func checkbox(v bool) string {
	if v {
		return "[x]"
	}
	return "[ ]"
}
