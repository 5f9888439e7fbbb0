package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harborops/stevedore/internal/plan"
	"github.com/harborops/stevedore/internal/tui/components"
	"github.com/harborops/stevedore/internal/tui/msgs"
	"github.com/harborops/stevedore/internal/tui/styles"
)

// PlanListModel is the model for the plan selection view.
type PlanListModel struct {
	plans   []plan.Plan
	cursor  int
	loading bool
	err     error
	notice  string
	width   int
	height  int
}

// NewPlanListModel creates an empty plan list waiting for its first load.
func NewPlanListModel() PlanListModel {
	return PlanListModel{loading: true}
}

// Init implements tea.Model.
func (m PlanListModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PlanListModel) Update(msg tea.Msg) (PlanListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case msgs.PlansLoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err == nil {
			m.plans = msg.Plans
			if m.cursor >= len(m.plans) {
				m.cursor = 0
			}
		}
		return m, nil

	case msgs.SessionOpenedMsg:
		if msg.Err != nil {
			m.notice = msg.Err.Error()
		}
		return m, nil

	case msgs.StatusChangedMsg:
		if msg.Err != nil {
			m.notice = msg.Err.Error()
			return m, nil
		}
		m.notice = fmt.Sprintf("Plan %s is now %s", msg.Plan.ID, msg.Plan.Status)
		for i := range m.plans {
			if m.plans[i].ID == msg.Plan.ID {
				m.plans[i] = *msg.Plan
			}
		}
		return m, nil

	case tea.KeyMsg:
		m.notice = ""
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.plans)-1 {
				m.cursor++
			}
		case "enter":
			if p := m.selected(); p != nil {
				target := *p
				return m, func() tea.Msg { return msgs.OpenPlanMsg{Plan: &target} }
			}
		case "s":
			return m.requestTransition(plan.StatusInProgress)
		case "d":
			return m.requestTransition(plan.StatusDone)
		case "h":
			return m.requestTransition(plan.StatusPending)
		case "c":
			return m.requestTransition(plan.StatusScheduled)
		}
	}
	return m, nil
}

// requestTransition validates the move against the loaded plans and emits a
// change request when it is allowed.
func (m PlanListModel) requestTransition(to plan.Status) (PlanListModel, tea.Cmd) {
	p := m.selected()
	if p == nil {
		return m, nil
	}

	active := 0
	if to == plan.StatusInProgress {
		active = plan.CountInProgress(m.plans)
	}
	if err := plan.ValidateTransition(p, to, active); err != nil {
		m.notice = err.Error()
		return m, nil
	}

	target := *p
	return m, func() tea.Msg {
		return msgs.RequestStatusChangeMsg{Plan: &target, To: to}
	}
}

func (m PlanListModel) selected() *plan.Plan {
	if len(m.plans) == 0 || m.cursor >= len(m.plans) {
		return nil
	}
	return &m.plans[m.cursor]
}

// View implements tea.Model.
func (m PlanListModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	title := styles.TitleStyle.Render("Destuffing Plans")
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, "Loading plans..."))
	case m.err != nil:
		b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center,
			styles.ErrorStyle.Render("Failed to load plans: "+m.err.Error())))
	case len(m.plans) == 0:
		b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, "No plans."))
	default:
		var lines []string
		for i := range m.plans {
			lines = append(lines, m.formatPlanLine(i, &m.plans[i]))
		}
		b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, strings.Join(lines, "\n")))
	}

	if m.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center,
			styles.WarningStyle.Render(m.notice)))
	}

	b.WriteString("\n\n")
	statusItems := []string{
		"↑↓ Navigate", "Enter Edit",
		"s Start", "h Suspend", "d Finish", "c Cancel",
		"q Quit",
	}
	b.WriteString(components.NewStatusBar().Render(m.width, statusItems, ""))

	return b.String()
}

// formatPlanLine formats a single plan line for display.
func (m PlanListModel) formatPlanLine(index int, p *plan.Plan) string {
	indicator := "○"
	if index == m.cursor {
		indicator = "●"
	}

	window := "-"
	if !p.PlannedStart.IsZero() {
		window = p.PlannedStart.Local().Format("2006-01-02 15:04")
	}

	containerStr := fmt.Sprintf("%d containers", len(p.Containers))
	if len(p.Containers) == 1 {
		containerStr = "1 container"
	}

	line := fmt.Sprintf("%s %-14s %-12s %16s   %s", indicator, p.ID, p.Status, window, containerStr)

	if index == m.cursor {
		line = styles.SelectedStyle.Render(line)
	} else if p.Status == plan.StatusDone {
		line = styles.SubtleStyle.Render(line)
	}

	return line
}

// SetSize updates the model dimensions.
func (m *PlanListModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Plans returns the loaded plans.
func (m PlanListModel) Plans() []plan.Plan {
	return m.plans
}

// Cursor returns the current cursor position.
func (m PlanListModel) Cursor() int {
	return m.cursor
}

// Notice returns the current footer notice, if any.
func (m PlanListModel) Notice() string {
	return m.notice
}
