// Package tui is the interactive operations console: a plan list, an edit
// view for container assignments, and lifecycle controls.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/harborops/stevedore/internal/backend"
	"github.com/harborops/stevedore/internal/config"
	"github.com/harborops/stevedore/internal/plan"
	"github.com/harborops/stevedore/internal/session"
	"github.com/harborops/stevedore/internal/tui/msgs"
	"github.com/harborops/stevedore/internal/tui/views"
)

// View represents the different screens in the TUI.
type View int

const (
	ViewPlanList View = iota
	ViewPlanEdit
)

// Backend is everything the console needs from the yard-management API.
// *backend.Client satisfies it.
type Backend interface {
	session.Backend
	ListPlans(ctx context.Context) ([]plan.Plan, error)
	UpdatePlanStatus(ctx context.Context, planID string, status plan.Status) (*plan.Plan, error)
}

// Model is the main Bubble Tea model that orchestrates all views.
type Model struct {
	backend Backend
	audit   *session.AuditLog

	currentView View
	planList    views.PlanListModel
	planEdit    views.PlanEditModel

	width  int
	height int
}

// Run starts the TUI application.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	client := backend.New(cfg.APIBaseURL, cfg.OperatorID, cfg.RequestTimeout)
	audit := session.NewAuditLog(cfg.AuditLogPath())

	p := tea.NewProgram(
		NewModel(client, audit),
		tea.WithAltScreen(),
	)
	_, err = p.Run()
	return err
}

// NewModel creates the root model over the given backend.
func NewModel(b Backend, audit *session.AuditLog) Model {
	return Model{
		backend:     b,
		audit:       audit,
		currentView: ViewPlanList,
		planList:    views.NewPlanListModel(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.loadPlansCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.planList.SetSize(msg.Width, msg.Height)
		m.planEdit.SetSize(msg.Width, msg.Height)
		return m, nil

	case msgs.GoToPlanListMsg:
		// The edit session (and any unsaved edits) stays alive; only
		// opening a different plan can discard it.
		m.currentView = ViewPlanList
		return m, m.loadPlansCmd()

	case msgs.OpenPlanMsg:
		return m.openPlan(msg.Plan)

	case msgs.SessionOpenedMsg:
		if msg.Err != nil {
			var cmd tea.Cmd
			m.planList, cmd = m.planList.Update(msg)
			return m, cmd
		}
		m.planEdit = views.NewPlanEditModel(msg.Session)
		m.planEdit.SetSize(m.width, m.height)
		m.currentView = ViewPlanEdit
		return m, nil

	case msgs.SwitchConfirmedMsg:
		return m, m.openSessionCmd(msg.Plan.ID)

	case msgs.RequestStatusChangeMsg:
		return m, m.changeStatusCmd(msg.Plan, msg.To)

	case msgs.PlansLoadedMsg, msgs.StatusChangedMsg:
		var cmd tea.Cmd
		m.planList, cmd = m.planList.Update(msg)
		return m, cmd

	case msgs.SaveDoneMsg:
		var cmd tea.Cmd
		m.planEdit, cmd = m.planEdit.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.planEdit, cmd = m.planEdit.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.currentView {
		case ViewPlanEdit:
			var cmd tea.Cmd
			m.planEdit, cmd = m.planEdit.Update(msg)
			return m, cmd
		default:
			var cmd tea.Cmd
			m.planList, cmd = m.planList.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// openPlan routes a plan selection through the session's switch guard.
func (m Model) openPlan(target *plan.Plan) (tea.Model, tea.Cmd) {
	sess := m.planEdit.Session()
	if sess == nil {
		return m, m.openSessionCmd(target.ID)
	}

	if sess.RequestSwitch(target) {
		if target.ID == sess.Plan().ID {
			m.currentView = ViewPlanEdit
			return m, nil
		}
		return m, m.openSessionCmd(target.ID)
	}

	// Unsaved edits: the edit view shows the discard-or-keep prompt.
	m.currentView = ViewPlanEdit
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	switch m.currentView {
	case ViewPlanEdit:
		return m.planEdit.View()
	default:
		return m.planList.View()
	}
}

func (m Model) loadPlansCmd() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		plans, err := b.ListPlans(context.Background())
		return msgs.PlansLoadedMsg{Plans: plans, Err: err}
	}
}

func (m Model) openSessionCmd(planID string) tea.Cmd {
	b, audit := m.backend, m.audit
	return func() tea.Msg {
		sess, err := session.Open(context.Background(), b, audit, planID)
		return msgs.SessionOpenedMsg{Session: sess, Err: err}
	}
}

// changeStatusCmd applies a lifecycle transition. The guards are re-checked
// against freshly fetched state immediately before the write: blocking
// conditions and the in-progress count can change out-of-band after the list
// was loaded, so the view's cached plans must not be trusted here.
func (m Model) changeStatusCmd(p *plan.Plan, to plan.Status) tea.Cmd {
	b, audit := m.backend, m.audit
	return func() tea.Msg {
		ctx := context.Background()

		fresh, err := b.FetchPlan(ctx, p.ID)
		if err != nil {
			return msgs.StatusChangedMsg{Err: err}
		}
		active := 0
		if to == plan.StatusInProgress {
			plans, err := b.ListPlans(ctx)
			if err != nil {
				return msgs.StatusChangedMsg{Err: err}
			}
			active = plan.CountInProgress(plans)
		}
		if err := plan.ValidateTransition(fresh, to, active); err != nil {
			return msgs.StatusChangedMsg{Err: err}
		}

		updated, err := b.UpdatePlanStatus(ctx, fresh.ID, to)
		if err != nil {
			return msgs.StatusChangedMsg{Err: err}
		}
		audit.StatusChanged(updated.ID, string(fresh.Status), string(updated.Status))
		return msgs.StatusChangedMsg{Plan: updated}
	}
}
