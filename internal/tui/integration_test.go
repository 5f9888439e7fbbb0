package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harborops/stevedore/internal/plan"
	"github.com/harborops/stevedore/internal/testutil"
)

func newTestApp(t *testing.T) (*testutil.FakeBackend, Model) {
	t.Helper()

	b := testutil.NewFakeBackend()
	b.Containers = []plan.OrderContainer{
		{
			ID:                        "oc-1",
			Number:                    "MSKU1111111",
			AllowStuffingOrDestuffing: true,
			CargoReleaseStatus:        plan.ReleaseApproved,
			CargoUnits:                []plan.CargoUnit{{UnitID: "u1"}},
		},
	}
	b.AddPlan(&plan.Plan{
		ID:           "plan-a",
		Status:       plan.StatusScheduled,
		PlannedStart: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		PlannedEnd:   time.Date(2026, 3, 1, 16, 0, 0, 0, time.UTC),
		ForwarderID:  "fwd-1",
	})
	b.AddPlan(&plan.Plan{
		ID:          "plan-b",
		Status:      plan.StatusScheduled,
		ForwarderID: "fwd-1",
	})

	m := NewModel(b, nil)
	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return b, m
}

// step runs one message through the app model.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

// stepCmd runs a message through the app model and keeps executing the
// commands it produces until the chain settles.
func stepCmd(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	for msg != nil {
		updated, cmd := m.Update(msg)
		m = updated.(Model)
		if cmd == nil {
			return m
		}
		msg = cmd()
	}
	return m
}

func TestAppLoadsPlansOnInit(t *testing.T) {
	_, m := newTestApp(t)

	cmd := m.Init()
	if cmd == nil {
		t.Fatal("expected a load command from Init")
	}
	m = step(t, m, cmd())

	view := m.View()
	if !strings.Contains(view, "plan-a") || !strings.Contains(view, "plan-b") {
		t.Errorf("expected both plans listed, got:\n%s", view)
	}
}

func TestAppOpensPlanForEditing(t *testing.T) {
	_, m := newTestApp(t)
	m = step(t, m, m.Init()())

	m = stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.currentView != ViewPlanEdit {
		t.Fatal("enter on a plan should open the edit view")
	}
	if got := m.planEdit.Session().Plan().ID; got != "plan-a" {
		t.Errorf("expected an edit session on plan-a, got %s", got)
	}
	if !strings.Contains(m.View(), "MSKU1111111") {
		t.Error("expected the container pool in the edit view")
	}
}

func TestAppSwitchGuardHoldsDirtyEdits(t *testing.T) {
	_, m := newTestApp(t)
	m = step(t, m, m.Init()())
	m = stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	// Dirty the session, go back to the list, and pick the other plan.
	m = step(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.currentView != ViewPlanList {
		t.Fatal("esc should return to the plan list")
	}
	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.currentView != ViewPlanEdit {
		t.Fatal("a held switch should land back on the edit view")
	}
	sess := m.planEdit.Session()
	if sess.Plan().ID != "plan-a" {
		t.Fatalf("the displayed plan must stay plan-a, got %s", sess.Plan().ID)
	}
	if sess.PendingSwitch() == nil || sess.PendingSwitch().ID != "plan-b" {
		t.Fatal("expected a pending switch to plan-b")
	}

	// Cancel: still on plan-a with the edit intact.
	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if m.planEdit.Session().Plan().ID != "plan-a" {
		t.Error("cancel must keep the displayed plan")
	}
	if !m.planEdit.Session().Selected("oc-1") {
		t.Error("cancel must keep the in-progress edits")
	}
}

func TestAppSwitchConfirmOpensTarget(t *testing.T) {
	_, m := newTestApp(t)
	m = step(t, m, m.Init()())
	m = stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m = step(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	// Confirm the switch; the app discards plan-a's session and opens plan-b.
	m = stepCmd(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})

	if m.currentView != ViewPlanEdit {
		t.Fatal("expected the edit view on the target plan")
	}
	if got := m.planEdit.Session().Plan().ID; got != "plan-b" {
		t.Errorf("expected plan-b, got %s", got)
	}
}

func TestAppCleanSwitchNeedsNoPrompt(t *testing.T) {
	_, m := newTestApp(t)
	m = step(t, m, m.Init()())
	m = stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m = stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if got := m.planEdit.Session().Plan().ID; got != "plan-b" {
		t.Errorf("a clean session should switch straight to plan-b, got %s", got)
	}
	if m.planEdit.Session().PendingSwitch() != nil {
		t.Error("no pending switch expected for a clean session")
	}
}

func TestAppStatusChangeRoundTrip(t *testing.T) {
	b, m := newTestApp(t)
	p := b.Plans["plan-a"]
	p.EquipmentBooked = true
	p.AppointmentConfirmed = true

	m = step(t, m, m.Init()())
	m = stepCmd(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})

	// The request goes through the backend and the row reflects the change.
	if got := b.Plans["plan-a"].Status; got != plan.StatusInProgress {
		t.Fatalf("expected the backend to hold IN_PROGRESS, got %s", got)
	}
	if !strings.Contains(m.View(), "IN_PROGRESS") {
		t.Error("expected the list to show the new status")
	}
}

func TestAppStatusChangeRechecksLiveState(t *testing.T) {
	b, m := newTestApp(t)
	p := b.Plans["plan-a"]
	p.EquipmentBooked = true
	p.AppointmentConfirmed = true

	m = step(t, m, m.Init()())

	// Another operator starts plan-b after the list was loaded. The cached
	// rows still show no active plan, so the start request must be rejected
	// by the recheck against fresh backend state, not waved through.
	b.Plans["plan-b"].Status = plan.StatusInProgress

	m = stepCmd(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})

	if got := b.Plans["plan-a"].Status; got != plan.StatusScheduled {
		t.Fatalf("plan-a must stay SCHEDULED, got %s", got)
	}
	if !strings.Contains(m.View(), "another plan is already in progress") {
		t.Errorf("expected the single-active-plan rejection notice, got:\n%s", m.View())
	}
}
