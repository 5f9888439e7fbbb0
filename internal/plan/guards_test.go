package plan

import (
	"strings"
	"testing"
)

func clearContainer(number string) PlanContainer {
	return PlanContainer{
		OrderContainer: OrderContainer{
			ID:                        "oc-" + number,
			Number:                    number,
			AllowStuffingOrDestuffing: true,
			CargoReleaseStatus:        "APPROVED",
		},
	}
}

func readyPlan() *Plan {
	return &Plan{
		ID:                   "plan-1",
		Status:               StatusScheduled,
		EquipmentBooked:      true,
		AppointmentConfirmed: true,
		Containers:           []PlanContainer{clearContainer("MSKU1"), clearContainer("MSKU2")},
	}
}

func TestEvaluateGuards_NilPlan(t *testing.T) {
	report := EvaluateGuards(nil)
	if report.Blocked() {
		t.Error("nil plan must not be blocked")
	}
	if len(report.DestuffingBlocked) != 0 || len(report.CargoReleaseBlocked) != 0 {
		t.Error("nil plan must produce empty lists")
	}
}

func TestEvaluateGuards_CleanPlan(t *testing.T) {
	if report := EvaluateGuards(readyPlan()); report.Blocked() {
		t.Errorf("unexpected block: %v", report.Explain())
	}
}

func TestEvaluateGuards_DestuffingFlag(t *testing.T) {
	p := readyPlan()
	p.Containers[0].OrderContainer.AllowStuffingOrDestuffing = false

	report := EvaluateGuards(p)
	if len(report.DestuffingBlocked) != 1 || report.DestuffingBlocked[0] != "MSKU1" {
		t.Errorf("unexpected destuffing list: %v", report.DestuffingBlocked)
	}
	if len(report.CargoReleaseBlocked) != 0 {
		t.Errorf("unexpected release list: %v", report.CargoReleaseBlocked)
	}
}

func TestEvaluateGuards_CargoRelease(t *testing.T) {
	p := readyPlan()
	p.Containers[1].OrderContainer.CargoReleaseStatus = "on-hold"

	report := EvaluateGuards(p)
	if len(report.CargoReleaseBlocked) != 1 || report.CargoReleaseBlocked[0] != "MSKU2" {
		t.Errorf("unexpected release list: %v", report.CargoReleaseBlocked)
	}
}

func TestEvaluateGuards_UnnormalizedApprovedPasses(t *testing.T) {
	p := readyPlan()
	p.Containers[0].OrderContainer.CargoReleaseStatus = "  approved "

	if report := EvaluateGuards(p); report.Blocked() {
		t.Errorf("unexpected block: %v", report.Explain())
	}
}

func TestEvaluateGuards_DeduplicatesLabels(t *testing.T) {
	p := readyPlan()
	// Two plan containers over the same physical container, both blocked.
	p.Containers[0].OrderContainer.AllowStuffingOrDestuffing = false
	p.Containers[1] = p.Containers[0]

	report := EvaluateGuards(p)
	if len(report.DestuffingBlocked) != 1 {
		t.Errorf("expected deduplicated labels, got %v", report.DestuffingBlocked)
	}
}

func TestEvaluateGuards_PlaceholderLabel(t *testing.T) {
	p := readyPlan()
	p.Containers[0].OrderContainer.Number = ""
	p.Containers[0].OrderContainer.AllowStuffingOrDestuffing = false

	report := EvaluateGuards(p)
	if len(report.DestuffingBlocked) != 1 || report.DestuffingBlocked[0] != "container oc-MSKU1" {
		t.Errorf("unexpected placeholder label: %v", report.DestuffingBlocked)
	}
}

func TestGuardReportExplain_CombinesBothLists(t *testing.T) {
	p := readyPlan()
	p.Containers[0].OrderContainer.AllowStuffingOrDestuffing = false
	p.Containers[1].OrderContainer.CargoReleaseStatus = "HOLD"

	msg := EvaluateGuards(p).Explain()
	if !strings.Contains(msg, "destuffing is not allowed for: MSKU1") {
		t.Errorf("missing destuffing explanation: %q", msg)
	}
	if !strings.Contains(msg, "cargo release is not approved for: MSKU2") {
		t.Errorf("missing release explanation: %q", msg)
	}
}

func TestCanEnterExecution_Allowed(t *testing.T) {
	decision := CanEnterExecution(readyPlan(), 0)
	if !decision.Allowed {
		t.Errorf("expected allowed, got reason %q", decision.Reason)
	}
}

func TestCanEnterExecution_NilPlan(t *testing.T) {
	if decision := CanEnterExecution(nil, 0); decision.Allowed {
		t.Error("nil plan must not be allowed")
	}
}

func TestCanEnterExecution_MissingPrerequisites(t *testing.T) {
	p := readyPlan()
	p.EquipmentBooked = false
	p.AppointmentConfirmed = false

	decision := CanEnterExecution(p, 0)
	if decision.Allowed {
		t.Fatal("expected blocked")
	}
	if !strings.Contains(decision.Reason, "equipment is not booked") {
		t.Errorf("missing equipment reason: %q", decision.Reason)
	}
	if !strings.Contains(decision.Reason, "appointment is not confirmed") {
		t.Errorf("missing appointment reason: %q", decision.Reason)
	}
}

func TestCanEnterExecution_GuardGating(t *testing.T) {
	// Blocked containers win regardless of the prerequisite flags.
	p := readyPlan()
	p.Containers[0].OrderContainer.CargoReleaseStatus = "HOLD"

	decision := CanEnterExecution(p, 0)
	if decision.Allowed {
		t.Fatal("expected blocked by cargo release")
	}
	if !strings.Contains(decision.Reason, "MSKU1") {
		t.Errorf("reason must list the offending container: %q", decision.Reason)
	}
}

func TestCanEnterExecution_SingleActivePlan(t *testing.T) {
	// Even a fully clear plan is blocked while another plan is in progress.
	decision := CanEnterExecution(readyPlan(), 1)
	if decision.Allowed {
		t.Fatal("expected blocked by single-active-plan constraint")
	}
	if !strings.Contains(decision.Reason, "already in progress") {
		t.Errorf("unexpected reason: %q", decision.Reason)
	}
}

func TestCountInProgress(t *testing.T) {
	plans := []Plan{
		{Status: StatusScheduled},
		{Status: StatusInProgress},
		{Status: StatusPending},
		{Status: StatusInProgress},
	}
	if got := CountInProgress(plans); got != 2 {
		t.Errorf("got %d, want 2", got)
	}
}
