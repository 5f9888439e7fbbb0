package plan

import (
	"fmt"
	"strings"
)

// GuardReport lists the containers blocking a plan from entering execution,
// split by the policy that blocks them. Labels are deduplicated.
type GuardReport struct {
	DestuffingBlocked   []string
	CargoReleaseBlocked []string
}

// Blocked reports whether any guard list is non-empty.
func (r GuardReport) Blocked() bool {
	return len(r.DestuffingBlocked) > 0 || len(r.CargoReleaseBlocked) > 0
}

// Explain builds the user-facing message for the violated guards. Empty when
// nothing is blocked.
func (r GuardReport) Explain() string {
	var parts []string
	if len(r.DestuffingBlocked) > 0 {
		parts = append(parts, fmt.Sprintf(
			"destuffing is not allowed for: %s", strings.Join(r.DestuffingBlocked, ", ")))
	}
	if len(r.CargoReleaseBlocked) > 0 {
		parts = append(parts, fmt.Sprintf(
			"cargo release is not approved for: %s", strings.Join(r.CargoReleaseBlocked, ", ")))
	}
	return strings.Join(parts, "; ")
}

// EvaluateGuards inspects every container of the plan against the two
// blocking policies. Safe to call on a nil plan.
func EvaluateGuards(p *Plan) GuardReport {
	var report GuardReport
	if p == nil {
		return report
	}

	seenDestuffing := make(map[string]bool)
	seenRelease := make(map[string]bool)

	for i := range p.Containers {
		c := &p.Containers[i]
		label := c.Label()

		if !c.OrderContainer.AllowStuffingOrDestuffing && !seenDestuffing[label] {
			seenDestuffing[label] = true
			report.DestuffingBlocked = append(report.DestuffingBlocked, label)
		}
		if !c.OrderContainer.ReleaseApproved() && !seenRelease[label] {
			seenRelease[label] = true
			report.CargoReleaseBlocked = append(report.CargoReleaseBlocked, label)
		}
	}
	return report
}

// ExecutionDecision is the outcome of the execution-entry guard.
type ExecutionDecision struct {
	Allowed bool
	Reason  string
}

// CanEnterExecution evaluates every precondition for moving a plan into
// IN_PROGRESS: both prerequisite flags, the container guards, and the
// single-active-plan constraint. The caller must pass a freshly fetched plan
// and a live count of other IN_PROGRESS plans; blocking conditions change
// out-of-band, so cached state must not be trusted here.
//
// The in-progress count is a best-effort client-side check: two operators
// acting at the same instant can both observe zero and race past it. The
// backend has no uniqueness constraint for this.
func CanEnterExecution(p *Plan, activeInProgress int) ExecutionDecision {
	if p == nil {
		return ExecutionDecision{Reason: "no plan selected"}
	}

	var reasons []string
	if !p.EquipmentBooked {
		reasons = append(reasons, "equipment is not booked")
	}
	if !p.AppointmentConfirmed {
		reasons = append(reasons, "appointment is not confirmed")
	}
	if report := EvaluateGuards(p); report.Blocked() {
		reasons = append(reasons, report.Explain())
	}
	if activeInProgress > 0 {
		reasons = append(reasons, "another plan is already in progress")
	}

	if len(reasons) > 0 {
		return ExecutionDecision{Reason: strings.Join(reasons, "; ")}
	}
	return ExecutionDecision{Allowed: true}
}
