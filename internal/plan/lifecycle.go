package plan

import "fmt"

// transitions is the full set of valid lifecycle edges. A plan is created as
// SCHEDULED; DONE and PENDING are not terminal (PENDING reactivates through
// IN_PROGRESS).
var transitions = map[Status][]Status{
	StatusScheduled:  {StatusInProgress},
	StatusInProgress: {StatusScheduled, StatusDone, StatusPending},
	StatusPending:    {StatusInProgress},
	StatusDone:       {},
}

// ValidStatus reports whether s is a known plan status.
func ValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether the lifecycle edge from -> to exists,
// ignoring guards.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionError describes a rejected lifecycle transition. The plan status
// is left unchanged and no remote call may be made when it is returned.
type TransitionError struct {
	From   Status
	To     Status
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot move plan from %s to %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("invalid plan transition %s -> %s", e.From, e.To)
}

// ValidateTransition checks a lifecycle transition for the given plan.
// Entering IN_PROGRESS additionally runs the execution-entry guard against
// the plan and the live count of other in-progress plans. All other valid
// edges are unguarded.
func ValidateTransition(p *Plan, to Status, activeInProgress int) error {
	if p == nil {
		return fmt.Errorf("no plan to transition")
	}
	if !CanTransition(p.Status, to) {
		return &TransitionError{From: p.Status, To: to}
	}
	if to == StatusInProgress {
		if decision := CanEnterExecution(p, activeInProgress); !decision.Allowed {
			return &TransitionError{From: p.Status, To: to, Reason: decision.Reason}
		}
	}
	return nil
}
