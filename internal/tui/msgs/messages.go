// Package msgs defines shared message types for TUI view transitions.
package msgs

import (
	"github.com/harborops/stevedore/internal/plan"
	"github.com/harborops/stevedore/internal/reconcile"
	"github.com/harborops/stevedore/internal/session"
)

// GoToPlanListMsg signals transition to the plan list view.
type GoToPlanListMsg struct{}

// PlansLoadedMsg carries the result of fetching the plan list.
type PlansLoadedMsg struct {
	Plans []plan.Plan
	Err   error
}

// OpenPlanMsg is sent when the user picks a plan to edit.
type OpenPlanMsg struct {
	Plan *plan.Plan
}

// SessionOpenedMsg is sent when an edit session finished loading.
type SessionOpenedMsg struct {
	Session *session.Session
	Err     error
}

// SaveDoneMsg carries the outcome of a save. Err is set only for hard
// failures; partial rejections live in the report.
type SaveDoneMsg struct {
	Report *reconcile.Report
	Err    error
}

// SwitchConfirmedMsg is sent after the user discarded the current edit in
// favor of another plan.
type SwitchConfirmedMsg struct {
	Plan *plan.Plan
}

// RequestStatusChangeMsg asks the app to apply a validated lifecycle
// transition through the backend.
type RequestStatusChangeMsg struct {
	Plan *plan.Plan
	To   plan.Status
}

// StatusChangedMsg is sent after a lifecycle transition was applied.
type StatusChangedMsg struct {
	Plan *plan.Plan
	Err  error
}
