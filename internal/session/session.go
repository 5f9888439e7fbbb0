// Package session holds the state of one plan edit: the working copy of the
// plan, the live container selections, and the save flow that reconciles
// them against the backend.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/harborops/stevedore/internal/plan"
	"github.com/harborops/stevedore/internal/reconcile"
)

// Session errors
var (
	// ErrSaveInFlight is returned when Save is called while a previous save
	// has not finished. The save control must stay disabled for the
	// duration; a reconciliation in flight cannot be cancelled or repeated.
	ErrSaveInFlight = errors.New("session: a save is already in progress")

	// ErrNoUnits is returned when toggling on a container that has no cargo
	// units available.
	ErrNoUnits = errors.New("session: container has no cargo units to assign")

	// ErrHeaderLocked is returned for header edits on a plan whose
	// execution has started.
	ErrHeaderLocked = errors.New("session: plan header is locked once execution has started")
)

// Backend is everything the edit session needs from the yard-management API.
// *backend.Client satisfies it.
type Backend interface {
	FetchPlan(ctx context.Context, planID string) (*plan.Plan, error)
	ListForwarderContainers(ctx context.Context, forwarderID string) ([]plan.OrderContainer, error)
	UpdatePlanHeader(ctx context.Context, planID string, header plan.Header) (*plan.Plan, error)
	AssignContainers(ctx context.Context, planID string, assignments []reconcile.ContainerAssignment) error
	UnassignContainer(ctx context.Context, planID, planContainerID string) error
}

// Session is one plan edit in progress. The plan and pool are a read-mostly
// cache of backend state: never mutated in place, only replaced by a refetch
// after a save. Not safe for concurrent use; the console drives it from a
// single loop.
type Session struct {
	backend     Backend
	audit       *AuditLog
	forwarderID string

	plan       *plan.Plan
	pool       []plan.OrderContainer
	original   map[string]reconcile.Assignment
	selections map[string][]string

	header      plan.Header
	headerDirty bool
	saving      bool
	pending     *plan.Plan
}

// Open starts an edit session on the given plan: fetches the authoritative
// plan state and the pool of the plan's forwarder, and snapshots the current
// assignments as the diff baseline.
func Open(ctx context.Context, b Backend, audit *AuditLog, planID string) (*Session, error) {
	if planID == "" {
		return nil, fmt.Errorf("session: plan id is required")
	}

	p, err := b.FetchPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("session: loading plan: %w", err)
	}
	pool, err := b.ListForwarderContainers(ctx, p.ForwarderID)
	if err != nil {
		return nil, fmt.Errorf("session: loading container pool: %w", err)
	}

	s := &Session{
		backend:     b,
		audit:       audit,
		forwarderID: p.ForwarderID,
	}
	s.adopt(p, pool)
	audit.SessionOpened(planID)
	return s, nil
}

// adopt replaces the session's cached plan and pool and rebuilds the diff
// baseline and live selections from them.
func (s *Session) adopt(p *plan.Plan, pool []plan.OrderContainer) {
	s.plan = p
	s.pool = pool
	s.original = reconcile.Snapshot(p)
	s.header = p.Header()
	s.headerDirty = false

	// Selecting a container is all-or-nothing at the unit level, so the live
	// selection for every assigned container is the container's full current
	// unit list. When units changed out-of-band since the assignment was
	// persisted, this immediately surfaces as an update delta. A container
	// whose full unit list has shrunk to zero is excluded here: it cannot be
	// selected anymore, so its only remaining edit is a removal.
	s.selections = make(map[string][]string)
	for i := range pool {
		oc := &pool[i]
		if len(oc.CargoUnits) == 0 {
			continue
		}
		if _, assigned := s.original[oc.ID]; assigned {
			s.selections[oc.ID] = oc.UnitIDs()
		}
	}
	for id, assignment := range s.original {
		if _, ok := s.selections[id]; !ok && assignment.PlanContainerID != "" {
			// Assigned container missing from the pool, or left without
			// available units: keep its persisted selection so the session
			// opens clean and deselecting it classifies as a removal.
			s.selections[id] = assignment.UnitIDs
		}
	}
}

// Plan returns the currently displayed plan.
func (s *Session) Plan() *plan.Plan {
	return s.plan
}

// Pool returns the candidate container pool.
func (s *Session) Pool() []plan.OrderContainer {
	return s.pool
}

// Header returns the session's working header values.
func (s *Session) Header() plan.Header {
	return s.header
}

// Saving reports whether a save is in flight.
func (s *Session) Saving() bool {
	return s.saving
}

// Selected reports whether the container is included in the edit.
func (s *Session) Selected(orderContainerID string) bool {
	_, ok := s.selections[orderContainerID]
	return ok
}

// ToggleContainer flips a container in or out of the plan. Selecting is
// all-or-nothing: the container comes in with its full cargo-unit list. A
// container without units cannot be selected.
func (s *Session) ToggleContainer(orderContainerID string) error {
	if s.Selected(orderContainerID) {
		delete(s.selections, orderContainerID)
		return nil
	}
	for i := range s.pool {
		oc := &s.pool[i]
		if oc.ID != orderContainerID {
			continue
		}
		if len(oc.CargoUnits) == 0 {
			return ErrNoUnits
		}
		s.selections[orderContainerID] = oc.UnitIDs()
		return nil
	}
	return fmt.Errorf("session: unknown container %s", orderContainerID)
}

// SetHeader stages new schedule and prerequisite values. Rejected once the
// plan has left SCHEDULED.
func (s *Session) SetHeader(h plan.Header) error {
	if !s.plan.Editable() {
		return ErrHeaderLocked
	}
	if h != s.plan.Header() {
		s.headerDirty = true
	} else {
		s.headerDirty = false
	}
	s.header = h
	return nil
}

// Changes classifies the session's outstanding container deltas. Empty right
// after open and right after a fully successful save.
func (s *Session) Changes() []reconcile.ChangeRecord {
	return reconcile.Classify(s.original, s.selections, s.pool)
}

// Dirty reports whether the session holds unsaved edits.
func (s *Session) Dirty() bool {
	return s.headerDirty || len(s.Changes()) > 0
}

// Save persists the session's edits: the header first when it changed, then
// the container change set through the reconciliation orchestrator. The
// report carries per-container outcomes; partial failure is normal and not
// an error. Afterwards the plan and pool are refetched so the session
// reflects authoritative backend state, and remaining deltas (from failed
// mutations) stay visible as changes.
func (s *Session) Save(ctx context.Context) (*reconcile.Report, error) {
	if s.saving {
		return nil, ErrSaveInFlight
	}
	s.saving = true
	defer func() { s.saving = false }()

	records := s.Changes()
	if len(records) == 0 && !s.headerDirty {
		s.audit.Log(EventSaveSkipped, map[string]interface{}{"plan_id": s.plan.ID})
		return &reconcile.Report{}, nil
	}
	s.audit.SaveStarted(s.plan.ID, len(records))

	if s.headerDirty {
		if _, err := s.backend.UpdatePlanHeader(ctx, s.plan.ID, s.header); err != nil {
			return nil, fmt.Errorf("session: saving plan header: %w", err)
		}
		s.headerDirty = false
	}

	report, err := reconcile.Apply(ctx, s.backend, s.plan.ID, records)
	if err != nil {
		return nil, err
	}

	if err := s.refresh(ctx); err != nil {
		// The mutations went out; surface the report even when the refresh
		// fails so outcomes are not lost.
		s.audit.SaveFinished(s.plan.ID, report.Succeeded(), report.Failed())
		return report, fmt.Errorf("session: refreshing after save: %w", err)
	}

	s.audit.SaveFinished(s.plan.ID, report.Succeeded(), report.Failed())
	return report, nil
}

// refresh replaces the cached plan and pool with fresh backend state. The
// selections the user had are re-derived from what actually persisted.
func (s *Session) refresh(ctx context.Context) error {
	p, err := s.backend.FetchPlan(ctx, s.plan.ID)
	if err != nil {
		return err
	}
	pool, err := s.backend.ListForwarderContainers(ctx, s.forwarderID)
	if err != nil {
		return err
	}
	s.adopt(p, pool)
	return nil
}

// RequestSwitch asks to move the session to another plan. With no unsaved
// edits (or the same plan) the switch is free: the caller should open a new
// session on the target. With unsaved edits the switch is held pending and
// the session stays on the displayed plan until the user explicitly resolves
// it with ConfirmSwitch or CancelSwitch; edits are never silently dropped or
// applied to the wrong plan.
func (s *Session) RequestSwitch(target *plan.Plan) bool {
	if target == nil || target.ID == s.plan.ID {
		return true
	}
	if !s.Dirty() {
		return true
	}
	s.pending = target
	return false
}

// PendingSwitch returns the plan a held switch is waiting on, or nil.
func (s *Session) PendingSwitch() *plan.Plan {
	return s.pending
}

// ConfirmSwitch discards the in-progress edit and returns the target plan
// for the caller to open a new session on.
func (s *Session) ConfirmSwitch() *plan.Plan {
	target := s.pending
	if target == nil {
		return nil
	}
	s.pending = nil
	s.audit.EditDiscarded(s.plan.ID, target.ID)
	return target
}

// CancelSwitch drops the pending switch and keeps the displayed plan with
// its in-progress edits intact.
func (s *Session) CancelSwitch() {
	s.pending = nil
}
