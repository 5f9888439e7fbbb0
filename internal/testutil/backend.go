// Package testutil provides testing doubles for the stevedore project.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/harborops/stevedore/internal/plan"
	"github.com/harborops/stevedore/internal/reconcile"
)

// FakeBackend is an in-memory yard-management backend. Successful mutations
// are applied to the stored plans so a fetch after a save observes them, the
// way the real backend would. Safe for concurrent use; removals fan out.
type FakeBackend struct {
	mu         sync.Mutex
	Plans      map[string]*plan.Plan
	Containers []plan.OrderContainer

	// Error injection, keyed by order-container ID (assign) and
	// plan-container ID (unassign). FailAssign rejects any batch containing
	// the key.
	FailAssign   map[string]error
	FailUnassign map[string]error

	// Call records.
	AssignCalls   [][]reconcile.ContainerAssignment
	UnassignCalls []string

	// OnAssign, when set, runs inside every assign call. Used to provoke
	// re-entrancy.
	OnAssign func()
}

// NewFakeBackend creates an empty fake backend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{Plans: make(map[string]*plan.Plan)}
}

// AddPlan stores a plan.
func (f *FakeBackend) AddPlan(p *plan.Plan) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Plans[p.ID] = p
}

// FetchPlan returns a copy of the stored plan.
func (f *FakeBackend) FetchPlan(_ context.Context, planID string) (*plan.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Plans[planID]
	if !ok {
		return nil, fmt.Errorf("plan %s not found", planID)
	}
	return copyPlan(p), nil
}

// ListPlans returns copies of all stored plans, ordered by ID.
func (f *FakeBackend) ListPlans(_ context.Context) ([]plan.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.Plans))
	for id := range f.Plans {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	plans := make([]plan.Plan, 0, len(ids))
	for _, id := range ids {
		plans = append(plans, *copyPlan(f.Plans[id]))
	}
	return plans, nil
}

// ListForwarderContainers returns the configured container pool.
func (f *FakeBackend) ListForwarderContainers(_ context.Context, _ string) ([]plan.OrderContainer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]plan.OrderContainer(nil), f.Containers...), nil
}

// AssignContainers appends plan containers for every assignment in the
// batch, generating join-row IDs of the form pc-<order-container-id>.
func (f *FakeBackend) AssignContainers(_ context.Context, planID string, assignments []reconcile.ContainerAssignment) error {
	if f.OnAssign != nil {
		f.OnAssign()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.AssignCalls = append(f.AssignCalls, assignments)

	for _, a := range assignments {
		if err, ok := f.FailAssign[a.OrderContainerID]; ok {
			return err
		}
	}

	p, ok := f.Plans[planID]
	if !ok {
		return fmt.Errorf("plan %s not found", planID)
	}
	for _, a := range assignments {
		oc := f.container(a.OrderContainerID)
		units := make([]plan.CargoUnit, 0, len(a.UnitIDs))
		for _, uid := range a.UnitIDs {
			units = append(units, unitFor(oc, uid))
		}
		p.Containers = append(p.Containers, plan.PlanContainer{
			ID:             "pc-" + a.OrderContainerID,
			OrderContainer: oc,
			CargoUnits:     units,
		})
	}
	return nil
}

// UnassignContainer removes the plan container with the given join-row ID.
func (f *FakeBackend) UnassignContainer(_ context.Context, planID, planContainerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UnassignCalls = append(f.UnassignCalls, planContainerID)

	if err, ok := f.FailUnassign[planContainerID]; ok {
		return err
	}

	p, ok := f.Plans[planID]
	if !ok {
		return fmt.Errorf("plan %s not found", planID)
	}
	kept := p.Containers[:0]
	for _, c := range p.Containers {
		if c.ID != planContainerID {
			kept = append(kept, c)
		}
	}
	p.Containers = kept
	return nil
}

// UpdatePlanHeader applies the header to the stored plan.
func (f *FakeBackend) UpdatePlanHeader(_ context.Context, planID string, header plan.Header) (*plan.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Plans[planID]
	if !ok {
		return nil, fmt.Errorf("plan %s not found", planID)
	}
	p.PlannedStart = header.PlannedStart
	p.PlannedEnd = header.PlannedEnd
	p.EquipmentBooked = header.EquipmentBooked
	p.AppointmentConfirmed = header.AppointmentConfirmed
	return copyPlan(p), nil
}

// UpdatePlanStatus sets the stored plan's status.
func (f *FakeBackend) UpdatePlanStatus(_ context.Context, planID string, status plan.Status) (*plan.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Plans[planID]
	if !ok {
		return nil, fmt.Errorf("plan %s not found", planID)
	}
	p.Status = status
	return copyPlan(p), nil
}

func (f *FakeBackend) container(orderContainerID string) plan.OrderContainer {
	for _, oc := range f.Containers {
		if oc.ID == orderContainerID {
			return oc
		}
	}
	return plan.OrderContainer{ID: orderContainerID}
}

func unitFor(oc plan.OrderContainer, unitID string) plan.CargoUnit {
	for _, u := range oc.CargoUnits {
		if u.UnitID == unitID {
			return u
		}
	}
	return plan.CargoUnit{UnitID: unitID}
}

func copyPlan(p *plan.Plan) *plan.Plan {
	dup := *p
	dup.Containers = append([]plan.PlanContainer(nil), p.Containers...)
	return &dup
}
