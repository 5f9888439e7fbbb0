package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// stubBackend records calls and fails the operations named in failAssign and
// failUnassign. Safe for concurrent use; removals fan out.
type stubBackend struct {
	mu            sync.Mutex
	assignCalls   [][]ContainerAssignment
	unassignCalls []string
	failAssign    map[string]error // keyed by first order-container ID in the batch
	failUnassign  map[string]error // keyed by plan-container ID
}

func (s *stubBackend) AssignContainers(_ context.Context, planID string, assignments []ContainerAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignCalls = append(s.assignCalls, assignments)
	if len(assignments) > 0 {
		if err, ok := s.failAssign[assignments[0].OrderContainerID]; ok {
			return err
		}
	}
	return nil
}

func (s *stubBackend) UnassignContainer(_ context.Context, planID, planContainerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unassignCalls = append(s.unassignCalls, planContainerID)
	if err, ok := s.failUnassign[planContainerID]; ok {
		return err
	}
	return nil
}

func TestApply_MissingPlanID(t *testing.T) {
	_, err := Apply(context.Background(), &stubBackend{}, "", []ChangeRecord{
		{OrderContainerID: "oc-1", Kind: ChangeAdd},
	})
	if !errors.Is(err, ErrMissingPlanID) {
		t.Errorf("got %v, want ErrMissingPlanID", err)
	}
}

func TestApply_AdditionsAreBatched(t *testing.T) {
	backend := &stubBackend{}
	records := []ChangeRecord{
		{OrderContainerID: "oc-1", Label: "MSKU1", Kind: ChangeAdd, UnitIDs: []string{"u1"}},
		{OrderContainerID: "oc-2", Label: "MSKU2", Kind: ChangeAdd, UnitIDs: []string{"u2"}},
	}

	report, err := Apply(context.Background(), backend, "plan-1", records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(backend.assignCalls) != 1 {
		t.Fatalf("got %d assign calls, want one batched call", len(backend.assignCalls))
	}
	if len(backend.assignCalls[0]) != 2 {
		t.Errorf("batch must carry both additions, got %v", backend.assignCalls[0])
	}
	if len(report.Outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(report.Outcomes))
	}
	for _, o := range report.Outcomes {
		if o.Kind != ChangeAdd || o.Status != OutcomeFulfilled {
			t.Errorf("unexpected outcome: %+v", o)
		}
	}
}

func TestApply_BatchFailureRejectsEveryAddition(t *testing.T) {
	backend := &stubBackend{failAssign: map[string]error{"oc-1": errors.New("boom")}}
	records := []ChangeRecord{
		{OrderContainerID: "oc-1", Label: "MSKU1", Kind: ChangeAdd},
		{OrderContainerID: "oc-2", Label: "MSKU2", Kind: ChangeAdd},
	}

	report, err := Apply(context.Background(), backend, "plan-1", records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(report.Outcomes))
	}
	for _, o := range report.Outcomes {
		if o.Status != OutcomeRejected || o.Err != "boom" {
			t.Errorf("every addition must share the batch error: %+v", o)
		}
	}
	// No individual retries.
	if len(backend.assignCalls) != 1 {
		t.Errorf("got %d assign calls, want 1", len(backend.assignCalls))
	}
}

func TestApply_UpdateReleasesThenReassigns(t *testing.T) {
	backend := &stubBackend{}
	records := []ChangeRecord{{
		OrderContainerID: "oc-1",
		PlanContainerID:  "pc-1",
		Label:            "MSKU1",
		Kind:             ChangeUpdate,
		UnitIDs:          []string{"u1", "u2", "u3"},
	}}

	report, err := Apply(context.Background(), backend, "plan-1", records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(backend.unassignCalls) != 1 || backend.unassignCalls[0] != "pc-1" {
		t.Fatalf("expected one release of pc-1, got %v", backend.unassignCalls)
	}
	if len(backend.assignCalls) != 1 {
		t.Fatalf("expected one re-assign, got %d", len(backend.assignCalls))
	}

	if len(report.Outcomes) != 2 {
		t.Fatalf("got %d outcomes, want release + re-add", len(report.Outcomes))
	}
	if report.Outcomes[0].Kind != ChangeUpdate || report.Outcomes[0].Status != OutcomeFulfilled {
		t.Errorf("first outcome must be the fulfilled release: %+v", report.Outcomes[0])
	}
	if report.Outcomes[1].Kind != ChangeAdd || report.Outcomes[1].Status != OutcomeFulfilled {
		t.Errorf("second outcome must be the fulfilled re-add: %+v", report.Outcomes[1])
	}
}

func TestApply_FailedReleaseSkipsReadd(t *testing.T) {
	backend := &stubBackend{failUnassign: map[string]error{"pc-1": errors.New("locked")}}
	records := []ChangeRecord{{
		OrderContainerID: "oc-1",
		PlanContainerID:  "pc-1",
		Label:            "MSKU1",
		Kind:             ChangeUpdate,
		UnitIDs:          []string{"u1"},
	}}

	report, err := Apply(context.Background(), backend, "plan-1", records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(backend.assignCalls) != 0 {
		t.Error("re-add must be skipped when the release fails")
	}
	if len(report.Outcomes) != 1 {
		t.Fatalf("got %d outcomes, want exactly one rejected update", len(report.Outcomes))
	}
	o := report.Outcomes[0]
	if o.Kind != ChangeUpdate || o.Status != OutcomeRejected || o.Err != "locked" {
		t.Errorf("unexpected outcome: %+v", o)
	}
}

func TestApply_FailedUpdateDoesNotBlockNextUpdate(t *testing.T) {
	backend := &stubBackend{failUnassign: map[string]error{"pc-1": errors.New("locked")}}
	records := []ChangeRecord{
		{OrderContainerID: "oc-1", PlanContainerID: "pc-1", Label: "MSKU1", Kind: ChangeUpdate, UnitIDs: []string{"u1"}},
		{OrderContainerID: "oc-2", PlanContainerID: "pc-2", Label: "MSKU2", Kind: ChangeUpdate, UnitIDs: []string{"u2"}},
	}

	report, err := Apply(context.Background(), backend, "plan-1", records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Release of pc-2 and its re-add still happen.
	if len(backend.unassignCalls) != 2 {
		t.Errorf("got %d releases, want 2", len(backend.unassignCalls))
	}
	if len(backend.assignCalls) != 1 {
		t.Errorf("got %d re-assigns, want 1", len(backend.assignCalls))
	}
	if len(report.Outcomes) != 3 {
		t.Errorf("got %d outcomes, want 3", len(report.Outcomes))
	}
}

func TestApply_RemovalIndependence(t *testing.T) {
	backend := &stubBackend{failUnassign: map[string]error{"pc-2": errors.New("gone")}}
	var records []ChangeRecord
	for i := 1; i <= 3; i++ {
		records = append(records, ChangeRecord{
			OrderContainerID: fmt.Sprintf("oc-%d", i),
			PlanContainerID:  fmt.Sprintf("pc-%d", i),
			Label:            fmt.Sprintf("MSKU%d", i),
			Kind:             ChangeRemove,
		})
	}

	report, err := Apply(context.Background(), backend, "plan-1", records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(backend.unassignCalls) != 3 {
		t.Errorf("every removal must be attempted, got %v", backend.unassignCalls)
	}
	if len(report.Outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(report.Outcomes))
	}
	// Outcomes keep record order even though the calls fan out.
	for i, o := range report.Outcomes {
		want := fmt.Sprintf("MSKU%d", i+1)
		if o.Label != want || o.Kind != ChangeRemove {
			t.Errorf("outcome %d: got %+v, want label %s", i, o, want)
		}
	}
	if report.Outcomes[1].Status != OutcomeRejected {
		t.Error("failed removal must be rejected")
	}
	if report.Outcomes[0].Status != OutcomeFulfilled || report.Outcomes[2].Status != OutcomeFulfilled {
		t.Error("sibling removals must not be suppressed by one failure")
	}
}

func TestApply_PhaseOrder(t *testing.T) {
	backend := &stubBackend{}
	records := []ChangeRecord{
		{OrderContainerID: "oc-r", PlanContainerID: "pc-r", Label: "REMOVE", Kind: ChangeRemove},
		{OrderContainerID: "oc-u", PlanContainerID: "pc-u", Label: "UPDATE", Kind: ChangeUpdate, UnitIDs: []string{"u1"}},
		{OrderContainerID: "oc-a", Label: "ADD", Kind: ChangeAdd, UnitIDs: []string{"u2"}},
	}

	report, err := Apply(context.Background(), backend, "plan-1", records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []struct {
		label string
		kind  ChangeKind
	}{
		{"ADD", ChangeAdd},
		{"UPDATE", ChangeUpdate},
		{"UPDATE", ChangeAdd},
		{"REMOVE", ChangeRemove},
	}
	if len(report.Outcomes) != len(want) {
		t.Fatalf("got %d outcomes, want %d", len(report.Outcomes), len(want))
	}
	for i, w := range want {
		o := report.Outcomes[i]
		if o.Label != w.label || o.Kind != w.kind {
			t.Errorf("outcome %d: got %s/%s, want %s/%s", i, o.Label, o.Kind, w.label, w.kind)
		}
	}
}

func TestReport_Summary(t *testing.T) {
	report := &Report{Outcomes: []Outcome{
		{Label: "MSKU1", Kind: ChangeAdd, Status: OutcomeFulfilled},
		{Label: "MSKU2", Kind: ChangeUpdate, Status: OutcomeRejected, Err: "locked"},
		{Label: "MSKU2", Kind: ChangeAdd, Status: OutcomeRejected, Err: "refused"},
		{Label: "MSKU3", Kind: ChangeRemove, Status: OutcomeRejected, Err: "gone"},
	}}

	if got := report.Succeeded(); got != 1 {
		t.Errorf("Succeeded() = %d, want 1", got)
	}
	if got := report.Failed(); got != 3 {
		t.Errorf("Failed() = %d, want 3", got)
	}

	groups := report.Failures()
	if len(groups) != 2 {
		t.Fatalf("got %d failure groups, want 2", len(groups))
	}
	if groups[0].Label != "MSKU2" || len(groups[0].Messages) != 2 {
		t.Errorf("unexpected group: %+v", groups[0])
	}
	if groups[1].Label != "MSKU3" || groups[1].Messages[0] != "gone" {
		t.Errorf("unexpected group: %+v", groups[1])
	}
}
