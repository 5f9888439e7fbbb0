package reconcile

import (
	"context"
	"errors"
	"sync"
)

// ErrMissingPlanID is returned when Apply is called without a plan
// identifier. This is the only error Apply itself returns; individual
// mutation failures are recorded in the report instead.
var ErrMissingPlanID = errors.New("reconcile: plan id is required")

// ContainerAssignment is one entry of a batched assign call.
type ContainerAssignment struct {
	OrderContainerID string   `json:"orderContainerId"`
	UnitIDs          []string `json:"unitIds,omitempty"`
}

// Backend is the remote mutation interface the orchestrator drives. The
// transport behind it is owned by the backend client.
type Backend interface {
	AssignContainers(ctx context.Context, planID string, assignments []ContainerAssignment) error
	UnassignContainer(ctx context.Context, planID, planContainerID string) error
}

// OutcomeStatus records whether one mutation attempt succeeded.
type OutcomeStatus string

// Outcome statuses
const (
	OutcomeFulfilled OutcomeStatus = "fulfilled"
	OutcomeRejected  OutcomeStatus = "rejected"
)

// Outcome is the recorded result of a single mutation attempt.
type Outcome struct {
	Label  string
	Kind   ChangeKind
	Status OutcomeStatus
	Err    string
}

// Apply executes a classified change set against the backend and returns the
// per-mutation report. Best effort, no rollback: failures are recorded, never
// propagated, and never abort sibling mutations. The caller must re-fetch the
// plan afterwards instead of trusting its edit buffer.
//
// Ordering is part of the contract:
//   - additions go out as one batched assign call,
//   - updates run strictly sequentially, each releasing its existing join-row
//     before re-assigning; a failed release skips that container's re-add,
//   - removals fan out concurrently, each against an independent join-row,
//
// and the report concatenates outcomes in that phase order.
func Apply(ctx context.Context, backend Backend, planID string, records []ChangeRecord) (*Report, error) {
	if planID == "" {
		return nil, ErrMissingPlanID
	}

	var adds, updates, removes []ChangeRecord
	for _, record := range records {
		switch record.Kind {
		case ChangeAdd:
			adds = append(adds, record)
		case ChangeUpdate:
			updates = append(updates, record)
		case ChangeRemove:
			removes = append(removes, record)
		}
	}

	report := &Report{}
	report.Outcomes = append(report.Outcomes, applyAdditions(ctx, backend, planID, adds)...)
	report.Outcomes = append(report.Outcomes, applyUpdates(ctx, backend, planID, updates)...)
	report.Outcomes = append(report.Outcomes, applyRemovals(ctx, backend, planID, removes)...)
	return report, nil
}

// applyAdditions submits all additions as a single batched assign call. The
// batch succeeds or fails as a whole; there are no per-container retries.
func applyAdditions(ctx context.Context, backend Backend, planID string, adds []ChangeRecord) []Outcome {
	if len(adds) == 0 {
		return nil
	}

	assignments := make([]ContainerAssignment, len(adds))
	for i, record := range adds {
		assignments[i] = ContainerAssignment{
			OrderContainerID: record.OrderContainerID,
			UnitIDs:          record.UnitIDs,
		}
	}

	err := backend.AssignContainers(ctx, planID, assignments)

	outcomes := make([]Outcome, len(adds))
	for i, record := range adds {
		outcomes[i] = outcomeFor(record.Label, ChangeAdd, err)
	}
	return outcomes
}

// applyUpdates processes updates one container at a time. Each update must
// release the container's existing join-row before re-acquiring it; running
// them concurrently would race two mutations against the same container.
// When the release fails the re-add is skipped, because cargo units must not
// be added to a container whose prior assignment was not confirmed released.
func applyUpdates(ctx context.Context, backend Backend, planID string, updates []ChangeRecord) []Outcome {
	var outcomes []Outcome
	for _, record := range updates {
		releaseErr := backend.UnassignContainer(ctx, planID, record.PlanContainerID)
		outcomes = append(outcomes, outcomeFor(record.Label, ChangeUpdate, releaseErr))
		if releaseErr != nil {
			continue
		}

		addErr := backend.AssignContainers(ctx, planID, []ContainerAssignment{{
			OrderContainerID: record.OrderContainerID,
			UnitIDs:          record.UnitIDs,
		}})
		outcomes = append(outcomes, outcomeFor(record.Label, ChangeAdd, addErr))
	}
	return outcomes
}

// applyRemovals submits one unassign call per removed container, all in
// flight at once, and gathers every result regardless of individual
// failures. Outcomes keep the original record order.
func applyRemovals(ctx context.Context, backend Backend, planID string, removes []ChangeRecord) []Outcome {
	if len(removes) == 0 {
		return nil
	}

	outcomes := make([]Outcome, len(removes))
	var wg sync.WaitGroup
	for i, record := range removes {
		wg.Add(1)
		go func(i int, record ChangeRecord) {
			defer wg.Done()
			err := backend.UnassignContainer(ctx, planID, record.PlanContainerID)
			outcomes[i] = outcomeFor(record.Label, ChangeRemove, err)
		}(i, record)
	}
	wg.Wait()
	return outcomes
}

func outcomeFor(label string, kind ChangeKind, err error) Outcome {
	if err != nil {
		return Outcome{Label: label, Kind: kind, Status: OutcomeRejected, Err: err.Error()}
	}
	return Outcome{Label: label, Kind: kind, Status: OutcomeFulfilled}
}
