// Package reconcile computes and applies the difference between a plan's
// persisted container assignments and an in-progress edit.
package reconcile

import (
	"sort"

	"github.com/harborops/stevedore/internal/plan"
)

// ChangeKind classifies how a container was touched by an edit session.
type ChangeKind string

// Change kinds
const (
	ChangeAdd    ChangeKind = "add"
	ChangeUpdate ChangeKind = "update"
	ChangeRemove ChangeKind = "remove"
)

// Assignment is a container's persisted selection captured at edit-session
// start. A container counts as assigned only when its join-row ID is set,
// not merely because an entry exists.
type Assignment struct {
	PlanContainerID string
	Label           string
	UnitIDs         []string
}

// ChangeRecord is one computed diff entry. Records are never persisted; they
// exist only between classification and apply.
type ChangeRecord struct {
	OrderContainerID string
	PlanContainerID  string
	Label            string
	Kind             ChangeKind
	UnitIDs          []string
}

// Snapshot captures the plan's current per-container selections, keyed by
// order-container ID. Taken once when an edit session opens and used as the
// baseline for classification.
func Snapshot(p *plan.Plan) map[string]Assignment {
	original := make(map[string]Assignment)
	if p == nil {
		return original
	}
	for i := range p.Containers {
		c := &p.Containers[i]
		original[c.OrderContainer.ID] = Assignment{
			PlanContainerID: c.ID,
			Label:           c.Label(),
			UnitIDs:         c.UnitIDs(),
		}
	}
	return original
}

// Classify compares the original snapshot against the live selections and
// returns one record per changed container: add for newly selected, remove
// for deselected, update when the cargo-unit set differs. Unchanged
// containers are excluded. Pure function; records follow pool order, with
// assignments that dropped out of the pool appended last.
func Classify(original map[string]Assignment, live map[string][]string, pool []plan.OrderContainer) []ChangeRecord {
	var records []ChangeRecord
	seen := make(map[string]bool, len(pool))

	for i := range pool {
		oc := &pool[i]
		seen[oc.ID] = true
		if record, changed := classifyOne(oc.ID, oc.Label(), original, live); changed {
			records = append(records, record)
		}
	}

	// Containers with a prior assignment that are no longer in the candidate
	// pool (for example, a container whose cargo units have since been
	// withdrawn) can only surface as removals.
	var orphans []string
	for id := range original {
		if !seen[id] {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)
	for _, id := range orphans {
		if record, changed := classifyOne(id, original[id].Label, original, live); changed {
			records = append(records, record)
		}
	}

	return records
}

func classifyOne(containerID, label string, original map[string]Assignment, live map[string][]string) (ChangeRecord, bool) {
	prior := original[containerID]
	wasAssigned := prior.PlanContainerID != ""
	liveUnits, isSelected := live[containerID]

	switch {
	case isSelected && !wasAssigned:
		return ChangeRecord{
			OrderContainerID: containerID,
			Label:            label,
			Kind:             ChangeAdd,
			UnitIDs:          liveUnits,
		}, true
	case isSelected && wasAssigned && !sameIDSet(prior.UnitIDs, liveUnits):
		return ChangeRecord{
			OrderContainerID: containerID,
			PlanContainerID:  prior.PlanContainerID,
			Label:            label,
			Kind:             ChangeUpdate,
			UnitIDs:          liveUnits,
		}, true
	case !isSelected && wasAssigned:
		return ChangeRecord{
			OrderContainerID: containerID,
			PlanContainerID:  prior.PlanContainerID,
			Label:            label,
			Kind:             ChangeRemove,
		}, true
	}
	return ChangeRecord{}, false
}

// sameIDSet compares two ID lists as unordered sets: equal size and equal
// membership, order ignored.
func sameIDSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	members := make(map[string]bool, len(a))
	for _, id := range a {
		members[id] = true
	}
	for _, id := range b {
		if !members[id] {
			return false
		}
	}
	return true
}
