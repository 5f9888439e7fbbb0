package plan

import "time"

// Plan represents a scheduled destuffing work order.
type Plan struct {
	ID                   string          `json:"id"`
	Status               Status          `json:"status"`
	PlannedStart         time.Time       `json:"plannedStart"`
	PlannedEnd           time.Time       `json:"plannedEnd"`
	ExecutionStart       *time.Time      `json:"executionStart,omitempty"`
	ExecutionEnd         *time.Time      `json:"executionEnd,omitempty"`
	EquipmentBooked      bool            `json:"equipmentBooked"`
	AppointmentConfirmed bool            `json:"appointmentConfirmed"`
	Containers           []PlanContainer `json:"containers"`
	ForwarderID          string          `json:"forwarderId"`
}

// Status is the lifecycle state of a plan.
type Status string

// Plan status constants
const (
	StatusScheduled  Status = "SCHEDULED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
	StatusPending    Status = "PENDING"
)

// Editable reports whether the plan's schedule and prerequisite fields can
// still be changed. Once execution has started the header is locked.
func (p *Plan) Editable() bool {
	return p != nil && p.Status == StatusScheduled
}

// Container returns the plan container holding the given order container,
// or nil if it is not part of the plan.
func (p *Plan) Container(orderContainerID string) *PlanContainer {
	if p == nil {
		return nil
	}
	for i := range p.Containers {
		if p.Containers[i].OrderContainer.ID == orderContainerID {
			return &p.Containers[i]
		}
	}
	return nil
}

// Header is the editable schedule portion of a plan: the planned window and
// the two execution prerequisites. Only editable while the plan is SCHEDULED.
type Header struct {
	PlannedStart         time.Time `json:"plannedStart"`
	PlannedEnd           time.Time `json:"plannedEnd"`
	EquipmentBooked      bool      `json:"equipmentBooked"`
	AppointmentConfirmed bool      `json:"appointmentConfirmed"`
}

// Header returns the plan's current header values.
func (p *Plan) Header() Header {
	return Header{
		PlannedStart:         p.PlannedStart,
		PlannedEnd:           p.PlannedEnd,
		EquipmentBooked:      p.EquipmentBooked,
		AppointmentConfirmed: p.AppointmentConfirmed,
	}
}

// CountInProgress returns how many of the given plans are currently being
// executed. Used by the execution guard's single-active-plan check.
func CountInProgress(plans []Plan) int {
	count := 0
	for i := range plans {
		if plans[i].Status == StatusInProgress {
			count++
		}
	}
	return count
}
