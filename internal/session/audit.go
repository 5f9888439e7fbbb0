package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Event type constants for the audit log.
const (
	EventSessionOpened = "session_opened"
	EventSaveStarted   = "save_started"
	EventSaveFinished  = "save_finished"
	EventSaveSkipped   = "save_skipped"
	EventEditDiscarded = "edit_discarded"
	EventStatusChanged = "status_changed"
)

// AuditEvent is a single audit log entry.
type AuditEvent struct {
	Timestamp time.Time              `json:"timestamp"`
	Event     string                 `json:"event"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// AuditLog appends reconciliation events to a JSON Lines file. A nil log
// discards everything, so callers never need to guard their calls.
type AuditLog struct {
	path string
}

// NewAuditLog creates an audit log writing to the given path.
func NewAuditLog(path string) *AuditLog {
	return &AuditLog{path: path}
}

// Log appends one event to the log file.
func (l *AuditLog) Log(event string, data map[string]interface{}) error {
	if l == nil {
		return nil
	}

	entry := AuditEvent{
		Timestamp: time.Now(),
		Event:     event,
		Data:      data,
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	jsonBytes = append(jsonBytes, '\n')

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(jsonBytes)
	return err
}

// SessionOpened logs a session_opened event.
func (l *AuditLog) SessionOpened(planID string) error {
	return l.Log(EventSessionOpened, map[string]interface{}{
		"plan_id": planID,
	})
}

// SaveStarted logs a save_started event.
func (l *AuditLog) SaveStarted(planID string, changes int) error {
	return l.Log(EventSaveStarted, map[string]interface{}{
		"plan_id": planID,
		"changes": changes,
	})
}

// SaveFinished logs a save_finished event with the report totals.
func (l *AuditLog) SaveFinished(planID string, succeeded, failed int) error {
	return l.Log(EventSaveFinished, map[string]interface{}{
		"plan_id":   planID,
		"succeeded": succeeded,
		"failed":    failed,
	})
}

// EditDiscarded logs an edit_discarded event when a dirty session is
// abandoned in favor of another plan.
func (l *AuditLog) EditDiscarded(planID, switchedTo string) error {
	return l.Log(EventEditDiscarded, map[string]interface{}{
		"plan_id":     planID,
		"switched_to": switchedTo,
	})
}

// StatusChanged logs a status_changed event.
func (l *AuditLog) StatusChanged(planID string, from, to string) error {
	return l.Log(EventStatusChanged, map[string]interface{}{
		"plan_id": planID,
		"from":    from,
		"to":      to,
	})
}
