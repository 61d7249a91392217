package models

import (
	"time"

	id "presence/pkg/domain"
)

// Action is what an audit entry records.
type Action string

const (
	ActionVerificationEvaluated Action = "verification_evaluated"
	ActionStatusOverridden      Action = "status_overridden"
)

// AuditEntry is an immutable record of one state change of an attendance
// record. Stores only append entries.
type AuditEntry struct {
	ID              id.AuditEntryID `json:"id"`
	AttendanceID    id.AttendanceID `json:"attendance_id"`
	ActorID         id.UserID       `json:"actor_id"`
	Action          Action          `json:"action"`
	PreviousStatus  Status          `json:"previous_status"`
	NewStatus       Status          `json:"new_status"`
	EffectiveStatus Status          `json:"effective_status"`
	Reason          string          `json:"reason,omitempty"`
	RequestID       string          `json:"request_id,omitempty"`
	Device          string          `json:"device,omitempty"`
	ClientIP        string          `json:"client_ip,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
}

// NewAuditEntry describes the transition of record from previous to its
// current state, performed by actor.
func NewAuditEntry(record *Record, action Action, previous Status, actor id.UserID, reason string, now time.Time) *AuditEntry {
	return &AuditEntry{
		ID:              id.NewAuditEntryID(),
		AttendanceID:    record.ID,
		ActorID:         actor,
		Action:          action,
		PreviousStatus:  previous,
		NewStatus:       record.Status,
		EffectiveStatus: record.EffectiveStatus,
		Reason:          reason,
		Timestamp:       now,
	}
}
