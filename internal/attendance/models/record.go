package models

import (
	"time"

	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
)

// Record is one verification outcome for a (user, session) pair.
//
// Invariants:
//   - FaceMatchScore is set iff FaceMatch is set
//   - DistanceFromVenue is set iff GPSValid is set, and is non-negative
//   - Status only moves forward (see Status.CanTransitionTo)
//   - DecidedAt is stamped on the first transition out of pending, VerifiedAt
//     only when that transition is an automatic verify; neither changes after
//   - at most one non-overridden record per (user, session), enforced by stores
type Record struct {
	ID                   id.AttendanceID `json:"id"`
	UserID               id.UserID       `json:"user_id"`
	SessionID            id.SessionID    `json:"session_id"`
	Status               Status          `json:"status"`
	EffectiveStatus      Status          `json:"effective_status"`
	Method               Method          `json:"method"`
	FaceMatchScore       *float64        `json:"face_match_score,omitempty"`
	FaceMatch            *bool           `json:"face_match,omitempty"`
	GPSValid             *bool           `json:"gps_valid,omitempty"`
	DistanceFromVenue    *float64        `json:"distance_from_venue,omitempty"`
	ClaimedLatitude      *float64        `json:"claimed_latitude,omitempty"`
	ClaimedLongitude     *float64        `json:"claimed_longitude,omitempty"`
	WebAuthnUsed         bool            `json:"webauthn_used"`
	WebAuthnCredentialID string          `json:"webauthn_credential_id,omitempty"`
	Reason               string          `json:"reason,omitempty"`
	VerifiedAt           *time.Time      `json:"verified_at,omitempty"`
	DecidedAt            *time.Time      `json:"decided_at,omitempty"`
	OverriddenBy         *id.UserID      `json:"overridden_by,omitempty"`
	OverriddenAt         *time.Time      `json:"overridden_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// NewPendingRecord starts a record for (userID, sessionID).
func NewPendingRecord(userID id.UserID, sessionID id.SessionID, now time.Time) *Record {
	return &Record{
		ID:              id.NewAttendanceID(),
		UserID:          userID,
		SessionID:       sessionID,
		Status:          StatusPending,
		EffectiveStatus: StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Validate checks the structural invariants of the record.
func (r *Record) Validate() error {
	if !r.Status.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "unknown attendance status")
	}
	if (r.FaceMatchScore == nil) != (r.FaceMatch == nil) {
		return dErrors.New(dErrors.CodeInvariantViolation, "face_match_score and face_match must be set together")
	}
	if (r.DistanceFromVenue == nil) != (r.GPSValid == nil) {
		return dErrors.New(dErrors.CodeInvariantViolation, "distance_from_venue and gps_valid must be set together")
	}
	if r.DistanceFromVenue != nil && *r.DistanceFromVenue < 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "distance_from_venue must be non-negative")
	}
	if r.FaceMatchScore != nil && (*r.FaceMatchScore < 0 || *r.FaceMatchScore > 100) {
		return dErrors.New(dErrors.CodeInvariantViolation, "face_match_score must be within [0, 100]")
	}
	return nil
}

// CanDecide checks the record may take an automatic outcome.
func (r *Record) CanDecide(outcome Status) error {
	if !outcome.IsDecided() {
		return dErrors.New(dErrors.CodeInvariantViolation, "automatic outcome must be verified or rejected")
	}
	if r.Status != StatusPending {
		return dErrors.New(dErrors.CodeConflict, "attendance already "+string(r.Status))
	}
	return nil
}

// ApplyDecision moves a pending record to its automatic outcome. Call
// CanDecide first.
func (r *Record) ApplyDecision(outcome Status, reason string, now time.Time) {
	r.Status = outcome
	r.EffectiveStatus = outcome
	r.Reason = reason
	if r.DecidedAt == nil {
		decided := now
		r.DecidedAt = &decided
	}
	if outcome == StatusVerified && r.VerifiedAt == nil {
		verified := now
		r.VerifiedAt = &verified
	}
	r.UpdatedAt = now
}

// CanOverride checks an override may be applied.
func (r *Record) CanOverride(effective Status) error {
	if effective != StatusVerified && effective != StatusRejected {
		return dErrors.New(dErrors.CodeValidation, "status must be verified or rejected")
	}
	if !r.Status.CanTransitionTo(StatusOverridden) {
		return dErrors.New(dErrors.CodeConflict, "attendance already overridden")
	}
	return nil
}

// ApplyOverride records an administrator's determination. The automatic
// outcome stays in the audit trail; VerifiedAt is left as is. Call
// CanOverride first.
func (r *Record) ApplyOverride(effective Status, actor id.UserID, now time.Time) {
	r.Status = StatusOverridden
	r.EffectiveStatus = effective
	r.OverriddenBy = &actor
	at := now
	r.OverriddenAt = &at
	if r.DecidedAt == nil {
		decided := now
		r.DecidedAt = &decided
	}
	r.UpdatedAt = now
}
