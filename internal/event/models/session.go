package models

import (
	"time"

	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
)

// Session is a scheduled event occurrence at a venue. Sessions are managed
// elsewhere; this service only reads them.
type Session struct {
	ID              id.SessionID
	OrganizerID     id.UserID
	Title           string
	VenueLatitude   float64
	VenueLongitude  float64
	RadiusMeters    *int
	RequireQR       bool
	EnforceLocation bool
	RequireFace     bool
	RequireWebAuthn bool
	StartsAt        time.Time
	EndsAt          time.Time
}

// EffectiveRadius returns the session radius, or fallback when unset.
func (s *Session) EffectiveRadius(fallback int) int {
	if s.RadiusMeters != nil && *s.RadiusMeters > 0 {
		return *s.RadiusMeters
	}
	return fallback
}

// IsOrganizedBy reports whether userID owns the session.
func (s *Session) IsOrganizedBy(userID id.UserID) bool {
	return !userID.IsNil() && s.OrganizerID == userID
}

// Validate checks the invariants a stored session must satisfy.
func (s *Session) Validate() error {
	if s.ID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "session id is required")
	}
	if s.OrganizerID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "session organizer is required")
	}
	if s.RadiusMeters != nil && *s.RadiusMeters <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "session radius must be positive")
	}
	if !s.EndsAt.IsZero() && s.EndsAt.Before(s.StartsAt) {
		return dErrors.New(dErrors.CodeInvariantViolation, "session must end after it starts")
	}
	return nil
}
