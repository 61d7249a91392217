package ports

import (
	"context"

	id "presence/pkg/domain"
)

// SessionPort loads the event session a verification targets.
// Returns sentinel.ErrNotFound for unknown sessions.
type SessionPort interface {
	FindSession(ctx context.Context, sessionID id.SessionID) (*Session, error)
}

// Session is the part of an event session the orchestrator needs (port model).
type Session struct {
	ID              id.SessionID
	OrganizerID     id.UserID
	VenueLatitude   float64
	VenueLongitude  float64
	RadiusMeters    *int
	RequireQR       bool
	EnforceLocation bool
	RequireFace     bool
	RequireWebAuthn bool
}
