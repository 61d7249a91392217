package adapters

import (
	"context"

	"presence/internal/attendance/ports"
	eventmodels "presence/internal/event/models"
	id "presence/pkg/domain"
)

// SessionStore is the event session lookup used by the adapter.
type SessionStore interface {
	FindByID(ctx context.Context, sessionID id.SessionID) (*eventmodels.Session, error)
}

// SessionAdapter implements ports.SessionPort over the event session store.
type SessionAdapter struct {
	sessions SessionStore
}

func NewSessionAdapter(sessions SessionStore) ports.SessionPort {
	return &SessionAdapter{sessions: sessions}
}

func (a *SessionAdapter) FindSession(ctx context.Context, sessionID id.SessionID) (*ports.Session, error) {
	s, err := a.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &ports.Session{
		ID:              s.ID,
		OrganizerID:     s.OrganizerID,
		VenueLatitude:   s.VenueLatitude,
		VenueLongitude:  s.VenueLongitude,
		RadiusMeters:    s.RadiusMeters,
		RequireQR:       s.RequireQR,
		EnforceLocation: s.EnforceLocation,
		RequireFace:     s.RequireFace,
		RequireWebAuthn: s.RequireWebAuthn,
	}, nil
}
