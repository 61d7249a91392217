package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"presence/internal/event/models"
	id "presence/pkg/domain"
	"presence/pkg/platform/sentinel"
)

// Postgres reads sessions from the event_sessions table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Save upserts a session. Used by seeding and tests.
func (s *Postgres) Save(ctx context.Context, session *models.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}
	query := `
		INSERT INTO event_sessions (
			id, organizer_id, title, venue_latitude, venue_longitude, radius_meters,
			require_qr, enforce_location, require_face, require_webauthn, starts_at, ends_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			organizer_id = EXCLUDED.organizer_id,
			title = EXCLUDED.title,
			venue_latitude = EXCLUDED.venue_latitude,
			venue_longitude = EXCLUDED.venue_longitude,
			radius_meters = EXCLUDED.radius_meters,
			require_qr = EXCLUDED.require_qr,
			enforce_location = EXCLUDED.enforce_location,
			require_face = EXCLUDED.require_face,
			require_webauthn = EXCLUDED.require_webauthn,
			starts_at = EXCLUDED.starts_at,
			ends_at = EXCLUDED.ends_at
	`
	var radius sql.NullInt32
	if session.RadiusMeters != nil {
		radius = sql.NullInt32{Int32: int32(*session.RadiusMeters), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(session.ID),
		uuid.UUID(session.OrganizerID),
		session.Title,
		session.VenueLatitude,
		session.VenueLongitude,
		radius,
		session.RequireQR,
		session.EnforceLocation,
		session.RequireFace,
		session.RequireWebAuthn,
		session.StartsAt,
		session.EndsAt,
	)
	if err != nil {
		return fmt.Errorf("upsert event session: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	query := `
		SELECT id, organizer_id, title, venue_latitude, venue_longitude, radius_meters,
		       require_qr, enforce_location, require_face, require_webauthn, starts_at, ends_at
		FROM event_sessions
		WHERE id = $1
	`
	var (
		session     models.Session
		rawID       uuid.UUID
		organizerID uuid.UUID
		radius      sql.NullInt32
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(sessionID)).Scan(
		&rawID,
		&organizerID,
		&session.Title,
		&session.VenueLatitude,
		&session.VenueLongitude,
		&radius,
		&session.RequireQR,
		&session.EnforceLocation,
		&session.RequireFace,
		&session.RequireWebAuthn,
		&session.StartsAt,
		&session.EndsAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find event session: %w", err)
	}
	session.ID = id.SessionID(rawID)
	session.OrganizerID = id.UserID(organizerID)
	if radius.Valid {
		r := int(radius.Int32)
		session.RadiusMeters = &r
	}
	return &session, nil
}
