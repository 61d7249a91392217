package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"presence/internal/event/models"
	id "presence/pkg/domain"
)

// Saver is implemented by both session stores.
type Saver interface {
	Save(ctx context.Context, session *models.Session) error
}

type seedSession struct {
	ID              string    `json:"id"`
	OrganizerID     string    `json:"organizer_id"`
	Title           string    `json:"title"`
	VenueLatitude   float64   `json:"venue_latitude"`
	VenueLongitude  float64   `json:"venue_longitude"`
	RadiusMeters    *int      `json:"radius_meters"`
	RequireQR       bool      `json:"require_qr"`
	EnforceLocation bool      `json:"enforce_location"`
	RequireFace     bool      `json:"require_face"`
	RequireWebAuthn bool      `json:"require_webauthn"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
}

// SeedFromFile loads a JSON array of sessions into store and returns how many
// were saved. An empty path is a no-op.
func SeedFromFile(ctx context.Context, store Saver, path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read session seed: %w", err)
	}
	var seeds []seedSession
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return 0, fmt.Errorf("decode session seed: %w", err)
	}
	for i, seed := range seeds {
		sessionID, err := id.ParseSessionID(seed.ID)
		if err != nil {
			return i, fmt.Errorf("session seed %d: %w", i, err)
		}
		organizerID, err := id.ParseUserID(seed.OrganizerID)
		if err != nil {
			return i, fmt.Errorf("session seed %d: %w", i, err)
		}
		session := &models.Session{
			ID:              sessionID,
			OrganizerID:     organizerID,
			Title:           seed.Title,
			VenueLatitude:   seed.VenueLatitude,
			VenueLongitude:  seed.VenueLongitude,
			RadiusMeters:    seed.RadiusMeters,
			RequireQR:       seed.RequireQR,
			EnforceLocation: seed.EnforceLocation,
			RequireFace:     seed.RequireFace,
			RequireWebAuthn: seed.RequireWebAuthn,
			StartsAt:        seed.StartsAt,
			EndsAt:          seed.EndsAt,
		}
		if err := store.Save(ctx, session); err != nil {
			return i, fmt.Errorf("session seed %d: %w", i, err)
		}
	}
	return len(seeds), nil
}
