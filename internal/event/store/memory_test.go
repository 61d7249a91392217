package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presence/internal/event/models"
	id "presence/pkg/domain"
	"presence/pkg/platform/sentinel"
)

func TestInMemory_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	now := time.Now()
	session := &models.Session{
		ID:          id.SessionID(uuid.New()),
		OrganizerID: id.UserID(uuid.New()),
		StartsAt:    now,
		EndsAt:      now.Add(time.Hour),
	}

	require.NoError(t, store.Save(ctx, session))

	found, err := store.FindByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.OrganizerID, found.OrganizerID)

	found.Title = "mutated"
	again, err := store.FindByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Title, "store must hand out copies")

	_, err = store.FindByID(ctx, id.SessionID(uuid.New()))
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
}

func TestSeedFromFile(t *testing.T) {
	ctx := context.Background()
	sessionID := uuid.NewString()
	path := filepath.Join(t.TempDir(), "sessions.json")
	body := `[{"id":"` + sessionID + `","organizer_id":"` + uuid.NewString() + `","title":"Lecture","venue_latitude":40.44,"venue_longitude":-79.94,"radius_meters":150,"require_qr":true,"starts_at":"2026-09-01T09:00:00Z","ends_at":"2026-09-01T10:00:00Z"}]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	store := NewInMemory()
	n, err := SeedFromFile(ctx, store, path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	parsed, err := id.ParseSessionID(sessionID)
	require.NoError(t, err)
	found, err := store.FindByID(ctx, parsed)
	require.NoError(t, err)
	assert.True(t, found.RequireQR)
	assert.Equal(t, 150, found.EffectiveRadius(100))

	n, err = SeedFromFile(ctx, store, "")
	require.NoError(t, err)
	assert.Zero(t, n)
}
