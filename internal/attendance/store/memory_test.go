package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presence/internal/attendance/models"
	id "presence/pkg/domain"
	"presence/pkg/platform/audit"
	auditmemory "presence/pkg/platform/audit/store/memory"
	"presence/pkg/platform/sentinel"
)

func TestInMemoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	userID, sessionID := id.UserID(uuid.New()), id.SessionID(uuid.New())
	now := time.Now()

	_, err := s.FindByUserAndSession(ctx, userID, sessionID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	r := models.NewPendingRecord(userID, sessionID, now)
	require.NoError(t, s.Create(ctx, r))

	got, err := s.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)

	got.Status = models.StatusVerified
	again, err := s.FindByUserAndSession(ctx, userID, sessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, again.Status, "returned records are copies")
}

func TestInMemoryOneLiveRecordPerPair(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	userID, sessionID := id.UserID(uuid.New()), id.SessionID(uuid.New())
	now := time.Now()

	first := models.NewPendingRecord(userID, sessionID, now)
	require.NoError(t, s.Create(ctx, first))
	assert.ErrorIs(t, s.Create(ctx, first), sentinel.ErrConflict)

	second := models.NewPendingRecord(userID, sessionID, now.Add(time.Second))
	assert.ErrorIs(t, s.Create(ctx, second), sentinel.ErrConflict)

	first.ApplyOverride(models.StatusVerified, id.UserID(uuid.New()), now)
	require.NoError(t, s.Update(ctx, first))
	require.NoError(t, s.Create(ctx, second))

	latest, err := s.FindByUserAndSession(ctx, userID, sessionID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}

func TestInMemoryUpdateMissing(t *testing.T) {
	s := NewInMemory()
	r := models.NewPendingRecord(id.UserID(uuid.New()), id.SessionID(uuid.New()), time.Now())
	assert.ErrorIs(t, s.Update(context.Background(), r), sentinel.ErrNotFound)
}

func TestInMemoryAuditTrail(t *testing.T) {
	ctx := context.Background()
	outbox := auditmemory.NewInMemoryStore()
	s := NewInMemory(WithOutbox(outbox))
	now := time.Now()
	r := models.NewPendingRecord(id.UserID(uuid.New()), id.SessionID(uuid.New()), now)

	orphan := models.NewAuditEntry(r, models.ActionVerificationEvaluated, models.StatusPending, r.UserID, "", now)
	assert.ErrorIs(t, s.AppendAudit(ctx, orphan), sentinel.ErrNotFound)

	require.NoError(t, s.Create(ctx, r))
	r.ApplyDecision(models.StatusRejected, "outside_geofence", now)
	require.NoError(t, s.Update(ctx, r))
	require.NoError(t, s.AppendAudit(ctx, models.NewAuditEntry(r, models.ActionVerificationEvaluated, models.StatusPending, r.UserID, "outside_geofence", now)))

	admin := id.UserID(uuid.New())
	r.ApplyOverride(models.StatusVerified, admin, now.Add(time.Minute))
	require.NoError(t, s.Update(ctx, r))
	require.NoError(t, s.AppendAudit(ctx, models.NewAuditEntry(r, models.ActionStatusOverridden, models.StatusRejected, admin, "badge scanned at door", now.Add(time.Minute))))

	entries, err := s.ListAudit(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActionVerificationEvaluated, entries[0].Action)
	assert.Equal(t, models.StatusRejected, entries[0].NewStatus)
	assert.Equal(t, models.ActionStatusOverridden, entries[1].Action)
	assert.Equal(t, models.StatusRejected, entries[1].PreviousStatus)
	assert.Equal(t, models.StatusVerified, entries[1].EffectiveStatus)

	pending, err := outbox.FetchUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, audit.EventVerificationEvaluated, pending[0].EventType)
	assert.Equal(t, audit.EventStatusOverridden, pending[1].EventType)
	assert.Equal(t, r.ID.String(), pending[1].AggregateID)
}

type downOutbox struct{}

func (downOutbox) Append(context.Context, audit.OutboxEntry) error {
	return errors.New("outbox down")
}

func TestInMemoryCommitIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("outbox failure stores nothing", func(t *testing.T) {
		s := NewInMemory(WithOutbox(downOutbox{}))
		r := models.NewPendingRecord(id.UserID(uuid.New()), id.SessionID(uuid.New()), now)
		entry := models.NewAuditEntry(r, models.ActionVerificationEvaluated, models.StatusPending, r.UserID, "", now)

		err := s.Commit(ctx, []models.Write{{Create: r}, {Audit: entry}})
		require.EqualError(t, err, "outbox down")
		_, err = s.FindByID(ctx, r.ID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		_, err = s.FindByUserAndSession(ctx, r.UserID, r.SessionID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		entries, err := s.ListAudit(ctx, r.ID)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("later invalid write discards earlier ones", func(t *testing.T) {
		outbox := auditmemory.NewInMemoryStore()
		s := NewInMemory(WithOutbox(outbox))
		r := models.NewPendingRecord(id.UserID(uuid.New()), id.SessionID(uuid.New()), now)
		missing := models.NewPendingRecord(id.UserID(uuid.New()), id.SessionID(uuid.New()), now)

		err := s.Commit(ctx, []models.Write{
			{Create: r},
			{Audit: models.NewAuditEntry(r, models.ActionVerificationEvaluated, models.StatusPending, r.UserID, "", now)},
			{Update: missing},
		})
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		_, err = s.FindByID(ctx, r.ID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		pending, err := outbox.FetchUnpublished(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, pending, "no event for a discarded batch")
	})

	t.Run("writes see the batch before them", func(t *testing.T) {
		s := NewInMemory()
		userID, sessionID := id.UserID(uuid.New()), id.SessionID(uuid.New())
		first := models.NewPendingRecord(userID, sessionID, now)
		second := models.NewPendingRecord(userID, sessionID, now.Add(time.Second))

		err := s.Commit(ctx, []models.Write{{Create: first}, {Create: second}})
		assert.ErrorIs(t, err, sentinel.ErrConflict)
		_, err = s.FindByID(ctx, first.ID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		overridden := *first
		overridden.ApplyOverride(models.StatusVerified, id.UserID(uuid.New()), now)
		require.NoError(t, s.Commit(ctx, []models.Write{
			{Create: first},
			{Update: &overridden},
			{Create: second},
			{Audit: models.NewAuditEntry(second, models.ActionVerificationEvaluated, models.StatusPending, userID, "", now)},
		}))
		latest, err := s.FindByUserAndSession(ctx, userID, sessionID)
		require.NoError(t, err)
		assert.Equal(t, second.ID, latest.ID)
		entries, err := s.ListAudit(ctx, second.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}
