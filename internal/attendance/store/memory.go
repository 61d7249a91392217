package store

import (
	"context"
	"encoding/json"
	"sync"

	"presence/internal/attendance/models"
	id "presence/pkg/domain"
	"presence/pkg/platform/audit"
	"presence/pkg/platform/sentinel"
)

// OutboxAppender receives an event for every appended audit entry.
type OutboxAppender interface {
	Append(ctx context.Context, entry audit.OutboxEntry) error
}

type pairKey struct {
	user    id.UserID
	session id.SessionID
}

// InMemory stores attendance records and their audit trail in process memory.
// Audit entries are only ever appended.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.AttendanceID]*models.Record
	latest  map[pairKey]id.AttendanceID
	audit   map[id.AttendanceID][]*models.AuditEntry
	outbox  OutboxAppender
}

type MemoryOption func(*InMemory)

// WithOutbox publishes audit entries to an outbox.
func WithOutbox(outbox OutboxAppender) MemoryOption {
	return func(s *InMemory) {
		s.outbox = outbox
	}
}

func NewInMemory(opts ...MemoryOption) *InMemory {
	s := &InMemory{
		records: make(map[id.AttendanceID]*models.Record),
		latest:  make(map[pairKey]id.AttendanceID),
		audit:   make(map[id.AttendanceID][]*models.AuditEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create inserts record. It fails with sentinel.ErrConflict when the pair
// already has a non-overridden record.
func (s *InMemory) Create(ctx context.Context, record *models.Record) error {
	return s.Commit(ctx, []models.Write{{Create: record}})
}

func (s *InMemory) Update(ctx context.Context, record *models.Record) error {
	return s.Commit(ctx, []models.Write{{Update: record}})
}

// Commit applies writes in order as one unit. Every write is checked
// against the state left by the writes before it and the outbox events are
// appended before anything is stored, so on error the store is unchanged.
func (s *InMemory) Commit(ctx context.Context, writes []models.Write) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make(map[id.AttendanceID]*models.Record)
	latest := make(map[pairKey]id.AttendanceID)
	var entries []*models.AuditEntry
	var events []audit.OutboxEntry

	find := func(recordID id.AttendanceID) (*models.Record, bool) {
		if r, ok := records[recordID]; ok {
			return r, true
		}
		r, ok := s.records[recordID]
		return r, ok
	}

	for _, w := range writes {
		switch {
		case w.Create != nil:
			if _, exists := find(w.Create.ID); exists {
				return sentinel.ErrConflict
			}
			key := pairKey{w.Create.UserID, w.Create.SessionID}
			prevID, ok := latest[key]
			if !ok {
				prevID, ok = s.latest[key]
			}
			if ok {
				if prev, _ := find(prevID); prev.Status != models.StatusOverridden {
					return sentinel.ErrConflict
				}
			}
			cp := *w.Create
			records[cp.ID] = &cp
			latest[key] = cp.ID
		case w.Update != nil:
			if _, ok := find(w.Update.ID); !ok {
				return sentinel.ErrNotFound
			}
			cp := *w.Update
			records[cp.ID] = &cp
		case w.Audit != nil:
			if _, ok := find(w.Audit.AttendanceID); !ok {
				return sentinel.ErrNotFound
			}
			if s.outbox != nil {
				out, err := OutboxEntryFor(w.Audit)
				if err != nil {
					return err
				}
				events = append(events, out)
			}
			cp := *w.Audit
			entries = append(entries, &cp)
		}
	}

	for _, out := range events {
		if err := s.outbox.Append(ctx, out); err != nil {
			return err
		}
	}
	for recordID, r := range records {
		s.records[recordID] = r
	}
	for key, recordID := range latest {
		s.latest[key] = recordID
	}
	for _, e := range entries {
		s.audit[e.AttendanceID] = append(s.audit[e.AttendanceID], e)
	}
	return nil
}

func (s *InMemory) FindByID(_ context.Context, attendanceID id.AttendanceID) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[attendanceID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *InMemory) FindByUserAndSession(_ context.Context, userID id.UserID, sessionID id.SessionID) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recordID, ok := s.latest[pairKey{userID, sessionID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.records[recordID]
	return &cp, nil
}

// AppendAudit appends entry to the trail of its record.
func (s *InMemory) AppendAudit(ctx context.Context, entry *models.AuditEntry) error {
	return s.Commit(ctx, []models.Write{{Audit: entry}})
}

// ListAudit returns the trail of attendanceID in append order.
func (s *InMemory) ListAudit(_ context.Context, attendanceID id.AttendanceID) ([]*models.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.audit[attendanceID]
	out := make([]*models.AuditEntry, 0, len(entries))
	for _, e := range entries {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

// OutboxEntryFor builds the outbox event of an audit entry.
func OutboxEntryFor(entry *models.AuditEntry) (audit.OutboxEntry, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return audit.OutboxEntry{}, err
	}
	eventType := audit.EventVerificationEvaluated
	if entry.Action == models.ActionStatusOverridden {
		eventType = audit.EventStatusOverridden
	}
	return audit.NewOutboxEntry("attendance", entry.AttendanceID.String(), eventType, payload, entry.Timestamp), nil
}
