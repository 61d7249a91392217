package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	audit "presence/pkg/platform/audit"
)

// InMemoryStore is an outbox kept in process memory, ordered by append time.
type InMemoryStore struct {
	mu      sync.Mutex
	entries []audit.OutboxEntry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry audit.OutboxEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// FetchUnpublished returns up to limit unpublished entries, oldest first.
func (s *InMemoryStore) FetchUnpublished(_ context.Context, limit int) ([]audit.OutboxEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []audit.OutboxEntry
	for _, e := range s.entries {
		if e.PublishedAt != nil {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *InMemoryStore) MarkPublished(_ context.Context, ids []uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	for i := range s.entries {
		if _, ok := set[s.entries[i].ID]; ok && s.entries[i].PublishedAt == nil {
			published := at
			s.entries[i].PublishedAt = &published
		}
	}
	return nil
}

// All returns a copy of every entry, published or not.
func (s *InMemoryStore) All() []audit.OutboxEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.OutboxEntry(nil), s.entries...)
}
