package store

import (
	"context"
	"hash/fnv"
	"sync"

	"presence/internal/venuetoken/models"
	id "presence/pkg/domain"
)

// numShards spreads sessions over independent locks so rotations of
// different sessions never contend.
const numShards = 64

// DefaultHistory is how many superseded tokens per session stay resolvable
// for replay detection.
const DefaultHistory = 16

type sessionTokens struct {
	active  *models.VenueToken
	history []*models.VenueToken
}

type shard struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*sessionTokens
}

// InMemory keeps venue tokens in process memory. Issues for one session are
// serialized by the shard lock; the digest index has its own lock, always
// taken after the shard lock.
type InMemory struct {
	shards  [numShards]shard
	indexMu sync.RWMutex
	index   map[string]*models.VenueToken
	history int
}

func NewInMemory(history int) *InMemory {
	if history < 1 {
		history = DefaultHistory
	}
	s := &InMemory{index: make(map[string]*models.VenueToken), history: history}
	for i := range s.shards {
		s.shards[i].sessions = make(map[id.SessionID]*sessionTokens)
	}
	return s
}

func (s *InMemory) shardFor(sessionID id.SessionID) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID.String()))
	return &s.shards[h.Sum32()%numShards]
}

// Rotate makes token the active token of its session, superseding the previous one.
func (s *InMemory) Rotate(_ context.Context, token *models.VenueToken) error {
	stored := token.Redacted()
	sh := s.shardFor(stored.SessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	st, ok := sh.sessions[stored.SessionID]
	if !ok {
		st = &sessionTokens{}
		sh.sessions[stored.SessionID] = st
	}

	var evicted []*models.VenueToken
	if st.active != nil {
		st.history = append(st.history, st.active)
		if over := len(st.history) - s.history; over > 0 {
			evicted = st.history[:over]
			st.history = append([]*models.VenueToken(nil), st.history[over:]...)
		}
	}
	st.active = stored

	s.indexMu.Lock()
	for _, old := range evicted {
		delete(s.index, old.SecretHash)
	}
	s.index[stored.SecretHash] = stored
	s.indexMu.Unlock()
	return nil
}

// Snapshot reads the active token of sessionID and the token owning digest
// under the same locks.
func (s *InMemory) Snapshot(_ context.Context, sessionID id.SessionID, digest string) (models.Snapshot, error) {
	sh := s.shardFor(sessionID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	var snap models.Snapshot
	if st, ok := sh.sessions[sessionID]; ok && st.active != nil {
		cp := *st.active
		snap.Active = &cp
	}

	s.indexMu.RLock()
	if tok, ok := s.index[digest]; ok {
		cp := *tok
		snap.Presented = &cp
	}
	s.indexMu.RUnlock()
	return snap, nil
}
