package store

import (
	"context"
	"sync"

	"presence/internal/event/models"
	id "presence/pkg/domain"
	"presence/pkg/platform/sentinel"
)

// InMemory is a session store for development and tests.
type InMemory struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*models.Session
}

func NewInMemory() *InMemory {
	return &InMemory{sessions: make(map[id.SessionID]*models.Session)}
}

// Save inserts or replaces a session.
func (s *InMemory) Save(_ context.Context, session *models.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, sessionID id.SessionID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *session
	return &cp, nil
}
