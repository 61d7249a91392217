package store

import (
	"context"
	"sync"

	"presence/internal/biometric"
	"presence/internal/enrollment/models"
	id "presence/pkg/domain"
	"presence/pkg/platform/sentinel"
)

// InMemory keeps one enrollment per user.
type InMemory struct {
	mu          sync.RWMutex
	enrollments map[id.UserID]*models.Enrollment
}

func NewInMemory() *InMemory {
	return &InMemory{enrollments: make(map[id.UserID]*models.Enrollment)}
}

// Save inserts or replaces the user's enrollment.
func (s *InMemory) Save(_ context.Context, e *models.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrollments[e.UserID] = clone(e)
	return nil
}

func (s *InMemory) FindByUser(_ context.Context, userID id.UserID) (*models.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.enrollments[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(e), nil
}

func clone(e *models.Enrollment) *models.Enrollment {
	cp := *e
	cp.Descriptor = append(biometric.Descriptor(nil), e.Descriptor...)
	return &cp
}
