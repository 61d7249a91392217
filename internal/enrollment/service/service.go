package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"presence/internal/authz"
	"presence/internal/biometric"
	"presence/internal/enrollment/models"
	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
	"presence/pkg/platform/audit"
	"presence/pkg/platform/sentinel"
	"presence/pkg/requestcontext"
)

// Store persists one enrollment per user.
type Store interface {
	Save(ctx context.Context, e *models.Enrollment) error
	FindByUser(ctx context.Context, userID id.UserID) (*models.Enrollment, error)
}

// AuditPublisher receives enrollment lifecycle events.
type AuditPublisher interface {
	Append(ctx context.Context, entry audit.OutboxEntry) error
}

// Service manages reference face descriptors and their review.
type Service struct {
	store          Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = p
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("enrollment store is required")
	}
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Submit stores a new pending enrollment for userID, replacing any previous
// one. A replaced approved enrollment stops being a baseline until reviewed.
func (s *Service) Submit(ctx context.Context, userID id.UserID, descriptor biometric.Descriptor) (*models.Enrollment, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	e, err := models.NewEnrollment(userID, descriptor, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, e); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save enrollment")
	}
	s.emit(ctx, audit.EventEnrollmentSubmitted, e, userID)
	return e, nil
}

// Review approves or rejects the pending enrollment of userID.
func (s *Service) Review(ctx context.Context, actor authz.Actor, userID id.UserID, target models.Status) (*models.Enrollment, error) {
	if err := actor.Require(authz.CapReviewEnrollment); err != nil {
		return nil, err
	}
	if target != models.StatusApproved && target != models.StatusRejected {
		return nil, dErrors.New(dErrors.CodeValidation, "review status must be approved or rejected")
	}

	e, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "enrollment not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load enrollment")
	}
	if err := e.Review(target, actor.UserID, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, e); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save enrollment")
	}
	s.emit(ctx, audit.EventEnrollmentReviewed, e, actor.UserID)
	return e, nil
}

// FindApproved returns the user's enrollment when it is approved. Missing and
// unapproved enrollments both return sentinel.ErrNotFound.
func (s *Service) FindApproved(ctx context.Context, userID id.UserID) (*models.Enrollment, error) {
	e, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !e.IsApproved() {
		return nil, sentinel.ErrNotFound
	}
	return e, nil
}

func (s *Service) emit(ctx context.Context, eventType audit.EventType, e *models.Enrollment, actorID id.UserID) {
	s.logger.InfoContext(ctx, string(eventType),
		"user_id", e.UserID,
		"actor_id", actorID,
		"status", e.Status,
		"log_type", "audit",
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.auditPublisher == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"user_id":  e.UserID.String(),
		"actor_id": actorID.String(),
		"status":   e.Status,
	})
	if err != nil {
		return
	}
	entry := audit.NewOutboxEntry("enrollment", e.UserID.String(), eventType, payload, e.UpdatedAt)
	if err := s.auditPublisher.Append(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "failed to record enrollment event", "error", err)
	}
}
