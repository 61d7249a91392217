package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"presence/internal/authz"
	"presence/internal/venuetoken/metrics"
	"presence/internal/venuetoken/models"
	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
	"presence/pkg/platform/audit"
	"presence/pkg/requestcontext"
)

var tracer = otel.Tracer("presence/venuetoken")

// Store persists venue tokens. Rotate must make the new token the single
// active token of its session atomically; Snapshot must read the active
// token and the digest owner consistently.
type Store interface {
	Rotate(ctx context.Context, token *models.VenueToken) error
	Snapshot(ctx context.Context, sessionID id.SessionID, digest string) (models.Snapshot, error)
}

// SessionAuthorizer decides who may rotate a session's token.
type SessionAuthorizer interface {
	CanRotateToken(ctx context.Context, actor authz.Actor, sessionID id.SessionID) (bool, error)
}

// AuditPublisher receives security events for token issuance.
type AuditPublisher interface {
	Append(ctx context.Context, entry audit.OutboxEntry) error
}

const DefaultRotationInterval = 300 * time.Second

// Service issues and validates rotating venue tokens.
type Service struct {
	store          Store
	authorizer     SessionAuthorizer
	interval       time.Duration
	skew           time.Duration
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
}

type Option func(*Service)

func WithRotationInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithClockSkew(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.skew = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuthorizer(a SessionAuthorizer) Option {
	return func(s *Service) {
		s.authorizer = a
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = p
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("venue token store is required")
	}
	s := &Service{
		store:    store,
		interval: DefaultRotationInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue creates a fresh token for sessionID valid for [now, now+interval) and
// makes it the active one. The returned token carries the plaintext secret.
func (s *Service) Issue(ctx context.Context, sessionID id.SessionID, now time.Time) (*models.VenueToken, error) {
	ctx, span := tracer.Start(ctx, "venuetoken.Issue")
	defer span.End()
	span.SetAttributes(attribute.String("session_id", sessionID.String()))

	if sessionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "session_id is required")
	}
	tok, err := models.NewVenueToken(sessionID, now, s.interval)
	if err != nil {
		span.SetStatus(codes.Error, "generate secret")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate venue token")
	}
	if err := s.store.Rotate(ctx, tok); err != nil {
		span.SetStatus(codes.Error, "rotate")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store venue token")
	}
	s.metrics.IncrementIssued()
	s.logger.InfoContext(ctx, "venue token issued",
		"session_id", sessionID,
		"valid_until", tok.ValidUntil,
		"request_id", requestcontext.RequestID(ctx),
	)
	return tok, nil
}

// Rotate is Issue on behalf of an actor: the actor must hold the rotate
// capability for the session.
func (s *Service) Rotate(ctx context.Context, actor authz.Actor, sessionID id.SessionID) (*models.VenueToken, error) {
	if err := actor.Require(authz.CapRotateToken); err != nil {
		return nil, err
	}
	if s.authorizer != nil {
		ok, err := s.authorizer.CanRotateToken(ctx, actor, sessionID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, dErrors.New(dErrors.CodeForbidden, "not allowed to rotate tokens for this session")
		}
	}

	tok, err := s.Issue(ctx, sessionID, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	s.emitIssued(ctx, actor, tok)
	return tok, nil
}

// Validate checks presentedSecret against the session's active token at now.
// It never consumes the token.
func (s *Service) Validate(ctx context.Context, sessionID id.SessionID, presentedSecret string, now time.Time) (models.Validation, error) {
	ctx, span := tracer.Start(ctx, "venuetoken.Validate")
	defer span.End()

	if presentedSecret == "" {
		s.metrics.IncrementValidation(string(models.ReasonUnknown))
		return models.Validation{Reason: models.ReasonUnknown}, nil
	}
	digest := models.HashSecret(presentedSecret)
	snap, err := s.store.Snapshot(ctx, sessionID, digest)
	if err != nil {
		span.SetStatus(codes.Error, "snapshot")
		return models.Validation{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read venue token")
	}

	v := models.Evaluate(snap, sessionID, digest, now, s.skew)
	result := "ok"
	if !v.OK {
		result = string(v.Reason)
	}
	span.SetAttributes(attribute.String("result", result))
	s.metrics.IncrementValidation(result)
	return v, nil
}

func (s *Service) emitIssued(ctx context.Context, actor authz.Actor, tok *models.VenueToken) {
	s.logger.InfoContext(ctx, string(audit.EventVenueTokenIssued),
		"session_id", tok.SessionID,
		"actor_id", actor.UserID,
		"log_type", "audit",
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.auditPublisher == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"session_id":  tok.SessionID.String(),
		"actor_id":    actor.UserID.String(),
		"issued_at":   tok.IssuedAt,
		"valid_until": tok.ValidUntil,
	})
	if err != nil {
		return
	}
	entry := audit.NewOutboxEntry("session", tok.SessionID.String(), audit.EventVenueTokenIssued, payload, tok.IssuedAt)
	if err := s.auditPublisher.Append(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "failed to record token issuance", "error", err)
	}
}
