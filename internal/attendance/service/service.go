package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"

	"presence/internal/attendance/metrics"
	"presence/internal/attendance/models"
	"presence/internal/attendance/ports"
	"presence/internal/authz"
	"presence/internal/biometric"
	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
	"presence/pkg/platform/sentinel"
)

var tracer = otel.Tracer("presence/attendance")

// Store persists attendance records and their audit trail. Create returns
// sentinel.ErrConflict when a non-overridden record already exists for the
// pair; FindByUserAndSession returns the latest record of the pair.
type Store interface {
	Create(ctx context.Context, record *models.Record) error
	Update(ctx context.Context, record *models.Record) error
	FindByID(ctx context.Context, attendanceID id.AttendanceID) (*models.Record, error)
	FindByUserAndSession(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*models.Record, error)
	AppendAudit(ctx context.Context, entry *models.AuditEntry) error
	ListAudit(ctx context.Context, attendanceID id.AttendanceID) ([]*models.AuditEntry, error)
}

// StoreTx runs fn so that all of its writes commit together or not at all.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(store Store) error) error
}

// Config carries the thresholds the orchestrator applies.
type Config struct {
	// FaceMatchThreshold is the minimum score (0-100) for an automatic face accept.
	FaceMatchThreshold float64
	// FaceDistanceThreshold is the Euclidean distance below which descriptors match.
	FaceDistanceThreshold float64
	// DefaultRadiusMeters applies to sessions that do not set a radius.
	DefaultRadiusMeters int
}

func DefaultConfig() Config {
	return Config{
		FaceMatchThreshold:    70,
		FaceDistanceThreshold: biometric.DefaultDistanceThreshold,
		DefaultRadiusMeters:   100,
	}
}

// Service is the verification orchestrator and override manager.
type Service struct {
	store       Store
	tx          StoreTx
	sessions    ports.SessionPort
	enrollments ports.EnrollmentPort
	tokens      ports.TokenPort
	authorizer  ports.OverrideAuthorizer
	matcher     biometric.Matcher
	cfg         Config
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(*Service)

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

// WithTx replaces the default in-process transaction runner.
func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

// WithConfig replaces DefaultConfig. Zero fields keep their defaults.
func WithConfig(cfg Config) Option {
	return func(s *Service) {
		if cfg.FaceMatchThreshold > 0 {
			s.cfg.FaceMatchThreshold = cfg.FaceMatchThreshold
		}
		if cfg.FaceDistanceThreshold > 0 {
			s.cfg.FaceDistanceThreshold = cfg.FaceDistanceThreshold
		}
		if cfg.DefaultRadiusMeters > 0 {
			s.cfg.DefaultRadiusMeters = cfg.DefaultRadiusMeters
		}
	}
}

func New(
	store Store,
	sessions ports.SessionPort,
	enrollments ports.EnrollmentPort,
	tokens ports.TokenPort,
	authorizer ports.OverrideAuthorizer,
	opts ...Option,
) (*Service, error) {
	switch {
	case store == nil:
		return nil, errors.New("attendance store is required")
	case sessions == nil:
		return nil, errors.New("session port is required")
	case enrollments == nil:
		return nil, errors.New("enrollment port is required")
	case tokens == nil:
		return nil, errors.New("token port is required")
	case authorizer == nil:
		return nil, errors.New("override authorizer is required")
	}

	s := &Service{
		store:       store,
		sessions:    sessions,
		enrollments: enrollments,
		tokens:      tokens,
		authorizer:  authorizer,
		cfg:         DefaultConfig(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = NewShardedTx(store, 0)
	}
	s.matcher = biometric.NewMatcher(s.cfg.FaceDistanceThreshold)
	return s, nil
}

// Get returns the attendance record with attendanceID.
func (s *Service) Get(ctx context.Context, attendanceID id.AttendanceID) (*models.Record, error) {
	record, err := s.store.FindByID(ctx, attendanceID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "attendance record not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load attendance record")
	}
	return record, nil
}

// ListAudit returns the audit trail of attendanceID, oldest first.
func (s *Service) ListAudit(ctx context.Context, attendanceID id.AttendanceID) ([]*models.AuditEntry, error) {
	if _, err := s.Get(ctx, attendanceID); err != nil {
		return nil, err
	}
	entries, err := s.store.ListAudit(ctx, attendanceID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load audit trail")
	}
	return entries, nil
}

// View returns a record to its owner or to someone allowed to override it.
func (s *Service) View(ctx context.Context, actor authz.Actor, attendanceID id.AttendanceID) (*models.Record, error) {
	if actor.UserID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	record, err := s.Get(ctx, attendanceID)
	if err != nil {
		return nil, err
	}
	if record.UserID == actor.UserID {
		return record, nil
	}
	if err := s.requireManage(ctx, actor, record.SessionID); err != nil {
		return nil, err
	}
	return record, nil
}

// AuditTrail returns the audit trail to someone allowed to override the record.
func (s *Service) AuditTrail(ctx context.Context, actor authz.Actor, attendanceID id.AttendanceID) ([]*models.AuditEntry, error) {
	if err := actor.Require(authz.CapOverride); err != nil {
		return nil, err
	}
	record, err := s.Get(ctx, attendanceID)
	if err != nil {
		return nil, err
	}
	if err := s.requireManage(ctx, actor, record.SessionID); err != nil {
		return nil, err
	}
	return s.ListAudit(ctx, attendanceID)
}

func (s *Service) requireManage(ctx context.Context, actor authz.Actor, sessionID id.SessionID) error {
	ok, err := s.authorizer.CanOverride(ctx, actor, sessionID)
	if err != nil {
		return err
	}
	if !ok {
		return dErrors.New(dErrors.CodeForbidden, "not allowed to manage attendance for this session")
	}
	return nil
}
