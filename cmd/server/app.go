package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	attendanceadapters "presence/internal/attendance/adapters"
	attendancehandler "presence/internal/attendance/handler"
	attendancemetrics "presence/internal/attendance/metrics"
	attendanceservice "presence/internal/attendance/service"
	attendancestore "presence/internal/attendance/store"
	"presence/internal/authz"
	enrollmenthandler "presence/internal/enrollment/handler"
	enrollmentservice "presence/internal/enrollment/service"
	enrollmentstore "presence/internal/enrollment/store"
	eventstore "presence/internal/event/store"
	jwttoken "presence/internal/jwt_token"
	"presence/internal/platform/config"
	"presence/internal/platform/postgres"
	"presence/internal/platform/redis"
	venuehandler "presence/internal/venuetoken/handler"
	venuemetrics "presence/internal/venuetoken/metrics"
	venueservice "presence/internal/venuetoken/service"
	venuestore "presence/internal/venuetoken/store"
	"presence/pkg/platform/audit"
	"presence/pkg/platform/audit/publisher"
	auditmemory "presence/pkg/platform/audit/store/memory"
	auditpostgres "presence/pkg/platform/audit/store/postgres"
	"presence/pkg/platform/audit/worker"
	"presence/pkg/platform/httputil"
	authmw "presence/pkg/platform/middleware/auth"
	"presence/pkg/platform/middleware/device"
	"presence/pkg/platform/middleware/metadata"
	"presence/pkg/platform/middleware/request"
	"presence/pkg/platform/middleware/requesttime"
)

// sessionStore is satisfied by both event stores.
type sessionStore interface {
	eventstore.Saver
	attendanceadapters.SessionStore
	authz.SessionStore
}

type outbox interface {
	Append(ctx context.Context, entry audit.OutboxEntry) error
}

type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	storage string

	db    *sql.DB
	redis *redis.Client
	kafka *publisher.KafkaPublisher
	relay *worker.Worker

	attendance *attendanceservice.Service
	enrollment *enrollmentservice.Service
	venue      *venueservice.Service
	jwt        *jwttoken.JWTService
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: log, storage: "memory"}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if err := a.openInfra(ctx); err != nil {
		return nil, err
	}

	var (
		sessions     sessionStore
		enrollments  enrollmentservice.Store
		records      attendanceservice.Store
		attendanceTx attendanceservice.StoreTx
		events       outbox
	)
	if a.db != nil {
		a.storage = "postgres"
		auditStore := auditpostgres.New(a.db)
		pgRecords := attendancestore.NewPostgres(a.db, auditStore)
		sessions = eventstore.NewPostgres(a.db)
		enrollments = enrollmentstore.NewPostgres(a.db)
		records = pgRecords
		attendanceTx = newAttendancePostgresTx(a.db, pgRecords, cfg.TxTimeout)
		events = auditStore
		if a.kafka != nil {
			a.relay = worker.NewWorker(auditStore, a.kafka,
				worker.WithInterval(cfg.RelayInterval),
				worker.WithBatchSize(cfg.RelayBatch),
				worker.WithLogger(log),
			)
		}
	} else {
		auditStore := auditmemory.NewInMemoryStore()
		memRecords := attendancestore.NewInMemory(attendancestore.WithOutbox(auditStore))
		sessions = eventstore.NewInMemory()
		enrollments = enrollmentstore.NewInMemory()
		records = memRecords
		attendanceTx = attendanceservice.NewShardedTx(memRecords, cfg.TxTimeout)
		events = auditStore
	}

	if cfg.SessionsSeedFile != "" {
		n, err := eventstore.SeedFromFile(ctx, sessions, cfg.SessionsSeedFile)
		if err != nil {
			return nil, err
		}
		log.Info("seeded event sessions", "count", n, "file", cfg.SessionsSeedFile)
	}

	var tokens venueservice.Store = venuestore.NewInMemory(cfg.TokenHistory)
	if a.redis != nil {
		tokens = venuestore.NewRedis(a.redis.Client, cfg.QRRotationInterval*time.Duration(cfg.TokenHistory))
	}

	authorizer := authz.NewAuthorizer(sessions)

	a.enrollment, err = enrollmentservice.New(enrollments,
		enrollmentservice.WithLogger(log),
		enrollmentservice.WithAuditPublisher(events),
	)
	if err != nil {
		return nil, err
	}

	a.venue, err = venueservice.New(tokens,
		venueservice.WithRotationInterval(cfg.QRRotationInterval),
		venueservice.WithClockSkew(cfg.TokenClockSkew),
		venueservice.WithLogger(log),
		venueservice.WithMetrics(venuemetrics.New()),
		venueservice.WithAuthorizer(authorizer),
		venueservice.WithAuditPublisher(events),
	)
	if err != nil {
		return nil, err
	}

	a.attendance, err = attendanceservice.New(
		records,
		attendanceadapters.NewSessionAdapter(sessions),
		attendanceadapters.NewEnrollmentAdapter(a.enrollment),
		attendanceadapters.NewTokenAdapter(a.venue),
		authorizer,
		attendanceservice.WithLogger(log),
		attendanceservice.WithMetrics(attendancemetrics.New()),
		attendanceservice.WithTx(attendanceTx),
		attendanceservice.WithConfig(attendanceservice.Config{
			FaceMatchThreshold:    cfg.FaceMatchThreshold,
			FaceDistanceThreshold: cfg.FaceDistanceThreshold,
			DefaultRadiusMeters:   cfg.DefaultRadiusMeters,
		}),
	)
	if err != nil {
		return nil, err
	}

	a.jwt = jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	return a, nil
}

func (a *app) openInfra(ctx context.Context) error {
	var err error
	if a.cfg.Postgres.URL != "" {
		if a.db, err = postgres.Open(ctx, a.cfg.Postgres); err != nil {
			return err
		}
		if err = postgres.Migrate(ctx, a.db); err != nil {
			return err
		}
	}

	if a.redis, err = redis.New(ctx, a.cfg.Redis); err != nil {
		return err
	}

	if len(a.cfg.Brokers) > 0 {
		if a.kafka, err = publisher.NewKafka(a.cfg.Brokers, a.cfg.AuditTopic); err != nil {
			return err
		}
		if err = a.kafka.EnsureTopic(ctx, 1, 1); err != nil {
			return fmt.Errorf("ensure audit topic: %w", err)
		}
	}
	return nil
}

// Router builds the HTTP surface. Everything except health and metrics
// requires a bearer token.
func (a *app) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(device.Middleware)

	r.Get("/health", a.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(a.jwt.Validator(), a.logger))
		attendancehandler.New(a.attendance, a.logger).Register(r)
		venuehandler.New(a.venue, a.logger).Register(r)
		enrollmenthandler.New(a.enrollment, a.logger).Register(r)
	})
	return r
}

func (a *app) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"storage": a.storage}
	status := http.StatusOK
	if a.db != nil {
		checks["postgres"] = "ok"
		if err := a.db.PingContext(ctx); err != nil {
			checks["postgres"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	if a.redis != nil {
		checks["redis"] = "ok"
		if err := a.redis.Health(ctx); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	if a.kafka != nil {
		checks["kafka"] = "ok"
		if err := a.kafka.Ping(ctx); err != nil {
			checks["kafka"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	httputil.WriteJSON(w, status, checks)
}

func (a *app) Close() {
	if a.kafka != nil {
		a.kafka.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
