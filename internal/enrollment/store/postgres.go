package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"presence/internal/biometric"
	"presence/internal/enrollment/models"
	id "presence/pkg/domain"
	"presence/pkg/platform/sentinel"
)

// Postgres persists enrollments in biometric_enrollments. The descriptor is a
// DOUBLE PRECISION[] column.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Save(ctx context.Context, e *models.Enrollment) error {
	query := `
		INSERT INTO biometric_enrollments (user_id, descriptor, status, reviewed_by, reviewed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			descriptor = EXCLUDED.descriptor,
			status = EXCLUDED.status,
			reviewed_by = EXCLUDED.reviewed_by,
			reviewed_at = EXCLUDED.reviewed_at,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at
	`
	var reviewedBy uuid.NullUUID
	if e.ReviewedBy != nil {
		reviewedBy = uuid.NullUUID{UUID: uuid.UUID(*e.ReviewedBy), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(e.UserID),
		pq.Float64Array(e.Descriptor),
		string(e.Status),
		reviewedBy,
		e.ReviewedAt,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert enrollment: %w", err)
	}
	return nil
}

func (s *Postgres) FindByUser(ctx context.Context, userID id.UserID) (*models.Enrollment, error) {
	query := `
		SELECT user_id, descriptor, status, reviewed_by, reviewed_at, created_at, updated_at
		FROM biometric_enrollments
		WHERE user_id = $1
	`
	var (
		uid        uuid.UUID
		descriptor pq.Float64Array
		status     string
		reviewedBy uuid.NullUUID
		reviewedAt sql.NullTime
		createdAt  time.Time
		updatedAt  time.Time
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(userID)).Scan(
		&uid, &descriptor, &status, &reviewedBy, &reviewedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}

	e := &models.Enrollment{
		UserID:     id.UserID(uid),
		Descriptor: biometric.Descriptor(descriptor),
		Status:     models.Status(status),
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
	if reviewedBy.Valid {
		reviewer := id.UserID(reviewedBy.UUID)
		e.ReviewedBy = &reviewer
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		e.ReviewedAt = &t
	}
	return e, nil
}
