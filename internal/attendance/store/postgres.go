package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"presence/internal/attendance/models"
	"presence/internal/platform/postgres"
	id "presence/pkg/domain"
	"presence/pkg/platform/sentinel"
	txcontext "presence/pkg/platform/tx"
)

// Postgres stores attendance in attendance_records and attendance_audit.
// Bound to a transaction via WithTx, AppendAudit also writes the outbox row
// in that transaction and FindByID locks the row.
type Postgres struct {
	db     txcontext.Executor
	tx     *sql.Tx
	outbox OutboxAppender
}

func NewPostgres(db *sql.DB, outbox OutboxAppender) *Postgres {
	return &Postgres{db: db, outbox: outbox}
}

// WithTx returns a store whose statements run in tx.
func (s *Postgres) WithTx(tx *sql.Tx) *Postgres {
	return &Postgres{db: tx, tx: tx, outbox: s.outbox}
}

const recordColumns = `
	id, user_id, session_id, status, effective_status, method,
	face_match_score, face_match, gps_valid, distance_from_venue,
	claimed_latitude, claimed_longitude, webauthn_used, webauthn_credential_id,
	reason, verified_at, decided_at, overridden_by, overridden_at, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, r *models.Record) error {
	query := `INSERT INTO attendance_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(r.ID),
		uuid.UUID(r.UserID),
		uuid.UUID(r.SessionID),
		string(r.Status),
		string(r.EffectiveStatus),
		string(r.Method),
		r.FaceMatchScore,
		r.FaceMatch,
		r.GPSValid,
		r.DistanceFromVenue,
		r.ClaimedLatitude,
		r.ClaimedLongitude,
		r.WebAuthnUsed,
		r.WebAuthnCredentialID,
		r.Reason,
		r.VerifiedAt,
		r.DecidedAt,
		nullableUser(r.OverriddenBy),
		r.OverriddenAt,
		r.CreatedAt,
		r.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert attendance record: %w", err)
	}
	return nil
}

// Update writes the mutable columns. Identity and evidence of creation time
// are not rewritten.
func (s *Postgres) Update(ctx context.Context, r *models.Record) error {
	query := `
		UPDATE attendance_records SET
			status = $2, effective_status = $3, method = $4,
			face_match_score = $5, face_match = $6, gps_valid = $7, distance_from_venue = $8,
			claimed_latitude = $9, claimed_longitude = $10, webauthn_used = $11, webauthn_credential_id = $12,
			reason = $13, verified_at = $14, decided_at = $15, overridden_by = $16, overridden_at = $17,
			updated_at = $18
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(r.ID),
		string(r.Status),
		string(r.EffectiveStatus),
		string(r.Method),
		r.FaceMatchScore,
		r.FaceMatch,
		r.GPSValid,
		r.DistanceFromVenue,
		r.ClaimedLatitude,
		r.ClaimedLongitude,
		r.WebAuthnUsed,
		r.WebAuthnCredentialID,
		r.Reason,
		r.VerifiedAt,
		r.DecidedAt,
		nullableUser(r.OverriddenBy),
		r.OverriddenAt,
		r.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update attendance record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update attendance record: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, attendanceID id.AttendanceID) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM attendance_records WHERE id = $1`
	if s.tx != nil {
		query += ` FOR UPDATE`
	}
	return scanRecord(s.db.QueryRowContext(ctx, query, uuid.UUID(attendanceID)))
}

func (s *Postgres) FindByUserAndSession(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*models.Record, error) {
	query := `SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE user_id = $1 AND session_id = $2
		ORDER BY created_at DESC
		LIMIT 1`
	return scanRecord(s.db.QueryRowContext(ctx, query, uuid.UUID(userID), uuid.UUID(sessionID)))
}

// AppendAudit inserts the entry and its outbox event. Outside WithTx the two
// inserts are not atomic.
func (s *Postgres) AppendAudit(ctx context.Context, e *models.AuditEntry) error {
	query := `
		INSERT INTO attendance_audit (
			id, attendance_id, actor_id, action, previous_status, new_status,
			effective_status, reason, request_id, device, client_ip, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(e.ID),
		uuid.UUID(e.AttendanceID),
		uuid.UUID(e.ActorID),
		string(e.Action),
		string(e.PreviousStatus),
		string(e.NewStatus),
		string(e.EffectiveStatus),
		e.Reason,
		e.RequestID,
		e.Device,
		e.ClientIP,
		e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	if s.outbox == nil {
		return nil
	}
	out, err := OutboxEntryFor(e)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	if err := s.outbox.Append(txcontext.WithTx(ctx, s.tx), out); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *Postgres) ListAudit(ctx context.Context, attendanceID id.AttendanceID) ([]*models.AuditEntry, error) {
	query := `
		SELECT id, attendance_id, actor_id, action, previous_status, new_status,
		       effective_status, reason, request_id, device, client_ip, created_at
		FROM attendance_audit
		WHERE attendance_id = $1
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(attendanceID))
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		var (
			e                     models.AuditEntry
			entryID, recID, actor uuid.UUID
			action, prev, next    string
			effective             string
		)
		if err := rows.Scan(&entryID, &recID, &actor, &action, &prev, &next, &effective,
			&e.Reason, &e.RequestID, &e.Device, &e.ClientIP, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.ID = id.AuditEntryID(entryID)
		e.AttendanceID = id.AttendanceID(recID)
		e.ActorID = id.UserID(actor)
		e.Action = models.Action(action)
		e.PreviousStatus = models.Status(prev)
		e.NewStatus = models.Status(next)
		e.EffectiveStatus = models.Status(effective)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}

func scanRecord(row *sql.Row) (*models.Record, error) {
	var (
		r                         models.Record
		recID, userID, sessionID  uuid.UUID
		status, effective, method string
		overriddenBy              uuid.NullUUID
		verifiedAt, decidedAt     *time.Time
		overriddenAt              *time.Time
	)
	err := row.Scan(
		&recID, &userID, &sessionID, &status, &effective, &method,
		&r.FaceMatchScore, &r.FaceMatch, &r.GPSValid, &r.DistanceFromVenue,
		&r.ClaimedLatitude, &r.ClaimedLongitude, &r.WebAuthnUsed, &r.WebAuthnCredentialID,
		&r.Reason, &verifiedAt, &decidedAt, &overriddenBy, &overriddenAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan attendance record: %w", err)
	}
	r.ID = id.AttendanceID(recID)
	r.UserID = id.UserID(userID)
	r.SessionID = id.SessionID(sessionID)
	r.Status = models.Status(status)
	r.EffectiveStatus = models.Status(effective)
	r.Method = models.Method(method)
	r.VerifiedAt = verifiedAt
	r.DecidedAt = decidedAt
	r.OverriddenAt = overriddenAt
	if overriddenBy.Valid {
		by := id.UserID(overriddenBy.UUID)
		r.OverriddenBy = &by
	}
	return &r, nil
}

func nullableUser(u *id.UserID) uuid.NullUUID {
	if u == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*u), Valid: true}
}
