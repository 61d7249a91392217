package main

import (
	"context"
	"database/sql"
	"time"

	attendanceservice "presence/internal/attendance/service"
	attendancestore "presence/internal/attendance/store"
	dErrors "presence/pkg/domain-errors"
)

const defaultAttendanceTxTimeout = 5 * time.Second

// attendancePostgresTx runs attendance writes in one database transaction so
// the record, its audit entry and the outbox event commit together.
type attendancePostgresTx struct {
	db      *sql.DB
	store   *attendancestore.Postgres
	timeout time.Duration
}

func newAttendancePostgresTx(db *sql.DB, store *attendancestore.Postgres, timeout time.Duration) *attendancePostgresTx {
	return &attendancePostgresTx{db: db, store: store, timeout: timeout}
}

func (t *attendancePostgresTx) RunInTx(ctx context.Context, fn func(store attendanceservice.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultAttendanceTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(t.store.WithTx(tx)); err != nil {
		return err
	}
	return tx.Commit()
}
