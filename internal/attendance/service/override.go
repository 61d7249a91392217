package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"presence/internal/attendance/models"
	"presence/internal/authz"
	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
	"presence/pkg/requestcontext"
)

const maxOverrideReasonLength = 500

// OverrideRequest is an administrator's manual determination.
type OverrideRequest struct {
	AttendanceID id.AttendanceID
	Actor        authz.Actor
	NewStatus    models.Status
	Reason       string
}

// Validate trims the reason and checks the request shape.
func (r *OverrideRequest) Validate() error {
	if r.AttendanceID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "attendance_id is required")
	}
	if r.NewStatus != models.StatusVerified && r.NewStatus != models.StatusRejected {
		return dErrors.New(dErrors.CodeValidation, "status must be verified or rejected")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	if utf8.RuneCountInString(r.Reason) > maxOverrideReasonLength {
		return dErrors.New(dErrors.CodeValidation, "reason must be at most 500 characters")
	}
	return nil
}

// Override sets the effective status of a record on an administrator's
// authority. Status becomes overridden, the automatic outcome stays in the
// audit trail and exactly one audit entry is appended.
//
// Checks run in order: override capability, record exists, session scoped
// authorization. The record is untouched when any of them fails.
func (s *Service) Override(ctx context.Context, req OverrideRequest) (*models.Record, error) {
	ctx, span := tracer.Start(ctx, "attendance.Override")
	defer span.End()
	span.SetAttributes(attribute.String("attendance_id", req.AttendanceID.String()))

	if err := req.Actor.Require(authz.CapOverride); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, req.AttendanceID)
	if err != nil {
		return nil, err
	}
	if err := s.requireManage(ctx, req.Actor, current.SessionID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var record *models.Record
	var previous models.Status
	err = s.tx.RunInTx(withPairKey(ctx, current.UserID, current.SessionID), func(store Store) error {
		// Re-read inside the transaction so a concurrent override is seen
		r, err := store.FindByID(ctx, req.AttendanceID)
		if err != nil {
			return err
		}
		if err := r.CanOverride(req.NewStatus); err != nil {
			return err
		}
		previous = r.Status
		r.ApplyOverride(req.NewStatus, req.Actor.UserID, now)
		if err := store.Update(ctx, r); err != nil {
			return err
		}
		entry := s.auditEntry(ctx, r, models.ActionStatusOverridden, previous, req.Actor.UserID, req.Reason, now)
		if err := store.AppendAudit(ctx, entry); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append audit entry")
		}
		record = r
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, "override")
		return nil, wrapTxError(err)
	}

	s.metrics.IncrementOverride(string(record.EffectiveStatus))
	s.logger.InfoContext(ctx, "attendance overridden",
		"request_id", requestcontext.RequestID(ctx),
		"attendance_id", record.ID,
		"session_id", record.SessionID,
		"actor_id", req.Actor.UserID,
		"previous_status", previous,
		"effective_status", record.EffectiveStatus,
		"reason", req.Reason,
		"log_type", "audit",
	)
	return record, nil
}
