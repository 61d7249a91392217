package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"presence/internal/attendance/models"
	"presence/internal/attendance/ports"
	"presence/internal/biometric"
	"presence/internal/geofence"
	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
	"presence/pkg/platform/sentinel"
	"presence/pkg/requestcontext"
)

const (
	maxTokenLength        = 256
	maxCredentialIDLength = 1024
)

// Coordinates is a claimed device location in degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// WebAuthnAssertion is the result of a hardware-backed assertion verified
// elsewhere. It is taken as is.
type WebAuthnAssertion struct {
	Verified     bool
	CredentialID string
}

// VerifyRequest is one attendance verification attempt.
type VerifyRequest struct {
	UserID      id.UserID
	SessionID   id.SessionID
	Token       string
	Coordinates *Coordinates
	Descriptor  biometric.Descriptor
	WebAuthn    *WebAuthnAssertion
}

// Validate rejects malformed input before any evidence is evaluated.
func (r VerifyRequest) Validate() error {
	if r.UserID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if r.SessionID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "session_id is required")
	}
	if len(r.Token) > maxTokenLength {
		return dErrors.New(dErrors.CodeValidation, "token is too long")
	}
	if r.Coordinates != nil {
		if err := geofence.ValidateCoordinate(r.Coordinates.Latitude, r.Coordinates.Longitude); err != nil {
			return err
		}
	}
	if r.Descriptor != nil {
		if err := biometric.ValidateDescriptor(r.Descriptor); err != nil {
			return err
		}
	}
	if r.WebAuthn != nil && len(r.WebAuthn.CredentialID) > maxCredentialIDLength {
		return dErrors.New(dErrors.CodeValidation, "webauthn credential_id is too long")
	}
	return nil
}

// VerifyResult is the stored record and the per-factor evaluation behind it.
type VerifyResult struct {
	Record  *models.Record
	Factors Factors
}

// Verify evaluates the presented evidence and records the automatic outcome
// together with its first audit entry.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	ctx, span := tracer.Start(ctx, "attendance.Verify")
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.ObserveVerifyLatency(time.Since(start)) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("session_id", req.SessionID.String()),
		attribute.String("user_id", req.UserID.String()),
	)
	now := requestcontext.Now(ctx)

	session, err := s.sessions.FindSession(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}

	// Fail fast on duplicates before touching any evidence
	if _, err := s.existingPending(ctx, s.store, req); err != nil {
		return nil, err
	}

	evidence, err := s.gatherEvidence(ctx, req, now)
	if err != nil {
		span.SetStatus(codes.Error, "gather evidence")
		return nil, err
	}

	factorEvidence, location, face, err := s.compute(req, session, evidence)
	if err != nil {
		return nil, err
	}
	factors := EvaluateFactors(RequirementsFor(session, len(req.Descriptor) > 0), factorEvidence, s.cfg.FaceMatchThreshold)
	outcome, reason := Decide(factors)

	var record *models.Record
	err = s.tx.RunInTx(withPairKey(ctx, req.UserID, req.SessionID), func(store Store) error {
		existing, err := s.existingPending(ctx, store, req)
		if err != nil {
			return err
		}
		record = existing
		if record == nil {
			record = models.NewPendingRecord(req.UserID, req.SessionID, now)
		}
		applyEvidence(record, req, factors, location, face)
		if err := record.CanDecide(outcome); err != nil {
			return err
		}
		record.ApplyDecision(outcome, reason, now)
		if err := record.Validate(); err != nil {
			return err
		}

		if existing == nil {
			err = store.Create(ctx, record)
		} else {
			err = store.Update(ctx, record)
		}
		if err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "attendance already recorded for this session")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save attendance record")
		}

		entry := s.auditEntry(ctx, record, models.ActionVerificationEvaluated, models.StatusPending, req.UserID, reason, now)
		if err := store.AppendAudit(ctx, entry); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append audit entry")
		}
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, "persist")
		return nil, wrapTxError(err)
	}

	s.recordMetrics(record, factors)
	s.logger.InfoContext(ctx, "attendance evaluated",
		"request_id", requestcontext.RequestID(ctx),
		"attendance_id", record.ID,
		"user_id", record.UserID,
		"session_id", record.SessionID,
		"status", record.Status,
		"method", record.Method,
		"reason", record.Reason,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	span.SetAttributes(attribute.String("status", string(record.Status)))

	return &VerifyResult{Record: record, Factors: factors}, nil
}

// existingPending returns the pending record of the pair, nil when there is
// none, and a conflict when the pair already has a decided record.
func (s *Service) existingPending(ctx context.Context, store Store, req VerifyRequest) (*models.Record, error) {
	existing, err := store.FindByUserAndSession(ctx, req.UserID, req.SessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load attendance record")
	}
	if existing.Status != models.StatusPending {
		return nil, dErrors.New(dErrors.CodeConflict, "attendance already recorded for this session")
	}
	return existing, nil
}

// compute runs the pure geofence and biometric checks over the gathered evidence.
func (s *Service) compute(req VerifyRequest, session *ports.Session, evidence *gatheredEvidence) (FactorEvidence, *geofence.Result, *biometric.Comparison, error) {
	fe := FactorEvidence{
		TokenPresented:      req.Token != "",
		Token:               evidence.Token,
		DescriptorPresented: len(req.Descriptor) > 0,
		WebAuthn:            req.WebAuthn,
	}

	var location *geofence.Result
	if req.Coordinates != nil {
		radius := s.cfg.DefaultRadiusMeters
		if session.RadiusMeters != nil && *session.RadiusMeters > 0 {
			radius = *session.RadiusMeters
		}
		res, err := geofence.Validate(req.Coordinates.Latitude, req.Coordinates.Longitude,
			session.VenueLatitude, session.VenueLongitude, float64(radius))
		if err != nil {
			return fe, nil, nil, err
		}
		location = &res
	}
	fe.Location = location

	var face *biometric.Comparison
	if fe.DescriptorPresented && evidence.Enrollment != nil {
		fe.EnrollmentFound = true
		cmp, err := s.matcher.Compare(req.Descriptor, evidence.Enrollment)
		if err != nil {
			return fe, nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "stored enrollment is malformed")
		}
		face = &cmp
	}
	fe.Face = face
	return fe, location, face, nil
}

func applyEvidence(record *models.Record, req VerifyRequest, factors Factors, location *geofence.Result, face *biometric.Comparison) {
	record.Method = factors.Method()
	if req.Coordinates != nil {
		lat, lng := req.Coordinates.Latitude, req.Coordinates.Longitude
		record.ClaimedLatitude = &lat
		record.ClaimedLongitude = &lng
	}
	if location != nil {
		distance := location.DistanceMeters
		within := location.WithinRadius
		record.DistanceFromVenue = &distance
		record.GPSValid = &within
	}
	if face != nil {
		score := face.Score
		match := face.Match
		record.FaceMatchScore = &score
		record.FaceMatch = &match
	}
	if req.WebAuthn != nil {
		record.WebAuthnUsed = req.WebAuthn.Verified
		record.WebAuthnCredentialID = req.WebAuthn.CredentialID
	}
}

func (s *Service) auditEntry(ctx context.Context, record *models.Record, action models.Action, previous models.Status, actor id.UserID, reason string, now time.Time) *models.AuditEntry {
	entry := models.NewAuditEntry(record, action, previous, actor, reason, now)
	entry.RequestID = requestcontext.RequestID(ctx)
	entry.Device = requestcontext.Device(ctx)
	entry.ClientIP = requestcontext.ClientIP(ctx)
	return entry
}

func (s *Service) recordMetrics(record *models.Record, f Factors) {
	s.metrics.IncrementOutcome(string(record.Status), string(record.Method))
	s.metrics.IncrementFactor("token", f.Token.Outcome())
	s.metrics.IncrementFactor("location", f.Location.Outcome())
	s.metrics.IncrementFactor("face", f.Face.Outcome())
	s.metrics.IncrementFactor("webauthn", f.WebAuthn.Outcome())
}

// wrapTxError keeps coded errors from the transaction as they are. Store
// errors surfacing at commit are translated here.
func wrapTxError(err error) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	if errors.Is(err, sentinel.ErrConflict) {
		return dErrors.New(dErrors.CodeConflict, "attendance already recorded for this session")
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "attendance record not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "attendance transaction failed")
}
