package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"presence/internal/attendance/models"
	"presence/internal/attendance/service"
	"presence/internal/authz"
	id "presence/pkg/domain"
	"presence/pkg/platform/httputil"
	"presence/pkg/requestcontext"
)

// Service defines the attendance operations exposed over HTTP.
type Service interface {
	Verify(ctx context.Context, req service.VerifyRequest) (*service.VerifyResult, error)
	Override(ctx context.Context, req service.OverrideRequest) (*models.Record, error)
	View(ctx context.Context, actor authz.Actor, attendanceID id.AttendanceID) (*models.Record, error)
	AuditTrail(ctx context.Context, actor authz.Actor, attendanceID id.AttendanceID) ([]*models.AuditEntry, error)
}

// Handler handles attendance verification, reads and overrides.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts attendance routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/attendance/verify", h.HandleVerify)
	r.Get("/attendance/{attendance_id}", h.HandleGet)
	r.Get("/attendance/{attendance_id}/audit", h.HandleAuditTrail)
	r.Post("/admin/attendance/{attendance_id}/override", h.HandleOverride)
}

// HandleVerify evaluates the caller's evidence for a session. Rejected
// evidence is a 200 with status rejected; only malformed input is an error.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor := authz.ActorFromContext(ctx)
	if err := actor.Require(authz.CapVerify); err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.Verify(ctx, req.ToServiceRequest(actor.UserID))
	if err != nil {
		h.logger.WarnContext(ctx, "attendance verification failed",
			"request_id", requestID,
			"user_id", actor.UserID,
			"session_id", req.SessionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromVerifyResult(res))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	attendanceID, err := id.ParseAttendanceID(chi.URLParam(r, "attendance_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	record, err := h.service.View(ctx, authz.ActorFromContext(ctx), attendanceID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(record))
}

func (h *Handler) HandleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	attendanceID, err := id.ParseAttendanceID(chi.URLParam(r, "attendance_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entries, err := h.service.AuditTrail(ctx, authz.ActorFromContext(ctx), attendanceID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAuditTrail(attendanceID.String(), entries))
}

// HandleOverride records an administrator's determination.
func (h *Handler) HandleOverride(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	attendanceID, err := id.ParseAttendanceID(chi.URLParam(r, "attendance_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[OverrideRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	actor := authz.ActorFromContext(ctx)
	record, err := h.service.Override(ctx, service.OverrideRequest{
		AttendanceID: attendanceID,
		Actor:        actor,
		NewStatus:    req.ParsedStatus(),
		Reason:       req.Reason,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "attendance override failed",
			"request_id", requestID,
			"attendance_id", attendanceID,
			"actor_id", actor.UserID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(record))
}
