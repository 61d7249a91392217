package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"presence/internal/authz"
	"presence/internal/biometric"
	"presence/internal/enrollment/models"
	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
	"presence/pkg/platform/httputil"
	"presence/pkg/requestcontext"
)

// Service defines the enrollment operations exposed over HTTP.
type Service interface {
	Submit(ctx context.Context, userID id.UserID, descriptor biometric.Descriptor) (*models.Enrollment, error)
	Review(ctx context.Context, actor authz.Actor, userID id.UserID, target models.Status) (*models.Enrollment, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts enrollment routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/enrollments", h.HandleSubmit)
	r.Post("/admin/enrollments/{user_id}/approve", h.handleReview(models.StatusApproved))
	r.Post("/admin/enrollments/{user_id}/reject", h.handleReview(models.StatusRejected))
}

// SubmitRequest is the body of POST /enrollments.
type SubmitRequest struct {
	Descriptor []float64 `json:"descriptor"`
}

func (r *SubmitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Descriptor) == 0 {
		return dErrors.New(dErrors.CodeValidation, "descriptor is required")
	}
	return biometric.ValidateDescriptor(r.Descriptor)
}

// EnrollmentResponse never carries the descriptor.
type EnrollmentResponse struct {
	UserID     string     `json:"user_id"`
	Status     string     `json:"status"`
	ReviewedBy string     `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func toResponse(e *models.Enrollment) EnrollmentResponse {
	resp := EnrollmentResponse{
		UserID:     e.UserID.String(),
		Status:     string(e.Status),
		ReviewedAt: e.ReviewedAt,
		CreatedAt:  e.CreatedAt,
	}
	if e.ReviewedBy != nil {
		resp.ReviewedBy = e.ReviewedBy.String()
	}
	return resp
}

// HandleSubmit handles POST /enrollments for the authenticated user.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	e, err := h.service.Submit(ctx, userID, req.Descriptor)
	if err != nil {
		h.logger.WarnContext(ctx, "enrollment submit failed",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(e))
}

func (h *Handler) handleReview(target models.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := requestcontext.RequestID(ctx)

		userID, err := id.ParseUserID(chi.URLParam(r, "user_id"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}

		actor := authz.ActorFromContext(ctx)
		e, err := h.service.Review(ctx, actor, userID, target)
		if err != nil {
			h.logger.WarnContext(ctx, "enrollment review failed",
				"request_id", requestID,
				"user_id", userID,
				"actor_id", actor.UserID,
				"status", target,
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, toResponse(e))
	}
}
