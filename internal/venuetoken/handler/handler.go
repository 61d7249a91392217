package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"presence/internal/authz"
	"presence/internal/venuetoken/models"
	id "presence/pkg/domain"
	"presence/pkg/platform/httputil"
	"presence/pkg/requestcontext"
)

// Service defines the venue token operations exposed over HTTP.
type Service interface {
	Rotate(ctx context.Context, actor authz.Actor, sessionID id.SessionID) (*models.VenueToken, error)
}

// Handler serves venue token issuance for session owners.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts venue token routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/sessions/{session_id}/tokens", h.HandleIssue)
}

// IssueResponse is the body of POST /sessions/{session_id}/tokens. The secret
// is returned only here; it is what the venue QR code encodes.
type IssueResponse struct {
	SessionID  string    `json:"session_id"`
	Secret     string    `json:"token"`
	IssuedAt   time.Time `json:"issued_at"`
	ValidUntil time.Time `json:"valid_until"`
}

// HandleIssue handles POST /sessions/{session_id}/tokens.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	sessionID, err := id.ParseSessionID(chi.URLParam(r, "session_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	actor := authz.ActorFromContext(ctx)
	tok, err := h.service.Rotate(ctx, actor, sessionID)
	if err != nil {
		h.logger.WarnContext(ctx, "venue token issue failed",
			"request_id", requestID,
			"session_id", sessionID,
			"user_id", actor.UserID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, IssueResponse{
		SessionID:  tok.SessionID.String(),
		Secret:     tok.Secret,
		IssuedAt:   tok.IssuedAt,
		ValidUntil: tok.ValidUntil,
	})
}
