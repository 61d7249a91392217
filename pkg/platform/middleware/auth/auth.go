package auth

import (
	"log/slog"
	"net/http"
	"strings"

	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
	"presence/pkg/platform/httputil"
	"presence/pkg/requestcontext"
)

// JWTValidator validates bearer access tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims is what the middleware needs from a validated token.
type JWTClaims struct {
	UserID string
	Roles  []string
	JTI    string
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's user ID and roles in the context. Capabilities are resolved by
// the handlers.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			reject := func(reason, description string, err error) {
				logger.WarnContext(ctx, "unauthorized access",
					"reason", reason,
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, description))
			}

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			token = strings.TrimSpace(token)
			if !ok || token == "" {
				reject("missing_token", "missing or invalid Authorization header", nil)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				reject("invalid_token", "invalid or expired token", err)
				return
			}
			userID, err := id.ParseUserID(claims.UserID)
			if err != nil {
				reject("invalid_subject", "invalid or expired token", err)
				return
			}

			ctx = requestcontext.WithUserID(ctx, userID)
			ctx = requestcontext.WithRoles(ctx, claims.Roles)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
