package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	id "presence/pkg/domain"
	"presence/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*JWTClaims, error) {
	return s.claims, s.err
}

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	userID := uuid.New()

	var gotUser id.UserID
	var gotRoles []string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = requestcontext.UserID(r.Context())
		gotRoles = requestcontext.Roles(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		h := RequireAuth(stubValidator{}, logger)(next)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"unauthorized","error_description":"missing or invalid Authorization header"}`, rec.Body.String())
	})

	t.Run("invalid token is unauthorized", func(t *testing.T) {
		h := RequireAuth(stubValidator{err: errors.New("bad signature")}, logger)(next)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non uuid subject is unauthorized", func(t *testing.T) {
		h := RequireAuth(stubValidator{claims: &JWTClaims{UserID: "alice"}}, logger)(next)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer token")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token populates context", func(t *testing.T) {
		h := RequireAuth(stubValidator{claims: &JWTClaims{UserID: userID.String(), Roles: []string{"organizer"}}}, logger)(next)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer token")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, id.UserID(userID), gotUser)
		assert.Equal(t, []string{"organizer"}, gotRoles)
	})
}
