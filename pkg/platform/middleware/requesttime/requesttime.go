// Package requesttime pins one "now" per request. A verification, its audit
// entry and the venue token window check all read the same instant.
package requesttime

import (
	"net/http"
	"time"

	"presence/pkg/requestcontext"
)

// Middleware stamps the request with the wall clock in UTC.
func Middleware(next http.Handler) http.Handler {
	return WithClock(time.Now)(next)
}

// WithClock stamps requests using now.
func WithClock(now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), now().UTC())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
