package testutil

import (
	"net/http"

	id "presence/pkg/domain"
	"presence/pkg/requestcontext"
)

// WithAuth sets what the auth middleware would: the caller's user ID and
// roles. An unparsable userID leaves the request anonymous.
func WithAuth(req *http.Request, userID string, roles ...string) *http.Request {
	ctx := req.Context()
	if parsed, err := id.ParseUserID(userID); err == nil {
		ctx = requestcontext.WithUserID(ctx, parsed)
	}
	if len(roles) > 0 {
		ctx = requestcontext.WithRoles(ctx, roles)
	}
	return req.WithContext(ctx)
}
