package ports

import (
	"context"
	"time"

	id "presence/pkg/domain"
)

// TokenPort validates a presented venue token. A rejected token is a normal
// result, not an error.
type TokenPort interface {
	ValidateToken(ctx context.Context, sessionID id.SessionID, secret string, now time.Time) (TokenResult, error)
}

// TokenResult is the outcome of a token check (port model).
type TokenResult struct {
	OK     bool
	Reason string
}
