package ports

import (
	"context"

	"presence/internal/authz"
	id "presence/pkg/domain"
)

// OverrideAuthorizer answers whether an actor may manage attendance of a session.
type OverrideAuthorizer interface {
	CanOverride(ctx context.Context, actor authz.Actor, sessionID id.SessionID) (bool, error)
}
