// Package authz resolves what a caller may do. Roles from the access token are
// mapped to capabilities once per request; services check capabilities, never
// role names.
package authz

import (
	"context"
	"errors"
	"slices"

	"presence/internal/event/models"
	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
	"presence/pkg/platform/sentinel"
	"presence/pkg/requestcontext"
)

// Capability is a single permission.
type Capability string

const (
	CapVerify           Capability = "attendance:verify"
	CapOverride         Capability = "attendance:override"
	CapRotateToken      Capability = "session:rotate_token"
	CapReviewEnrollment Capability = "enrollment:review"
	// CapGlobalSessions lifts the organizer-only restriction on session scoped capabilities.
	CapGlobalSessions Capability = "session:global"
)

// Role names carried in access tokens.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleOrganizer  = "organizer"
	RoleAttendee   = "attendee"
)

var roleCapabilities = map[string][]Capability{
	RoleSuperAdmin: {CapVerify, CapOverride, CapRotateToken, CapReviewEnrollment, CapGlobalSessions},
	RoleAdmin:      {CapVerify, CapOverride, CapRotateToken, CapReviewEnrollment, CapGlobalSessions},
	RoleOrganizer:  {CapVerify, CapOverride, CapRotateToken},
	RoleAttendee:   {CapVerify},
}

// CapabilitySet is an immutable set of capabilities.
type CapabilitySet map[Capability]struct{}

// Has reports whether c is in the set.
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// List returns the capabilities in a stable order.
func (s CapabilitySet) List() []Capability {
	out := make([]Capability, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// ResolveCapabilities maps role names to the union of their capabilities.
// Unknown roles grant nothing.
func ResolveCapabilities(roles []string) CapabilitySet {
	set := CapabilitySet{}
	for _, role := range roles {
		for _, c := range roleCapabilities[role] {
			set[c] = struct{}{}
		}
	}
	return set
}

// Actor is the authenticated caller with resolved capabilities.
type Actor struct {
	UserID       id.UserID
	Roles        []string
	Capabilities CapabilitySet
}

// NewActor resolves capabilities for userID and roles.
func NewActor(userID id.UserID, roles []string) Actor {
	return Actor{UserID: userID, Roles: roles, Capabilities: ResolveCapabilities(roles)}
}

// ActorFromContext builds the actor from values set by the auth middleware.
func ActorFromContext(ctx context.Context) Actor {
	return NewActor(requestcontext.UserID(ctx), requestcontext.Roles(ctx))
}

// Can reports whether the actor holds c.
func (a Actor) Can(c Capability) bool {
	return a.Capabilities.Has(c)
}

// Require returns a forbidden error unless the actor is authenticated and holds c.
func (a Actor) Require(c Capability) error {
	if a.UserID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !a.Can(c) {
		return dErrors.New(dErrors.CodeForbidden, "missing capability "+string(c))
	}
	return nil
}

// SessionStore is the session lookup the authorizer needs.
type SessionStore interface {
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
}

// Authorizer answers session scoped questions.
type Authorizer struct {
	sessions SessionStore
}

func NewAuthorizer(sessions SessionStore) *Authorizer {
	return &Authorizer{sessions: sessions}
}

// CanOverride reports whether actor may override attendance in sessionID.
func (z *Authorizer) CanOverride(ctx context.Context, actor Actor, sessionID id.SessionID) (bool, error) {
	return z.canManage(ctx, actor, sessionID, CapOverride)
}

// CanRotateToken reports whether actor may issue venue tokens for sessionID.
func (z *Authorizer) CanRotateToken(ctx context.Context, actor Actor, sessionID id.SessionID) (bool, error) {
	return z.canManage(ctx, actor, sessionID, CapRotateToken)
}

func (z *Authorizer) canManage(ctx context.Context, actor Actor, sessionID id.SessionID, c Capability) (bool, error) {
	if actor.UserID.IsNil() || !actor.Can(c) {
		return false, nil
	}
	if actor.Can(CapGlobalSessions) {
		return true, nil
	}
	session, err := z.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, dErrors.New(dErrors.CodeNotFound, "session not found")
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	return session.IsOrganizedBy(actor.UserID), nil
}
