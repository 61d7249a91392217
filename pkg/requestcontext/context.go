// Package requestcontext carries request-scoped values through a context so
// services can read the caller, the request clock and client metadata
// without importing net/http. Middleware sets the values; tests set them
// directly:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithDevice(ctx, "Safari on iOS")
package requestcontext

import (
	"context"
	"time"

	id "presence/pkg/domain"
)

type key int

const (
	userIDKey key = iota
	rolesKey
	deviceKey
	clientIPKey
	requestIDKey
	requestTimeKey
)

func value[T any](ctx context.Context, k key) T {
	v, _ := ctx.Value(k).(T)
	return v
}

// UserID is the authenticated caller, or the nil ID for anonymous requests.
func UserID(ctx context.Context) id.UserID { return value[id.UserID](ctx, userIDKey) }

func WithUserID(ctx context.Context, userID id.UserID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Roles are the role names from the caller's access token.
func Roles(ctx context.Context) []string { return value[[]string](ctx, rolesKey) }

func WithRoles(ctx context.Context, roles []string) context.Context {
	return context.WithValue(ctx, rolesKey, roles)
}

// Device is the label derived from the User-Agent, e.g. "Chrome on Android".
func Device(ctx context.Context) string { return value[string](ctx, deviceKey) }

func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, deviceKey, device)
}

// ClientIP is the caller address as seen by the edge middleware.
func ClientIP(ctx context.Context) string { return value[string](ctx, clientIPKey) }

func WithClientIP(ctx context.Context, clientIP string) context.Context {
	return context.WithValue(ctx, clientIPKey, clientIP)
}

func RequestID(ctx context.Context) string { return value[string](ctx, requestIDKey) }

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// Now is the instant pinned for this request. Outside a request (workers,
// tests without a pinned time) it is the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey, t)
}
