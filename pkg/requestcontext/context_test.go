package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	id "presence/pkg/domain"
)

func TestAccessorsReturnZeroValuesWhenUnset(t *testing.T) {
	ctx := context.Background()

	assert.True(t, UserID(ctx).IsNil())
	assert.Nil(t, Roles(ctx))
	assert.Empty(t, Device(ctx))
	assert.Empty(t, ClientIP(ctx))
	assert.Empty(t, RequestID(ctx))
	assert.WithinDuration(t, time.Now(), Now(ctx), time.Second)
}

func TestAccessorsRoundTrip(t *testing.T) {
	userID := id.UserID(uuid.New())
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	ctx := WithUserID(context.Background(), userID)
	ctx = WithRoles(ctx, []string{"admin"})
	ctx = WithDevice(ctx, "Firefox on Linux")
	ctx = WithClientIP(ctx, "10.0.0.1")
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithTime(ctx, fixed)

	assert.Equal(t, userID, UserID(ctx))
	assert.Equal(t, []string{"admin"}, Roles(ctx))
	assert.Equal(t, "Firefox on Linux", Device(ctx))
	assert.Equal(t, "10.0.0.1", ClientIP(ctx))
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, fixed, Now(ctx))
}
