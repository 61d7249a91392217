package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presence/internal/biometric"
	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
)

func descriptor(v float64) biometric.Descriptor {
	d := make(biometric.Descriptor, biometric.DescriptorLength)
	for i := range d {
		d[i] = v
	}
	return d
}

func TestNewEnrollment(t *testing.T) {
	now := time.Now()
	userID := id.UserID(uuid.New())

	t.Run("valid descriptor starts pending", func(t *testing.T) {
		e, err := NewEnrollment(userID, descriptor(0.1), now)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, e.Status)
		assert.Nil(t, e.ReviewedAt)
	})

	t.Run("descriptor is copied", func(t *testing.T) {
		d := descriptor(0.1)
		e, err := NewEnrollment(userID, d, now)
		require.NoError(t, err)
		d[0] = 0.9
		assert.InDelta(t, 0.1, e.Descriptor[0], 1e-12)
	})

	t.Run("rejects short descriptor", func(t *testing.T) {
		_, err := NewEnrollment(userID, descriptor(0.1)[:64], now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects nil user", func(t *testing.T) {
		_, err := NewEnrollment(id.UserID(uuid.Nil), descriptor(0.1), now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestReview(t *testing.T) {
	now := time.Now()
	reviewer := id.UserID(uuid.New())

	t.Run("pending can be approved once", func(t *testing.T) {
		e, err := NewEnrollment(id.UserID(uuid.New()), descriptor(0), now)
		require.NoError(t, err)

		require.NoError(t, e.Review(StatusApproved, reviewer, now.Add(time.Minute)))
		assert.True(t, e.IsApproved())
		assert.Equal(t, reviewer, *e.ReviewedBy)

		err = e.Review(StatusRejected, reviewer, now.Add(2*time.Minute))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		assert.True(t, e.IsApproved())
	})

	t.Run("pending is not a review target", func(t *testing.T) {
		e, err := NewEnrollment(id.UserID(uuid.New()), descriptor(0), now)
		require.NoError(t, err)
		assert.Error(t, e.CanReview(StatusPending))
	})
}
