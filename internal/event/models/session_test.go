package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
)

func validSession() *Session {
	now := time.Now()
	return &Session{
		ID:          id.SessionID(uuid.New()),
		OrganizerID: id.UserID(uuid.New()),
		StartsAt:    now,
		EndsAt:      now.Add(time.Hour),
	}
}

func TestEffectiveRadius(t *testing.T) {
	s := validSession()
	assert.Equal(t, 100, s.EffectiveRadius(100))

	r := 250
	s.RadiusMeters = &r
	assert.Equal(t, 250, s.EffectiveRadius(100))
}

func TestIsOrganizedBy(t *testing.T) {
	s := validSession()
	assert.True(t, s.IsOrganizedBy(s.OrganizerID))
	assert.False(t, s.IsOrganizedBy(id.UserID(uuid.New())))
	assert.False(t, s.IsOrganizedBy(id.UserID{}))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validSession().Validate())

	s := validSession()
	zero := 0
	s.RadiusMeters = &zero
	assert.True(t, dErrors.HasCode(s.Validate(), dErrors.CodeInvariantViolation))

	s = validSession()
	s.EndsAt = s.StartsAt.Add(-time.Minute)
	assert.True(t, dErrors.HasCode(s.Validate(), dErrors.CodeInvariantViolation))

	s = validSession()
	s.OrganizerID = id.UserID{}
	assert.True(t, dErrors.HasCode(s.Validate(), dErrors.CodeInvariantViolation))
}
