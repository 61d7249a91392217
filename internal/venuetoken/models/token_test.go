package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "presence/pkg/domain"
)

func TestNewVenueToken(t *testing.T) {
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	sessionID := id.SessionID(uuid.New())

	tok, err := NewVenueToken(sessionID, now, 5*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, now.Add(5*time.Minute), tok.ValidUntil)
	assert.Len(t, tok.Secret, 43) // 32 bytes, unpadded base64url
	assert.Equal(t, HashSecret(tok.Secret), tok.SecretHash)
	assert.Len(t, tok.SecretHash, 64)
	assert.Empty(t, tok.Redacted().Secret)
	assert.NotEmpty(t, tok.Secret, "redaction must not mutate the original")

	other, err := NewVenueToken(sessionID, now, 5*time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, tok.Secret, other.Secret)
}

func TestEvaluate(t *testing.T) {
	issued := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	sessionID := id.SessionID(uuid.New())
	active := &VenueToken{SessionID: sessionID, SecretHash: HashSecret("current"), IssuedAt: issued, ValidUntil: issued.Add(5 * time.Minute)}
	old := &VenueToken{SessionID: sessionID, SecretHash: HashSecret("old"), IssuedAt: issued.Add(-5 * time.Minute), ValidUntil: issued}
	foreign := &VenueToken{SessionID: id.SessionID(uuid.New()), SecretHash: HashSecret("foreign"), IssuedAt: issued, ValidUntil: issued.Add(5 * time.Minute)}

	tests := []struct {
		name string
		snap Snapshot
		hash string
		now  time.Time
		skew time.Duration
		want Validation
	}{
		{"at issued_at is accepted", Snapshot{active, active}, active.SecretHash, issued, 0, Validation{OK: true}},
		{"just before valid_until is accepted", Snapshot{active, active}, active.SecretHash, issued.Add(5*time.Minute - time.Nanosecond), 0, Validation{OK: true}},
		{"at valid_until is expired", Snapshot{active, active}, active.SecretHash, issued.Add(5 * time.Minute), 0, Validation{Reason: ReasonExpired}},
		{"before issued_at is clock skew", Snapshot{active, active}, active.SecretHash, issued.Add(-time.Second), 0, Validation{Reason: ReasonClockSkew}},
		{"before issued_at within tolerance is accepted", Snapshot{active, active}, active.SecretHash, issued.Add(-time.Second), 2 * time.Second, Validation{OK: true}},
		{"after valid_until within tolerance is accepted", Snapshot{active, active}, active.SecretHash, issued.Add(5*time.Minute + time.Second), 2 * time.Second, Validation{OK: true}},
		{"superseded token fails even inside its window", Snapshot{active, old}, old.SecretHash, issued.Add(-time.Minute), 0, Validation{Reason: ReasonSuperseded}},
		{"token of another session", Snapshot{active, foreign}, foreign.SecretHash, issued, 0, Validation{Reason: ReasonWrongSession}},
		{"unknown digest", Snapshot{Active: active}, HashSecret("guess"), issued, 0, Validation{Reason: ReasonUnknown}},
		{"empty secret", Snapshot{Active: active}, "", issued, 0, Validation{Reason: ReasonUnknown}},
		{"no active token", Snapshot{Presented: old}, old.SecretHash, issued.Add(-time.Minute), 0, Validation{Reason: ReasonSuperseded}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.snap, sessionID, tt.hash, tt.now, tt.skew))
		})
	}
}
