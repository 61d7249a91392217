package models

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	id "presence/pkg/domain"
)

// SecretBytes is the entropy of a venue token secret before encoding.
const SecretBytes = 32

// VenueToken is one rotation window of a session's QR secret. Secret is only
// populated on the value returned from issuance; stores keep SecretHash.
type VenueToken struct {
	SessionID  id.SessionID `json:"session_id"`
	Secret     string       `json:"-"`
	SecretHash string       `json:"secret_hash"`
	IssuedAt   time.Time    `json:"issued_at"`
	ValidUntil time.Time    `json:"valid_until"`
}

// NewVenueToken generates a fresh secret valid for [now, now+interval).
func NewVenueToken(sessionID id.SessionID, now time.Time, interval time.Duration) (*VenueToken, error) {
	secret, err := GenerateSecret()
	if err != nil {
		return nil, err
	}
	return &VenueToken{
		SessionID:  sessionID,
		Secret:     secret,
		SecretHash: HashSecret(secret),
		IssuedAt:   now,
		ValidUntil: now.Add(interval),
	}, nil
}

// GenerateSecret returns SecretBytes of crypto randomness, base64url encoded.
func GenerateSecret() (string, error) {
	buf := make([]byte, SecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate venue token secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashSecret returns the hex BLAKE2b-256 digest of secret.
func HashSecret(secret string) string {
	sum := blake2b.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// MatchesHash compares a digest against the token's digest in constant time.
func (t *VenueToken) MatchesHash(hash string) bool {
	return subtle.ConstantTimeCompare([]byte(t.SecretHash), []byte(hash)) == 1
}

// Redacted returns a copy without the plaintext secret.
func (t *VenueToken) Redacted() *VenueToken {
	cp := *t
	cp.Secret = ""
	return &cp
}

// Reason explains a rejected validation.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonUnknown      Reason = "unknown_token"
	ReasonExpired      Reason = "expired_token"
	ReasonSuperseded   Reason = "superseded_token"
	ReasonWrongSession Reason = "wrong_session"
	ReasonClockSkew    Reason = "clock_skew"
)

// Validation is the result of checking a presented secret.
type Validation struct {
	OK     bool
	Reason Reason
}

// Snapshot is what the store saw for one validation: the session's active
// token and the token the presented digest belongs to, read together.
type Snapshot struct {
	Active    *VenueToken
	Presented *VenueToken
}

// Evaluate decides a validation from a consistent snapshot. A token is
// accepted within [IssuedAt-skew, ValidUntil+skew) and only while active.
func Evaluate(snap Snapshot, sessionID id.SessionID, presentedHash string, now time.Time, skew time.Duration) Validation {
	if presentedHash == "" || snap.Presented == nil {
		return Validation{Reason: ReasonUnknown}
	}
	p := snap.Presented
	if p.SessionID != sessionID {
		return Validation{Reason: ReasonWrongSession}
	}
	if snap.Active == nil || !snap.Active.MatchesHash(presentedHash) {
		return Validation{Reason: ReasonSuperseded}
	}
	if now.Before(p.IssuedAt.Add(-skew)) {
		return Validation{Reason: ReasonClockSkew}
	}
	if !now.Before(p.ValidUntil.Add(skew)) {
		return Validation{Reason: ReasonExpired}
	}
	return Validation{OK: true}
}
