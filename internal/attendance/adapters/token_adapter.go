package adapters

import (
	"context"
	"time"

	"presence/internal/attendance/ports"
	venuemodels "presence/internal/venuetoken/models"
	id "presence/pkg/domain"
)

// TokenValidator is satisfied by the venue token service.
type TokenValidator interface {
	Validate(ctx context.Context, sessionID id.SessionID, secret string, now time.Time) (venuemodels.Validation, error)
}

// TokenAdapter implements ports.TokenPort in process.
type TokenAdapter struct {
	tokens TokenValidator
}

func NewTokenAdapter(tokens TokenValidator) ports.TokenPort {
	return &TokenAdapter{tokens: tokens}
}

func (a *TokenAdapter) ValidateToken(ctx context.Context, sessionID id.SessionID, secret string, now time.Time) (ports.TokenResult, error) {
	v, err := a.tokens.Validate(ctx, sessionID, secret, now)
	if err != nil {
		return ports.TokenResult{}, err
	}
	return ports.TokenResult{OK: v.OK, Reason: string(v.Reason)}, nil
}
