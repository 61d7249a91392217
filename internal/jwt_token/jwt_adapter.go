package jwttoken

import (
	authmw "presence/pkg/platform/middleware/auth"
	pstrings "presence/pkg/platform/strings"
)

// Validator exposes a JWTService to the auth middleware.
type Validator struct {
	service *JWTService
}

// Validator returns the middleware view of s.
func (s *JWTService) Validator() Validator {
	return Validator{service: s}
}

// ValidateToken implements authmw.JWTValidator. Tokens that only carry the
// registered subject still identify the caller. Role names are normalized
// before capabilities are resolved from them.
func (v Validator) ValidateToken(raw string) (*authmw.JWTClaims, error) {
	claims, err := v.service.ValidateToken(raw)
	if err != nil {
		return nil, err
	}
	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	return &authmw.JWTClaims{UserID: userID, Roles: pstrings.NormalizeSet(claims.Roles), JTI: claims.ID}, nil
}

var _ authmw.JWTValidator = Validator{}
