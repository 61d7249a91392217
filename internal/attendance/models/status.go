package models

import (
	"strings"

	dErrors "presence/pkg/domain-errors"
)

// Status is the lifecycle state of an attendance record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusVerified   Status = "verified"
	StatusRejected   Status = "rejected"
	StatusOverridden Status = "overridden"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusRejected, StatusOverridden:
		return true
	}
	return false
}

// IsDecided reports whether the record left pending through automatic evaluation.
func (s Status) IsDecided() bool {
	return s == StatusVerified || s == StatusRejected
}

// CanTransitionTo encodes the forward-only state machine:
//
//	pending -> verified | rejected | overridden
//	verified | rejected -> overridden
//	overridden is terminal
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusVerified || target == StatusRejected || target == StatusOverridden
	case StatusVerified, StatusRejected:
		return target == StatusOverridden
	default:
		return false
	}
}

// ParseEffectiveStatus parses the administrator's determination for an override.
func ParseEffectiveStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusVerified, StatusRejected:
		return st, nil
	case "":
		return "", dErrors.New(dErrors.CodeValidation, "status is required")
	default:
		return "", dErrors.New(dErrors.CodeValidation, "status must be verified or rejected")
	}
}

// Method labels the highest-assurance factor evaluated for a record.
type Method string

const (
	MethodNone      Method = ""
	MethodQR        Method = "qr"
	MethodGPS       Method = "gps"
	MethodFace      Method = "face"
	MethodWebAuthn  Method = "webauthn"
	MethodComposite Method = "composite"
)

// LabelMethod picks the label from the factors that were evaluated, whatever
// their result: webauthn > face > qr+gps > single factor.
func LabelMethod(token, location, face, webauthn bool) Method {
	switch {
	case webauthn:
		return MethodWebAuthn
	case face:
		return MethodFace
	case token && location:
		return MethodComposite
	case token:
		return MethodQR
	case location:
		return MethodGPS
	default:
		return MethodNone
	}
}
