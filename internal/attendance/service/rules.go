package service

import (
	"strings"

	"presence/internal/attendance/models"
	"presence/internal/attendance/ports"
	"presence/internal/biometric"
	"presence/internal/geofence"
)

// Machine reasons recorded on rejected outcomes.
const (
	ReasonTokenMissing            = "token_missing"
	ReasonLocationMissing         = "location_missing"
	ReasonOutsideGeofence         = "outside_geofence"
	ReasonFaceMissing             = "face_missing"
	ReasonEnrollmentMissing       = "enrollment_missing"
	ReasonFaceMismatch            = "face_mismatch"
	ReasonFaceScoreBelowThreshold = "face_score_below_threshold"
	ReasonWebAuthnMissing         = "webauthn_missing"
	ReasonWebAuthnFailed          = "webauthn_failed"
	ReasonNoEvidence              = "no_evidence"
)

// FactorResult is the independent evaluation of one evidence factor.
type FactorResult struct {
	Required  bool   `json:"required"`
	Evaluated bool   `json:"evaluated"`
	Passed    bool   `json:"passed"`
	Reason    string `json:"reason,omitempty"`
}

// Outcome is the metrics label of a factor result.
func (f FactorResult) Outcome() string {
	switch {
	case f.Passed:
		return "passed"
	case f.Evaluated:
		return "failed"
	case f.Reason != "":
		return "missing"
	default:
		return "not_presented"
	}
}

// Factors holds the result of every factor for one verification.
type Factors struct {
	Token    FactorResult `json:"token"`
	Location FactorResult `json:"location"`
	Face     FactorResult `json:"face"`
	WebAuthn FactorResult `json:"webauthn"`
}

// Requirements says which factors must pass.
type Requirements struct {
	Token    bool
	Location bool
	Face     bool
	WebAuthn bool
}

// RequirementsFor derives requirements from the session flags. Presenting a
// descriptor makes the face factor required.
func RequirementsFor(session *ports.Session, descriptorPresented bool) Requirements {
	return Requirements{
		Token:    session.RequireQR,
		Location: session.EnforceLocation,
		Face:     session.RequireFace || descriptorPresented,
		WebAuthn: session.RequireWebAuthn,
	}
}

// FactorEvidence is everything the rules need, already fetched and computed.
type FactorEvidence struct {
	TokenPresented bool
	Token          ports.TokenResult

	Location *geofence.Result

	DescriptorPresented bool
	EnrollmentFound     bool
	Face                *biometric.Comparison

	WebAuthn *WebAuthnAssertion
}

// EvaluateFactors evaluates each factor on its own. Pure.
func EvaluateFactors(req Requirements, ev FactorEvidence, faceMatchThreshold float64) Factors {
	return Factors{
		Token:    evaluateToken(req.Token, ev),
		Location: evaluateLocation(req.Location, ev),
		Face:     evaluateFace(req.Face, ev, faceMatchThreshold),
		WebAuthn: evaluateWebAuthn(req.WebAuthn, ev),
	}
}

func evaluateToken(required bool, ev FactorEvidence) FactorResult {
	r := FactorResult{Required: required}
	if !ev.TokenPresented {
		if required {
			r.Reason = ReasonTokenMissing
		}
		return r
	}
	r.Evaluated = true
	r.Passed = ev.Token.OK
	if !r.Passed {
		reason := strings.TrimSuffix(ev.Token.Reason, "_token")
		if reason == "" {
			reason = "unknown"
		}
		r.Reason = "token_" + reason
	}
	return r
}

func evaluateLocation(required bool, ev FactorEvidence) FactorResult {
	r := FactorResult{Required: required}
	if ev.Location == nil {
		if required {
			r.Reason = ReasonLocationMissing
		}
		return r
	}
	r.Evaluated = true
	r.Passed = ev.Location.WithinRadius
	if !r.Passed {
		r.Reason = ReasonOutsideGeofence
	}
	return r
}

// evaluateFace accepts only when the distance matches and the score reaches
// the configured threshold.
func evaluateFace(required bool, ev FactorEvidence, threshold float64) FactorResult {
	r := FactorResult{Required: required}
	switch {
	case !ev.DescriptorPresented:
		if required {
			r.Reason = ReasonFaceMissing
		}
		return r
	case !ev.EnrollmentFound || ev.Face == nil:
		r.Reason = ReasonEnrollmentMissing
		return r
	}
	r.Evaluated = true
	switch {
	case !ev.Face.Match:
		r.Reason = ReasonFaceMismatch
	case ev.Face.Score < threshold:
		r.Reason = ReasonFaceScoreBelowThreshold
	default:
		r.Passed = true
	}
	return r
}

func evaluateWebAuthn(required bool, ev FactorEvidence) FactorResult {
	r := FactorResult{Required: required}
	if ev.WebAuthn == nil {
		if required {
			r.Reason = ReasonWebAuthnMissing
		}
		return r
	}
	r.Evaluated = true
	r.Passed = ev.WebAuthn.Verified
	if !r.Passed {
		r.Reason = ReasonWebAuthnFailed
	}
	return r
}

// Decide applies the composite policy. The outcome is verified iff every
// required factor passed and at least one factor passed; otherwise rejected
// with the reason of the first failing required factor. When nothing
// passed, the first failing optional factor names the reason, and
// ReasonNoEvidence only when no factor failed. Never pending.
func Decide(f Factors) (models.Status, string) {
	ordered := []FactorResult{f.Token, f.Location, f.Face, f.WebAuthn}
	anyPassed := false
	firstFailure := ""
	for _, r := range ordered {
		if r.Required && !r.Passed {
			return models.StatusRejected, r.Reason
		}
		anyPassed = anyPassed || r.Passed
		if !r.Passed && r.Reason != "" && firstFailure == "" {
			firstFailure = r.Reason
		}
	}
	if anyPassed {
		return models.StatusVerified, ""
	}
	if firstFailure != "" {
		return models.StatusRejected, firstFailure
	}
	return models.StatusRejected, ReasonNoEvidence
}

// Method labels the factors that were evaluated.
func (f Factors) Method() models.Method {
	return models.LabelMethod(f.Token.Evaluated, f.Location.Evaluated, f.Face.Evaluated, f.WebAuthn.Evaluated)
}
