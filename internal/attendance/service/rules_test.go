package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"presence/internal/attendance/models"
	"presence/internal/attendance/ports"
	"presence/internal/biometric"
	"presence/internal/geofence"
)

func TestRequirementsFor(t *testing.T) {
	sess := &ports.Session{RequireQR: true}
	assert.Equal(t, Requirements{Token: true}, RequirementsFor(sess, false))
	assert.Equal(t, Requirements{Token: true, Face: true}, RequirementsFor(sess, true), "a presented descriptor must match")
}

func TestEvaluateToken(t *testing.T) {
	tests := []struct {
		name     string
		required bool
		ev       FactorEvidence
		want     FactorResult
	}{
		{"not presented, optional", false, FactorEvidence{}, FactorResult{}},
		{"not presented, required", true, FactorEvidence{}, FactorResult{Required: true, Reason: ReasonTokenMissing}},
		{"valid", true, FactorEvidence{TokenPresented: true, Token: ports.TokenResult{OK: true}},
			FactorResult{Required: true, Evaluated: true, Passed: true}},
		{"superseded", false, FactorEvidence{TokenPresented: true, Token: ports.TokenResult{Reason: "superseded_token"}},
			FactorResult{Evaluated: true, Reason: "token_superseded"}},
		{"wrong session", true, FactorEvidence{TokenPresented: true, Token: ports.TokenResult{Reason: "wrong_session"}},
			FactorResult{Required: true, Evaluated: true, Reason: "token_wrong_session"}},
		{"rejected without reason", true, FactorEvidence{TokenPresented: true},
			FactorResult{Required: true, Evaluated: true, Reason: "token_unknown"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateFactors(Requirements{Token: tt.required}, tt.ev, 70).Token)
		})
	}
}

func TestEvaluateFace(t *testing.T) {
	match := &biometric.Comparison{Distance: 0.2, Match: true, Score: 80}
	weak := &biometric.Comparison{Distance: 0.45, Match: true, Score: 55}
	other := &biometric.Comparison{Distance: 0.9, Match: false, Score: 10}
	edge := &biometric.Comparison{Distance: 0.30004, Match: true, Score: biometric.Score(0.30004)}

	tests := []struct {
		name string
		ev   FactorEvidence
		want FactorResult
	}{
		{"missing", FactorEvidence{}, FactorResult{Required: true, Reason: ReasonFaceMissing}},
		{"no enrollment", FactorEvidence{DescriptorPresented: true}, FactorResult{Required: true, Reason: ReasonEnrollmentMissing}},
		{"match", FactorEvidence{DescriptorPresented: true, EnrollmentFound: true, Face: match},
			FactorResult{Required: true, Evaluated: true, Passed: true}},
		{"match below score threshold", FactorEvidence{DescriptorPresented: true, EnrollmentFound: true, Face: weak},
			FactorResult{Required: true, Evaluated: true, Reason: ReasonFaceScoreBelowThreshold}},
		{"raw score just under threshold", FactorEvidence{DescriptorPresented: true, EnrollmentFound: true, Face: edge},
			FactorResult{Required: true, Evaluated: true, Reason: ReasonFaceScoreBelowThreshold}},
		{"mismatch", FactorEvidence{DescriptorPresented: true, EnrollmentFound: true, Face: other},
			FactorResult{Required: true, Evaluated: true, Reason: ReasonFaceMismatch}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateFactors(Requirements{Face: true}, tt.ev, 70).Face)
		})
	}
}

func TestEvaluateLocationAndWebAuthn(t *testing.T) {
	inside := &geofence.Result{DistanceMeters: 12, WithinRadius: true}
	outside := &geofence.Result{DistanceMeters: 150}

	f := EvaluateFactors(Requirements{Location: true, WebAuthn: true}, FactorEvidence{Location: inside}, 70)
	assert.True(t, f.Location.Passed)
	assert.Equal(t, ReasonWebAuthnMissing, f.WebAuthn.Reason)

	f = EvaluateFactors(Requirements{}, FactorEvidence{Location: outside, WebAuthn: &WebAuthnAssertion{}}, 70)
	assert.Equal(t, ReasonOutsideGeofence, f.Location.Reason)
	assert.Equal(t, ReasonWebAuthnFailed, f.WebAuthn.Reason)
	assert.True(t, f.WebAuthn.Evaluated)
}

func TestDecide(t *testing.T) {
	pass := FactorResult{Evaluated: true, Passed: true}
	requiredPass := FactorResult{Required: true, Evaluated: true, Passed: true}

	tests := []struct {
		name   string
		f      Factors
		status models.Status
		reason string
	}{
		{"nothing presented", Factors{}, models.StatusRejected, ReasonNoEvidence},
		{"single optional factor passes", Factors{Location: pass}, models.StatusVerified, ""},
		{"optional failure does not decide", Factors{Token: pass, Location: FactorResult{Evaluated: true, Reason: ReasonOutsideGeofence}},
			models.StatusVerified, ""},
		{"first failing required factor wins", Factors{
			Token:    FactorResult{Required: true, Reason: ReasonTokenMissing},
			Location: FactorResult{Required: true, Evaluated: true, Reason: ReasonOutsideGeofence},
		}, models.StatusRejected, ReasonTokenMissing},
		{"lone optional failure names its reason", Factors{Token: FactorResult{Evaluated: true, Reason: "token_superseded"}},
			models.StatusRejected, "token_superseded"},
		{"first optional failure wins", Factors{
			Token:    FactorResult{Evaluated: true, Reason: "token_expired"},
			Location: FactorResult{Evaluated: true, Reason: ReasonOutsideGeofence},
		}, models.StatusRejected, "token_expired"},
		{"every required factor passes", Factors{Token: requiredPass, Location: requiredPass, Face: requiredPass, WebAuthn: requiredPass},
			models.StatusVerified, ""},
		{"required webauthn failed", Factors{Token: requiredPass, WebAuthn: FactorResult{Required: true, Evaluated: true, Reason: ReasonWebAuthnFailed}},
			models.StatusRejected, ReasonWebAuthnFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, reason := Decide(tt.f)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.reason, reason)
			assert.NotEqual(t, models.StatusPending, status)
		})
	}
}

func TestFactorOutcome(t *testing.T) {
	assert.Equal(t, "passed", FactorResult{Evaluated: true, Passed: true}.Outcome())
	assert.Equal(t, "failed", FactorResult{Evaluated: true}.Outcome())
	assert.Equal(t, "missing", FactorResult{Required: true, Reason: ReasonFaceMissing}.Outcome())
	assert.Equal(t, "not_presented", FactorResult{}.Outcome())
}

func TestFactorsMethod(t *testing.T) {
	assert.Equal(t, models.MethodComposite, Factors{Token: FactorResult{Evaluated: true}, Location: FactorResult{Evaluated: true}}.Method())
	assert.Equal(t, models.MethodNone, Factors{Token: FactorResult{Reason: ReasonTokenMissing}}.Method())
}
