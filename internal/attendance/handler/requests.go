package handler

import (
	"strings"

	"presence/internal/attendance/models"
	"presence/internal/attendance/service"
	"presence/internal/biometric"
	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
)

// VerifyRequest is the HTTP request body for POST /attendance/verify.
type VerifyRequest struct {
	SessionID      string           `json:"session_id"`
	Token          string           `json:"token,omitempty"`
	Location       *LocationRequest `json:"location,omitempty"`
	FaceDescriptor []float64        `json:"face_descriptor,omitempty"`
	WebAuthn       *WebAuthnRequest `json:"webauthn,omitempty"`

	// Parsed values (populated by Validate)
	parsedSessionID id.SessionID
}

// LocationRequest holds the claimed device coordinates.
type LocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// WebAuthnRequest is an assertion result verified upstream.
type WebAuthnRequest struct {
	Verified     bool   `json:"verified"`
	CredentialID string `json:"credential_id,omitempty"`
}

// Validate parses identifiers and checks shape. Value ranges are checked by
// the service.
func (r *VerifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.SessionID = strings.TrimSpace(r.SessionID)
	if r.SessionID == "" {
		return dErrors.New(dErrors.CodeValidation, "session_id is required")
	}
	sessionID, err := id.ParseSessionID(r.SessionID)
	if err != nil {
		return err
	}
	r.parsedSessionID = sessionID

	r.Token = strings.TrimSpace(r.Token)
	if r.Location != nil && (r.Location.Latitude == nil || r.Location.Longitude == nil) {
		return dErrors.New(dErrors.CodeValidation, "location requires latitude and longitude")
	}
	return nil
}

// ToServiceRequest builds the service request for userID.
func (r *VerifyRequest) ToServiceRequest(userID id.UserID) service.VerifyRequest {
	req := service.VerifyRequest{
		UserID:    userID,
		SessionID: r.parsedSessionID,
		Token:     r.Token,
	}
	if r.Location != nil {
		req.Coordinates = &service.Coordinates{Latitude: *r.Location.Latitude, Longitude: *r.Location.Longitude}
	}
	if r.FaceDescriptor != nil {
		req.Descriptor = biometric.Descriptor(r.FaceDescriptor)
	}
	if r.WebAuthn != nil {
		req.WebAuthn = &service.WebAuthnAssertion{Verified: r.WebAuthn.Verified, CredentialID: r.WebAuthn.CredentialID}
	}
	return req
}

// OverrideRequest is the HTTP request body for POST /admin/attendance/{attendance_id}/override.
type OverrideRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`

	parsedStatus models.Status
}

func (r *OverrideRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	status, err := models.ParseEffectiveStatus(r.Status)
	if err != nil {
		return err
	}
	r.parsedStatus = status
	if strings.TrimSpace(r.Reason) == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	return nil
}

// ParsedStatus returns the validated effective status.
func (r *OverrideRequest) ParsedStatus() models.Status {
	return r.parsedStatus
}
