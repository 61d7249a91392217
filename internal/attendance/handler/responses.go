package handler

import (
	"time"

	"presence/internal/attendance/models"
	"presence/internal/attendance/service"
	"presence/internal/biometric"
)

// AttendanceResponse is the HTTP representation of an attendance record.
type AttendanceResponse struct {
	AttendanceID      string           `json:"attendance_id"`
	UserID            string           `json:"user_id"`
	SessionID         string           `json:"session_id"`
	Status            string           `json:"status"`
	EffectiveStatus   string           `json:"effective_status"`
	Method            string           `json:"method,omitempty"`
	Reason            string           `json:"reason,omitempty"`
	FaceMatchScore    *float64         `json:"face_match_score,omitempty"`
	FaceMatch         *bool            `json:"face_match,omitempty"`
	GPSValid          *bool            `json:"gps_valid,omitempty"`
	DistanceFromVenue *float64         `json:"distance_from_venue,omitempty"`
	WebAuthnUsed      bool             `json:"webauthn_used"`
	Factors           *FactorsResponse `json:"factors,omitempty"`
	VerifiedAt        *time.Time       `json:"verified_at,omitempty"`
	OverriddenBy      string           `json:"overridden_by,omitempty"`
	OverriddenAt      *time.Time       `json:"overridden_at,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

// FactorsResponse reports each factor of a verification.
type FactorsResponse struct {
	Token    service.FactorResult `json:"token"`
	Location service.FactorResult `json:"location"`
	Face     service.FactorResult `json:"face"`
	WebAuthn service.FactorResult `json:"webauthn"`
}

// AuditEntryResponse is one entry of an attendance audit trail.
type AuditEntryResponse struct {
	ID              string    `json:"id"`
	ActorID         string    `json:"actor_id"`
	Action          string    `json:"action"`
	PreviousStatus  string    `json:"previous_status"`
	NewStatus       string    `json:"new_status"`
	EffectiveStatus string    `json:"effective_status"`
	Reason          string    `json:"reason,omitempty"`
	Device          string    `json:"device,omitempty"`
	ClientIP        string    `json:"client_ip,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// AuditTrailResponse wraps the trail of one record.
type AuditTrailResponse struct {
	AttendanceID string               `json:"attendance_id"`
	Entries      []AuditEntryResponse `json:"entries"`
}

// FromRecord converts a record to its HTTP response.
func FromRecord(r *models.Record) *AttendanceResponse {
	resp := &AttendanceResponse{
		AttendanceID:      r.ID.String(),
		UserID:            r.UserID.String(),
		SessionID:         r.SessionID.String(),
		Status:            string(r.Status),
		EffectiveStatus:   string(r.EffectiveStatus),
		Method:            string(r.Method),
		Reason:            r.Reason,
		FaceMatch:         r.FaceMatch,
		GPSValid:          r.GPSValid,
		DistanceFromVenue: r.DistanceFromVenue,
		WebAuthnUsed:      r.WebAuthnUsed,
		VerifiedAt:        r.VerifiedAt,
		OverriddenAt:      r.OverriddenAt,
		CreatedAt:         r.CreatedAt,
	}
	if r.FaceMatchScore != nil {
		score := biometric.RoundScore(*r.FaceMatchScore)
		resp.FaceMatchScore = &score
	}
	if r.OverriddenBy != nil {
		resp.OverriddenBy = r.OverriddenBy.String()
	}
	return resp
}

// FromVerifyResult adds the factor breakdown to the record response.
func FromVerifyResult(res *service.VerifyResult) *AttendanceResponse {
	resp := FromRecord(res.Record)
	resp.Factors = &FactorsResponse{
		Token:    res.Factors.Token,
		Location: res.Factors.Location,
		Face:     res.Factors.Face,
		WebAuthn: res.Factors.WebAuthn,
	}
	return resp
}

// FromAuditTrail converts entries, oldest first.
func FromAuditTrail(attendanceID string, entries []*models.AuditEntry) *AuditTrailResponse {
	out := &AuditTrailResponse{AttendanceID: attendanceID, Entries: make([]AuditEntryResponse, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, AuditEntryResponse{
			ID:              e.ID.String(),
			ActorID:         e.ActorID.String(),
			Action:          string(e.Action),
			PreviousStatus:  string(e.PreviousStatus),
			NewStatus:       string(e.NewStatus),
			EffectiveStatus: string(e.EffectiveStatus),
			Reason:          e.Reason,
			Device:          e.Device,
			ClientIP:        e.ClientIP,
			Timestamp:       e.Timestamp,
		})
	}
	return out
}
