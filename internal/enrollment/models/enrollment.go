package models

import (
	"time"

	"presence/internal/biometric"
	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
)

// Status is the review state of a biometric enrollment.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether a review may move the enrollment to target.
// Only pending enrollments are reviewed; a reviewed enrollment is replaced by
// resubmitting, which starts a new pending review.
func (s Status) CanTransitionTo(target Status) bool {
	return s == StatusPending && (target == StatusApproved || target == StatusRejected)
}

// Enrollment is a user's reference face descriptor.
//
// Invariants:
//   - Descriptor always passes biometric.ValidateDescriptor
//   - ReviewedBy and ReviewedAt are set together, only once reviewed
//   - only approved enrollments are used as a matching baseline
type Enrollment struct {
	UserID     id.UserID            `json:"user_id"`
	Descriptor biometric.Descriptor `json:"-"`
	Status     Status               `json:"status"`
	ReviewedBy *id.UserID           `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time           `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// NewEnrollment builds a pending enrollment from a validated descriptor.
func NewEnrollment(userID id.UserID, descriptor biometric.Descriptor, now time.Time) (*Enrollment, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	if err := biometric.ValidateDescriptor(descriptor); err != nil {
		return nil, err
	}
	d := make(biometric.Descriptor, len(descriptor))
	copy(d, descriptor)
	return &Enrollment{
		UserID:     userID,
		Descriptor: d,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (e *Enrollment) IsApproved() bool {
	return e.Status == StatusApproved
}

// CanReview checks the enrollment may move to target.
func (e *Enrollment) CanReview(target Status) error {
	if !e.Status.CanTransitionTo(target) {
		return dErrors.New(dErrors.CodeInvariantViolation, "enrollment is already "+string(e.Status))
	}
	return nil
}

// ApplyReview records the review. Call CanReview first.
func (e *Enrollment) ApplyReview(target Status, reviewer id.UserID, now time.Time) {
	e.Status = target
	e.ReviewedBy = &reviewer
	reviewedAt := now
	e.ReviewedAt = &reviewedAt
	e.UpdatedAt = now
}

// Review validates and applies a review in one call.
func (e *Enrollment) Review(target Status, reviewer id.UserID, now time.Time) error {
	if err := e.CanReview(target); err != nil {
		return err
	}
	e.ApplyReview(target, reviewer, now)
	return nil
}
