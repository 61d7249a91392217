package adapters

import (
	"context"

	"presence/internal/attendance/ports"
	"presence/internal/biometric"
	enrollmentmodels "presence/internal/enrollment/models"
	id "presence/pkg/domain"
)

// ApprovedEnrollments is satisfied by the enrollment service.
type ApprovedEnrollments interface {
	FindApproved(ctx context.Context, userID id.UserID) (*enrollmentmodels.Enrollment, error)
}

// EnrollmentAdapter implements ports.EnrollmentPort in process.
type EnrollmentAdapter struct {
	enrollments ApprovedEnrollments
}

func NewEnrollmentAdapter(enrollments ApprovedEnrollments) ports.EnrollmentPort {
	return &EnrollmentAdapter{enrollments: enrollments}
}

func (a *EnrollmentAdapter) FindApprovedDescriptor(ctx context.Context, userID id.UserID) (biometric.Descriptor, error) {
	e, err := a.enrollments.FindApproved(ctx, userID)
	if err != nil {
		return nil, err
	}
	return e.Descriptor, nil
}
