package ports

import (
	"context"

	"presence/internal/biometric"
	id "presence/pkg/domain"
)

// EnrollmentPort supplies the approved baseline descriptor of a user.
// Missing or unapproved enrollments return sentinel.ErrNotFound.
type EnrollmentPort interface {
	FindApprovedDescriptor(ctx context.Context, userID id.UserID) (biometric.Descriptor, error)
}
