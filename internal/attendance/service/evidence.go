package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"presence/internal/attendance/ports"
	"presence/internal/biometric"
	dErrors "presence/pkg/domain-errors"
	"presence/pkg/platform/sentinel"
)

// evidenceTimeout bounds the concurrent token and enrollment lookups.
const evidenceTimeout = 3 * time.Second

// gatheredEvidence holds what the lookups returned.
type gatheredEvidence struct {
	Token      ports.TokenResult
	Enrollment biometric.Descriptor
}

// gatherEvidence runs the token check and the enrollment lookup concurrently.
// Only lookups the request needs are started; the first failure cancels the rest.
func (s *Service) gatherEvidence(ctx context.Context, req VerifyRequest, now time.Time) (*gatheredEvidence, error) {
	ctx, cancel := context.WithTimeout(ctx, evidenceTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	evidence := &gatheredEvidence{}

	if req.Token != "" {
		g.Go(func() error {
			start := time.Now()
			result, err := s.tokens.ValidateToken(ctx, req.SessionID, req.Token, now)
			s.metrics.ObserveEvidenceLatency("token", time.Since(start))
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to validate venue token")
			}
			evidence.Token = result
			return nil
		})
	}

	if len(req.Descriptor) > 0 {
		g.Go(func() error {
			start := time.Now()
			descriptor, err := s.enrollments.FindApprovedDescriptor(ctx, req.UserID)
			s.metrics.ObserveEvidenceLatency("enrollment", time.Since(start))
			if err != nil {
				// No approved baseline is missing evidence, not a failure
				if errors.Is(err, sentinel.ErrNotFound) {
					s.logger.DebugContext(ctx, "no approved enrollment",
						"user_id", req.UserID,
					)
					return nil
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load enrollment")
			}
			evidence.Enrollment = descriptor
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return evidence, nil
}
