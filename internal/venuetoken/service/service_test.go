package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"presence/internal/authz"
	"presence/internal/venuetoken/models"
	"presence/internal/venuetoken/store"
	id "presence/pkg/domain"
	dErrors "presence/pkg/domain-errors"
	"presence/pkg/platform/audit"
	auditmemory "presence/pkg/platform/audit/store/memory"
	"presence/pkg/requestcontext"
)

type stubAuthorizer struct {
	allow bool
	err   error
}

func (a stubAuthorizer) CanRotateToken(context.Context, authz.Actor, id.SessionID) (bool, error) {
	return a.allow, a.err
}

type failingStore struct{}

func (failingStore) Rotate(context.Context, *models.VenueToken) error {
	return errors.New("redis down")
}

func (failingStore) Snapshot(context.Context, id.SessionID, string) (models.Snapshot, error) {
	return models.Snapshot{}, errors.New("redis down")
}

type ServiceSuite struct {
	suite.Suite
	store   *store.InMemory
	outbox  *auditmemory.InMemoryStore
	service *Service
	session id.SessionID
	now     time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewInMemory(store.DefaultHistory)
	s.outbox = auditmemory.NewInMemoryStore()
	s.session = id.SessionID(uuid.New())
	s.now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc, err := New(s.store,
		WithRotationInterval(5*time.Minute),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuthorizer(stubAuthorizer{allow: true}),
		WithAuditPublisher(s.outbox),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *ServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil)
		s.Error(err)
	})

	s.Run("non-positive interval keeps default", func() {
		svc, err := New(s.store, WithRotationInterval(0))
		s.Require().NoError(err)
		s.Equal(DefaultRotationInterval, svc.interval)
	})
}

func (s *ServiceSuite) TestIssue() {
	s.Run("issued token carries secret and window", func() {
		tok, err := s.service.Issue(context.Background(), s.session, s.now)
		s.Require().NoError(err)
		s.NotEmpty(tok.Secret)
		s.Equal(models.HashSecret(tok.Secret), tok.SecretHash)
		s.Equal(s.now, tok.IssuedAt)
		s.Equal(s.now.Add(5*time.Minute), tok.ValidUntil)
	})

	s.Run("nil session is a validation error", func() {
		_, err := s.service.Issue(context.Background(), id.SessionID(uuid.Nil), s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("store failure is internal", func() {
		svc, err := New(failingStore{})
		s.Require().NoError(err)
		_, err = svc.Issue(context.Background(), s.session, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestValidateWindow() {
	ctx := context.Background()
	tok, err := s.service.Issue(ctx, s.session, s.now)
	s.Require().NoError(err)

	cases := []struct {
		name   string
		at     time.Time
		ok     bool
		reason models.Reason
	}{
		{"at issued_at", tok.IssuedAt, true, models.ReasonNone},
		{"inside window", tok.IssuedAt.Add(2 * time.Minute), true, models.ReasonNone},
		{"just before valid_until", tok.ValidUntil.Add(-time.Nanosecond), true, models.ReasonNone},
		{"at valid_until", tok.ValidUntil, false, models.ReasonExpired},
		{"after valid_until", tok.ValidUntil.Add(time.Minute), false, models.ReasonExpired},
		{"before issued_at", tok.IssuedAt.Add(-time.Second), false, models.ReasonClockSkew},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			v, err := s.service.Validate(ctx, s.session, tok.Secret, tc.at)
			s.Require().NoError(err)
			s.Equal(tc.ok, v.OK)
			s.Equal(tc.reason, v.Reason)
		})
	}
}

func (s *ServiceSuite) TestValidateRejections() {
	ctx := context.Background()

	s.Run("empty secret is unknown", func() {
		v, err := s.service.Validate(ctx, s.session, "", s.now)
		s.Require().NoError(err)
		s.Equal(models.ReasonUnknown, v.Reason)
	})

	s.Run("never issued secret is unknown", func() {
		v, err := s.service.Validate(ctx, s.session, "not-a-token", s.now)
		s.Require().NoError(err)
		s.False(v.OK)
		s.Equal(models.ReasonUnknown, v.Reason)
	})

	s.Run("superseded token is rejected while time valid", func() {
		first, err := s.service.Issue(ctx, s.session, s.now)
		s.Require().NoError(err)
		_, err = s.service.Issue(ctx, s.session, s.now.Add(time.Second))
		s.Require().NoError(err)

		v, err := s.service.Validate(ctx, s.session, first.Secret, s.now.Add(2*time.Second))
		s.Require().NoError(err)
		s.False(v.OK)
		s.Equal(models.ReasonSuperseded, v.Reason)
	})

	s.Run("token from another session", func() {
		other := id.SessionID(uuid.New())
		tok, err := s.service.Issue(ctx, other, s.now)
		s.Require().NoError(err)

		v, err := s.service.Validate(ctx, s.session, tok.Secret, s.now)
		s.Require().NoError(err)
		s.Equal(models.ReasonWrongSession, v.Reason)
	})

	s.Run("store failure is internal", func() {
		svc, err := New(failingStore{})
		s.Require().NoError(err)
		_, err = svc.Validate(ctx, s.session, "abc", s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestClockSkewTolerance() {
	ctx := context.Background()
	svc, err := New(s.store, WithRotationInterval(time.Minute), WithClockSkew(5*time.Second))
	s.Require().NoError(err)
	tok, err := svc.Issue(ctx, s.session, s.now)
	s.Require().NoError(err)

	v, err := svc.Validate(ctx, s.session, tok.Secret, s.now.Add(-3*time.Second))
	s.Require().NoError(err)
	s.True(v.OK)

	v, err = svc.Validate(ctx, s.session, tok.Secret, tok.ValidUntil.Add(4*time.Second))
	s.Require().NoError(err)
	s.True(v.OK)

	v, err = svc.Validate(ctx, s.session, tok.Secret, tok.ValidUntil.Add(5*time.Second))
	s.Require().NoError(err)
	s.Equal(models.ReasonExpired, v.Reason)
}

func (s *ServiceSuite) TestConcurrentValidateDoesNotConsume() {
	ctx := context.Background()
	tok, err := s.service.Issue(ctx, s.session, s.now)
	s.Require().NoError(err)

	const n = 32
	results := make([]models.Validation, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = s.service.Validate(ctx, s.session, tok.Secret, s.now.Add(time.Second))
		}()
	}
	wg.Wait()
	for _, v := range results {
		s.True(v.OK)
	}
}

func (s *ServiceSuite) TestRotate() {
	organizer := authz.NewActor(id.UserID(uuid.New()), []string{authz.RoleOrganizer})
	ctx := requestcontext.WithTime(context.Background(), s.now)

	s.Run("organizer rotates and issuance is recorded", func() {
		tok, err := s.service.Rotate(ctx, organizer, s.session)
		s.Require().NoError(err)
		s.Equal(s.now, tok.IssuedAt)

		entries := s.outbox.All()
		s.Require().NotEmpty(entries)
		last := entries[len(entries)-1]
		s.Equal(audit.EventVenueTokenIssued, last.EventType)
		s.Equal(s.session.String(), last.AggregateID)
		s.NotContains(string(last.Payload), tok.Secret)
	})

	s.Run("attendee lacks capability", func() {
		attendee := authz.NewActor(id.UserID(uuid.New()), []string{authz.RoleAttendee})
		_, err := s.service.Rotate(ctx, attendee, s.session)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("anonymous actor is unauthorized", func() {
		_, err := s.service.Rotate(ctx, authz.Actor{}, s.session)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("organizer of another session is forbidden", func() {
		svc, err := New(s.store, WithAuthorizer(stubAuthorizer{allow: false}))
		s.Require().NoError(err)
		_, err = svc.Rotate(ctx, organizer, s.session)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("authorizer error propagates", func() {
		svc, err := New(s.store, WithAuthorizer(stubAuthorizer{err: dErrors.New(dErrors.CodeNotFound, "session not found")}))
		s.Require().NoError(err)
		_, err = svc.Rotate(ctx, organizer, s.session)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
