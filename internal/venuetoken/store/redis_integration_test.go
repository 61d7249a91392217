//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"presence/internal/venuetoken/models"
	"presence/internal/venuetoken/store"
	id "presence/pkg/domain"
	"presence/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.Redis
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = store.NewRedis(s.redis.Client, time.Hour)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestRotateAndSnapshot() {
	ctx := context.Background()
	sessionID := id.SessionID(uuid.New())
	now := time.Now()

	first, err := models.NewVenueToken(sessionID, now, 5*time.Minute)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Rotate(ctx, first))

	second, err := models.NewVenueToken(sessionID, now.Add(time.Minute), 5*time.Minute)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Rotate(ctx, second))

	snap, err := s.store.Snapshot(ctx, sessionID, first.SecretHash)
	s.Require().NoError(err)
	s.Require().NotNil(snap.Active)
	s.Require().NotNil(snap.Presented)
	s.Equal(second.SecretHash, snap.Active.SecretHash)
	s.Equal(first.SecretHash, snap.Presented.SecretHash)
	s.Empty(snap.Active.Secret)

	v := models.Evaluate(snap, sessionID, first.SecretHash, now.Add(2*time.Minute), 0)
	s.Equal(models.ReasonSuperseded, v.Reason)
}

func (s *RedisStoreSuite) TestSnapshotUnknown() {
	snap, err := s.store.Snapshot(context.Background(), id.SessionID(uuid.New()), models.HashSecret("nope"))
	s.Require().NoError(err)
	s.Nil(snap.Active)
	s.Nil(snap.Presented)
}

func (s *RedisStoreSuite) TestConcurrentRotateLeavesOneActive() {
	ctx := context.Background()
	sessionID := id.SessionID(uuid.New())
	const goroutines = 16

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := models.NewVenueToken(sessionID, time.Now(), time.Minute)
			if err != nil {
				s.T().Error(err)
				return
			}
			if err := s.store.Rotate(ctx, tok); err != nil {
				s.T().Error(err)
			}
		}()
	}
	wg.Wait()

	snap, err := s.store.Snapshot(ctx, sessionID, "")
	s.Require().NoError(err)
	s.NotNil(snap.Active)
}
