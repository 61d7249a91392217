package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"presence/internal/venuetoken/models"
	id "presence/pkg/domain"
)

const (
	activeKeyPrefix = "venuetoken:active:"
	digestKeyPrefix = "venuetoken:digest:"
)

// Redis stores venue tokens in Redis. The active key holds the current token
// of a session; each digest key resolves a token (active or superseded) until
// its retention expires.
type Redis struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedis builds a Redis store. retention bounds how long superseded tokens
// stay resolvable for replay detection.
func NewRedis(client *redis.Client, retention time.Duration) *Redis {
	if retention <= 0 {
		retention = time.Hour
	}
	return &Redis{client: client, retention: retention}
}

func activeKey(sessionID id.SessionID) string {
	return activeKeyPrefix + sessionID.String()
}

func digestKey(digest string) string {
	return digestKeyPrefix + digest
}

// Rotate swaps the active token and indexes the new digest in one MULTI/EXEC.
func (s *Redis) Rotate(ctx context.Context, token *models.VenueToken) error {
	payload, err := json.Marshal(token.Redacted())
	if err != nil {
		return fmt.Errorf("marshal venue token: %w", err)
	}
	ttl := time.Until(token.ValidUntil) + s.retention
	if ttl <= 0 {
		ttl = s.retention
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, activeKey(token.SessionID), payload, ttl)
		pipe.Set(ctx, digestKey(token.SecretHash), payload, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("rotate venue token: %w", err)
	}
	return nil
}

// Snapshot reads the active token and the digest owner with a single MGET.
func (s *Redis) Snapshot(ctx context.Context, sessionID id.SessionID, digest string) (models.Snapshot, error) {
	vals, err := s.client.MGet(ctx, activeKey(sessionID), digestKey(digest)).Result()
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("read venue token snapshot: %w", err)
	}
	active, err := decodeToken(vals[0])
	if err != nil {
		return models.Snapshot{}, err
	}
	presented, err := decodeToken(vals[1])
	if err != nil {
		return models.Snapshot{}, err
	}
	return models.Snapshot{Active: active, Presented: presented}, nil
}

func decodeToken(v any) (*models.VenueToken, error) {
	if v == nil {
		return nil, nil
	}
	raw, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected venue token payload type %T", v)
	}
	var tok models.VenueToken
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return nil, fmt.Errorf("decode venue token: %w", err)
	}
	return &tok, nil
}
