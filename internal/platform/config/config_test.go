package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default().Verification, cfg.Verification)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "presence.attendance.audit", cfg.Kafka.AuditTopic)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PRESENCE_FACE_MATCH_THRESHOLD", "82.5")
	t.Setenv("PRESENCE_DEFAULT_RADIUS_METERS", "250")
	t.Setenv("PRESENCE_QR_ROTATION_INTERVAL", "60s")
	t.Setenv("PRESENCE_TOKEN_CLOCK_SKEW", "2s")
	t.Setenv("PRESENCE_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("PRESENCE_DATABASE_URL", "postgres://localhost/presence")

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 82.5, cfg.Verification.FaceMatchThreshold, 1e-9)
	assert.Equal(t, 250, cfg.Verification.DefaultRadiusMeters)
	assert.Equal(t, time.Minute, cfg.Verification.QRRotationInterval)
	assert.Equal(t, 2*time.Second, cfg.Verification.TokenClockSkew)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"score threshold above 100", func(c *Config) { c.Verification.FaceMatchThreshold = 101 }, "FACE_MATCH_THRESHOLD"},
		{"zero distance threshold", func(c *Config) { c.Verification.FaceDistanceThreshold = 0 }, "FACE_DISTANCE_THRESHOLD"},
		{"non positive radius", func(c *Config) { c.Verification.DefaultRadiusMeters = 0 }, "DEFAULT_RADIUS_METERS"},
		{"skew exceeds rotation window", func(c *Config) { c.Verification.TokenClockSkew = 10 * time.Minute }, "TOKEN_CLOCK_SKEW"},
		{"kafka without database", func(c *Config) { c.Kafka.Brokers = []string{"k:9092"} }, "DATABASE_URL"},
		{"missing signing key", func(c *Config) { c.Auth.JWTSigningKey = "" }, "JWT_SIGNING_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("defaults are valid", func(t *testing.T) {
		cfg := Default()
		assert.NoError(t, cfg.Validate())
	})
}
