// Package config loads process configuration from the environment.
//
// Values are read once in main and passed explicitly into constructors; no
// package reads the environment after startup.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable, e.g. PRESENCE_ADDR.
const Prefix = "PRESENCE"

// Config is the root configuration object. Sections are embedded so their
// variables share the flat PRESENCE_ namespace.
type Config struct {
	Server
	Verification
	Postgres
	Redis
	Kafka
	Auth
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `envconfig:"ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	// SessionsSeedFile is a JSON array of event sessions loaded at startup.
	SessionsSeedFile string `envconfig:"SESSIONS_SEED_FILE"`
}

// Verification holds the decision thresholds shared by the validators.
type Verification struct {
	FaceMatchThreshold    float64       `envconfig:"FACE_MATCH_THRESHOLD" default:"70"`
	FaceDistanceThreshold float64       `envconfig:"FACE_DISTANCE_THRESHOLD" default:"0.6"`
	DefaultRadiusMeters   int           `envconfig:"DEFAULT_RADIUS_METERS" default:"100"`
	QRRotationInterval    time.Duration `envconfig:"QR_ROTATION_INTERVAL" default:"300s"`
	TokenClockSkew        time.Duration `envconfig:"TOKEN_CLOCK_SKEW" default:"0s"`
	TokenHistory          int           `envconfig:"TOKEN_HISTORY" default:"16"`
}

// Postgres configures the relational store. Empty URL selects in-memory stores.
type Postgres struct {
	URL             string        `envconfig:"DATABASE_URL"`
	MaxOpenConns    int           `envconfig:"DATABASE_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DATABASE_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DATABASE_CONN_MAX_LIFETIME" default:"30m"`
	TxTimeout       time.Duration `envconfig:"DATABASE_TX_TIMEOUT" default:"5s"`
}

// Redis configures the venue token store. Empty URL selects the in-memory store.
type Redis struct {
	URL          string        `envconfig:"REDIS_URL"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Kafka configures the audit outbox relay. Empty brokers disables the relay.
type Kafka struct {
	Brokers       []string      `envconfig:"KAFKA_BROKERS"`
	AuditTopic    string        `envconfig:"AUDIT_TOPIC" default:"presence.attendance.audit"`
	RelayInterval time.Duration `envconfig:"OUTBOX_RELAY_INTERVAL" default:"2s"`
	RelayBatch    int           `envconfig:"OUTBOX_RELAY_BATCH" default:"100"`
}

// Auth configures bearer token validation.
type Auth struct {
	JWTSigningKey string `envconfig:"JWT_SIGNING_KEY" default:"dev-secret-key-change-in-production"`
	JWTIssuer     string `envconfig:"JWT_ISSUER" default:"presence"`
	JWTAudience   string `envconfig:"JWT_AUDIENCE" default:"presence-api"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration with every default applied.
func Default() Config {
	return Config{
		Server: Server{Addr: ":8080", LogLevel: "info", ShutdownTimeout: 10 * time.Second},
		Verification: Verification{
			FaceMatchThreshold:    70,
			FaceDistanceThreshold: 0.6,
			DefaultRadiusMeters:   100,
			QRRotationInterval:    300 * time.Second,
			TokenHistory:          16,
		},
		Postgres: Postgres{MaxOpenConns: 20, MaxIdleConns: 5, ConnMaxLifetime: 30 * time.Minute, TxTimeout: 5 * time.Second},
		Redis:    Redis{PoolSize: 10, MinIdleConns: 2, DialTimeout: 5 * time.Second, ReadTimeout: 3 * time.Second, WriteTimeout: 3 * time.Second},
		Kafka:    Kafka{AuditTopic: "presence.attendance.audit", RelayInterval: 2 * time.Second, RelayBatch: 100},
		Auth:     Auth{JWTSigningKey: "dev-secret-key-change-in-production", JWTIssuer: "presence", JWTAudience: "presence-api"},
	}
}

// Validate rejects inconsistent values.
func (c *Config) Validate() error {
	var errs []error
	v := c.Verification
	if v.FaceMatchThreshold < 0 || v.FaceMatchThreshold > 100 {
		errs = append(errs, errors.New("FACE_MATCH_THRESHOLD must be within [0, 100]"))
	}
	if v.FaceDistanceThreshold <= 0 {
		errs = append(errs, errors.New("FACE_DISTANCE_THRESHOLD must be positive"))
	}
	if v.DefaultRadiusMeters <= 0 {
		errs = append(errs, errors.New("DEFAULT_RADIUS_METERS must be positive"))
	}
	if v.QRRotationInterval <= 0 {
		errs = append(errs, errors.New("QR_ROTATION_INTERVAL must be positive"))
	}
	if v.TokenClockSkew < 0 {
		errs = append(errs, errors.New("TOKEN_CLOCK_SKEW must not be negative"))
	}
	if v.TokenClockSkew >= v.QRRotationInterval {
		errs = append(errs, errors.New("TOKEN_CLOCK_SKEW must be shorter than QR_ROTATION_INTERVAL"))
	}
	if v.TokenHistory < 1 {
		errs = append(errs, errors.New("TOKEN_HISTORY must be at least 1"))
	}
	if c.Auth.JWTSigningKey == "" {
		errs = append(errs, errors.New("JWT_SIGNING_KEY is required"))
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.AuditTopic == "" {
		errs = append(errs, errors.New("AUDIT_TOPIC is required when KAFKA_BROKERS is set"))
	}
	if len(c.Kafka.Brokers) > 0 && c.Postgres.URL == "" {
		errs = append(errs, errors.New("KAFKA_BROKERS requires DATABASE_URL for the audit outbox"))
	}
	return errors.Join(errs...)
}
