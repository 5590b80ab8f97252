package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/locktoken"
	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/reservation"
)

// Store backends selectable with FOUNDATHON_STORE.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// Store is one of StoreMemory, StorePostgres or StoreRedis.
	Store string

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32
	DBMigrate   bool

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	// If true:
	// - /readyz returns 503 unless the configured store is reachable.
	ReadinessRequireStore bool

	Capacity    int
	LockTTL     time.Duration
	CatalogFile string

	// If true, FOUNDATHON_LOCK_SECRET MUST be set and at least 32 bytes long.
	RequireStrongSecret bool

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	CORSMaxAgeSeconds    int

	MetricsEnabled bool

	// loadErrs holds values LoadConfig could not parse.
	loadErrs []error
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	var loadErrs []error
	cfg := Config{
		HTTPAddr:  EnvString("FOUNDATHON_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("FOUNDATHON_LOG_LEVEL", "info"),
		LogFormat: EnvString("FOUNDATHON_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("FOUNDATHON_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("FOUNDATHON_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("FOUNDATHON_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("FOUNDATHON_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("FOUNDATHON_HTTP_MAX_HEADER_BYTES", 1<<20),

		Store: strings.ToLower(EnvString("FOUNDATHON_STORE", "")),

		DatabaseURL: EnvString("FOUNDATHON_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("FOUNDATHON_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("FOUNDATHON_DB_MIN_CONNS", 0),
		DBMigrate:   EnvBool("FOUNDATHON_DB_MIGRATE", false),

		RedisAddr:      EnvString("FOUNDATHON_REDIS_ADDR", ""),
		RedisPassword:  EnvString("FOUNDATHON_REDIS_PASSWORD", ""),
		RedisDB:        EnvInt("FOUNDATHON_REDIS_DB", 0),
		RedisKeyPrefix: EnvString("FOUNDATHON_REDIS_KEY_PREFIX", "foundathon"),

		ReadinessRequireStore: EnvBool("FOUNDATHON_READINESS_REQUIRE_STORE", false),

		Capacity:    envIntStrict("FOUNDATHON_CAPACITY", reservation.DefaultCapacity, &loadErrs),
		LockTTL:     envDurationStrict("FOUNDATHON_LOCK_TTL", locktoken.DefaultTTL, &loadErrs),
		CatalogFile: EnvString("FOUNDATHON_CATALOG_FILE", ""),

		RequireStrongSecret: EnvBool("FOUNDATHON_REQUIRE_STRONG_SECRET", false),

		CORSAllowedOrigins:   EnvList("FOUNDATHON_CORS_ALLOWED_ORIGINS"),
		CORSAllowCredentials: EnvBool("FOUNDATHON_CORS_ALLOW_CREDENTIALS", false),
		CORSMaxAgeSeconds:    EnvInt("FOUNDATHON_CORS_MAX_AGE_SECONDS", 600),

		MetricsEnabled: EnvBool("FOUNDATHON_METRICS_ENABLED", true),
	}

	cfg.loadErrs = loadErrs
	if cfg.Store == "" {
		cfg.Store = defaultStore(cfg)
	}
	return cfg
}

// Validate reports settings the server cannot start with, naming the
// environment variable behind each one.
func (c Config) Validate() error {
	errs := append([]error(nil), c.loadErrs...)
	if c.Capacity < 1 {
		errs = append(errs, fmt.Errorf("config: FOUNDATHON_CAPACITY must be at least 1, got %d", c.Capacity))
	}
	if c.LockTTL < time.Millisecond {
		errs = append(errs, fmt.Errorf("config: FOUNDATHON_LOCK_TTL must be at least 1ms, got %s", c.LockTTL))
	}
	switch c.Store {
	case StoreMemory, StorePostgres, StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("config: unknown FOUNDATHON_STORE %q", c.Store))
	}
	return errors.Join(errs...)
}

func defaultStore(cfg Config) string {
	switch {
	case cfg.DatabaseURL != "":
		return StorePostgres
	case cfg.RedisAddr != "":
		return StoreRedis
	default:
		return StoreMemory
	}
}
