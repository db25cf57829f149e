// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // planner time zones must resolve on minimal images

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/ottplanner/ottplanner/internal/database"
)

// Fare table sources.
const (
	FareSourceMemory   = "memory"
	FareSourceFile     = "file"
	FareSourcePostgres = "postgres"
)

// Transit index sources.
const (
	IndexSourceEngine   = "engine"
	IndexSourceMemory   = "memory"
	IndexSourcePostgres = "postgres"
)

// ErrInvalid is wrapped by every error Load returns for a bad value.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete service configuration.
type Config struct {
	Port        int    `validate:"min=1,max=65535"`
	Environment string `validate:"required,oneof=development test staging production"`
	RequireTLS  bool

	OTP          OTPConfig
	Planner      PlannerConfig
	Fares        FaresConfig
	TransitIndex TransitIndexConfig
	Telemetry    TelemetryConfig
	PubSub       PubSubConfig
	Worker       WorkerConfig

	// Database is only used when a fare or transit index source is postgres.
	Database database.Config
}

// OTPConfig configures the trip planning engine client.
type OTPConfig struct {
	URL     string        `validate:"required,url"`
	Timeout time.Duration `validate:"gt=0"`
}

// PlannerConfig configures request parsing and the display model.
type PlannerConfig struct {
	Location             *time.Location `validate:"required"`
	ItineraryURLTemplate string
	MapImageURLTemplate  string
}

// FaresConfig selects and configures the fare table source.
type FaresConfig struct {
	Source          string        `validate:"oneof=memory file postgres"`
	File            string        `validate:"required_if=Source file"`
	RefreshInterval time.Duration `validate:"gt=0"`
}

// TransitIndexConfig selects the transit index source.
type TransitIndexConfig struct {
	Source   string        `validate:"oneof=engine memory postgres"`
	CacheTTL time.Duration `validate:"gt=0"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string `validate:"required_if=Enabled true"`
}

// PubSubConfig configures the worker's trigger subscription.
// An empty project disables the subscription.
type PubSubConfig struct {
	ProjectID      string
	SubscriptionID string `validate:"required_with=ProjectID"`
}

// WorkerConfig configures the periodic refresh job.
type WorkerConfig struct {
	Interval    time.Duration `validate:"gt=0"`
	Concurrency int           `validate:"min=1,max=32"`

	// WarmStops is a comma separated list of AGENCY:ID stops kept warm in the transit index.
	WarmStops string
}

// UsesPostgres reports whether any source needs a database connection.
func (c *Config) UsesPostgres() bool {
	return c.Fares.Source == FareSourcePostgres || c.TransitIndex.Source == IndexSourcePostgres
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads the configuration from the environment after loading an optional
// .env file from the working directory. Variables already set take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env is optional
	return FromEnv()
}

// FromEnv reads and validates the configuration from the environment only.
func FromEnv() (*Config, error) {
	p := &parser{}

	cfg := &Config{
		Port:        p.int("APP_PORT", 8080),
		Environment: getEnvOrDefault("APP_ENV", "development"),
		RequireTLS:  p.bool("REQUIRE_TLS", false),
		OTP: OTPConfig{
			URL:     getEnvOrDefault("OTP_URL", "http://localhost:8080/otp/routers/default"),
			Timeout: p.duration("OTP_TIMEOUT", 30*time.Second),
		},
		Planner: PlannerConfig{
			Location:             p.location("PLANNER_TIMEZONE", "America/Los_Angeles"),
			ItineraryURLTemplate: os.Getenv("ITINERARY_URL_TEMPLATE"),
			MapImageURLTemplate:  os.Getenv("MAP_IMAGE_URL_TEMPLATE"),
		},
		Fares: FaresConfig{
			Source:          strings.ToLower(getEnvOrDefault("FARE_SOURCE", FareSourceMemory)),
			File:            os.Getenv("FARE_FILE"),
			RefreshInterval: p.duration("FARE_REFRESH_INTERVAL", 15*time.Minute),
		},
		TransitIndex: TransitIndexConfig{
			Source:   strings.ToLower(getEnvOrDefault("TRANSIT_INDEX_SOURCE", IndexSourceEngine)),
			CacheTTL: p.duration("TRANSIT_INDEX_CACHE_TTL", 5555*time.Second),
		},
		Telemetry: TelemetryConfig{
			Enabled:      p.bool("OTEL_ENABLED", false),
			OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		},
		PubSub: PubSubConfig{
			ProjectID:      os.Getenv("PUBSUB_PROJECT_ID"),
			SubscriptionID: os.Getenv("PUBSUB_SUBSCRIPTION"),
		},
		Worker: WorkerConfig{
			Interval:    p.duration("WORKER_INTERVAL", 15*time.Minute),
			Concurrency: p.int("WORKER_CONCURRENCY", 3),
			WarmStops:   os.Getenv("WARM_STOPS"),
		},
		Database: database.ConfigFromEnv(),
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return cfg, nil
}

// parser collects every malformed variable instead of stopping at the first.
type parser struct {
	errs []error
}

func (p *parser) int(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func (p *parser) bool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	}
	p.errs = append(p.errs, fmt.Errorf("%s: %q is not a boolean", key, v))
	return def
}

// duration accepts Go durations ("90s", "15m") or a plain number of seconds.
func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a duration", key, v))
		return def
	}
	return d
}

func (p *parser) location(key, def string) *time.Location {
	name := getEnvOrDefault(key, def)
	loc, err := time.LoadLocation(name)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return nil
	}
	return loc
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
