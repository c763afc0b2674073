package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/couchcryptid/mwac-vis/internal/adapter/file"
	"github.com/couchcryptid/mwac-vis/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataPath          string                   `env:"DATA_PATH" validate:"required"`
	SeasonStartYear   int                      `env:"SEASON_START_YEAR" validate:"gte=1900,lte=2200"`
	DataSheet         string                   `env:"DATA_SHEET"`
	DataDelimiter     rune                     `env:"DATA_DELIMITER"`
	DataEncoding      string                   `env:"DATA_ENCODING" validate:"oneof=utf-8 windows-1252 iso-8859-1"`
	InvalidDatePolicy domain.InvalidDatePolicy `env:"INVALID_DATE_POLICY"`
	StrictSeason      bool                     `env:"STRICT_SEASON"`

	HTTPAddr        string        `env:"HTTP_ADDR" validate:"required"`
	LogLevel        string        `env:"LOG_LEVEL" validate:"oneof=debug info warn warning error"`
	LogFormat       string        `env:"LOG_FORMAT" validate:"oneof=json text tint"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`

	// Reload triggers.
	WatchEnabled   bool          `env:"WATCH_ENABLED"`
	ReloadDebounce time.Duration `env:"RELOAD_DEBOUNCE" validate:"gte=0"`
	ReloadSchedule string        `env:"RELOAD_SCHEDULE"`

	// Optional Kafka publication of normalized rows.
	KafkaEnabled        bool          `env:"KAFKA_ENABLED"`
	KafkaBrokers        []string      `env:"KAFKA_BROKERS" validate:"required_if=KafkaEnabled true"`
	KafkaTopic          string        `env:"KAFKA_TOPIC" validate:"required_if=KafkaEnabled true"`
	KafkaBreakerTimeout time.Duration `env:"KAFKA_BREAKER_TIMEOUT" validate:"gt=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report env var names instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	debounce, err := envDuration("RELOAD_DEBOUNCE", "250ms")
	if err != nil {
		return nil, err
	}
	breakerTimeout, err := envDuration("KAFKA_BREAKER_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	seasonStartYear, err := envInt("SEASON_START_YEAR", 2023)
	if err != nil {
		return nil, err
	}
	delimiter, err := parseDelimiter(EnvOrDefault("DATA_DELIMITER", ","))
	if err != nil {
		return nil, err
	}
	policy, err := domain.ParseInvalidDatePolicy(EnvOrDefault("INVALID_DATE_POLICY", "keep"))
	if err != nil {
		return nil, fmt.Errorf("invalid INVALID_DATE_POLICY: %w", err)
	}
	strict, err := envBool("STRICT_SEASON", false)
	if err != nil {
		return nil, err
	}
	watch, err := envBool("WATCH_ENABLED", true)
	if err != nil {
		return nil, err
	}
	kafkaEnabled, err := envBool("KAFKA_ENABLED", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataPath:          EnvOrDefault("DATA_PATH", "data/mwac.csv"),
		SeasonStartYear:   seasonStartYear,
		DataSheet:         EnvOrDefault("DATA_SHEET", ""),
		DataDelimiter:     delimiter,
		DataEncoding:      file.CanonicalEncoding(EnvOrDefault("DATA_ENCODING", "utf-8")),
		InvalidDatePolicy: policy,
		StrictSeason:      strict,

		HTTPAddr:        EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        strings.ToLower(EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(EnvOrDefault("LOG_FORMAT", "json")),
		ShutdownTimeout: shutdownTimeout,

		WatchEnabled:   watch,
		ReloadDebounce: debounce,
		ReloadSchedule: strings.TrimSpace(EnvOrDefault("RELOAD_SCHEDULE", "")),

		KafkaEnabled:        kafkaEnabled,
		KafkaBrokers:        ParseBrokers(EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:          EnvOrDefault("KAFKA_TOPIC", "mwac-observations"),
		KafkaBreakerTimeout: breakerTimeout,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and reports every violation by env var name.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %s", fe.Field(), constraint(fe)))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func constraint(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// NormalizeOptions turns the data settings into domain options.
func (c *Config) NormalizeOptions() []domain.Option {
	opts := []domain.Option{domain.WithInvalidDatePolicy(c.InvalidDatePolicy)}
	if c.StrictSeason {
		opts = append(opts, domain.WithStrictSeason())
	}
	return opts
}
