package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/susp3kt93/myfleet-sub000/pkg/batch"
)

type Config struct {
	Port           string
	Env            string
	LogLevel       string
	MongoURI       string
	MongoDatabase  string
	JWTSecret      string
	JWTExpiry      time.Duration
	AllowedOrigins []string
	Redis          RedisConfig
	Policy         PolicyConfig
	Batch          batch.Config
	MetricsEnabled bool
	RateLimit      bool
}

type RedisConfig struct {
	URL          string
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	RetryDelay   time.Duration
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
}

// PolicyConfig carries the business knobs of the scheduling engine.
type PolicyConfig struct {
	CancelPenalty    float64
	RejectPenalty    float64
	RatingFloor      float64
	RatingCeiling    float64
	DefaultTimezone  string
	AdminWeekStart   string
	DriverWeekStart  string
	RecurringMaxDays int
	ReportMaxDays    int
}

var defaults = map[string]interface{}{
	"PORT":                 "8080",
	"APP_ENV":              "development",
	"LOG_LEVEL":            "info",
	"JWT_EXPIRY":           "24h",
	"MONGO_DB":             "myfleet",
	"ALLOWED_ORIGINS":      "http://localhost:3000",
	"REDIS_HOST":           "localhost",
	"REDIS_PORT":           "6379",
	"REDIS_DB":             0,
	"REDIS_POOL_SIZE":      10,
	"REDIS_MIN_IDLE_CONNS": 2,
	"REDIS_MAX_RETRIES":    3,
	"REDIS_RETRY_DELAY":    "500ms",
	"REDIS_DIAL_TIMEOUT":   "5s",
	"REDIS_READ_TIMEOUT":   "3s",
	"REDIS_WRITE_TIMEOUT":  "3s",
	"REDIS_POOL_TIMEOUT":   "4s",
	"CANCEL_PENALTY":       0.1,
	"REJECT_PENALTY":       0.0,
	"RATING_FLOOR":         1.0,
	"RATING_CEILING":       5.0,
	"DEFAULT_TIMEZONE":     "UTC",
	"ADMIN_WEEK_START":     "sunday",
	"DRIVER_WEEK_START":    "monday",
	"RECURRING_MAX_DAYS":   366,
	"REPORT_MAX_DAYS":      366,
	"BATCH_CHUNK_SIZE":     50,
	"BATCH_RETRY_ATTEMPTS": 2,
	"BATCH_RETRY_BACKOFF":  "100ms",
	"METRICS_ENABLED":      true,
	"RATE_LIMIT_ENABLED":   true,
}

// Load reads configuration from an optional .env file, the environment and an
// optional file named by CONFIG_FILE.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:           v.GetString("PORT"),
		Env:            v.GetString("APP_ENV"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		MongoURI:       v.GetString("MONGO_URI"),
		MongoDatabase:  v.GetString("MONGO_DB"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTExpiry:      v.GetDuration("JWT_EXPIRY"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		MetricsEnabled: v.GetBool("METRICS_ENABLED"),
		RateLimit:      v.GetBool("RATE_LIMIT_ENABLED"),
		Redis: RedisConfig{
			URL:          v.GetString("REDIS_URL"),
			Host:         v.GetString("REDIS_HOST"),
			Port:         v.GetString("REDIS_PORT"),
			Password:     v.GetString("REDIS_PASSWORD"),
			DB:           v.GetInt("REDIS_DB"),
			PoolSize:     v.GetInt("REDIS_POOL_SIZE"),
			MinIdleConns: v.GetInt("REDIS_MIN_IDLE_CONNS"),
			MaxRetries:   v.GetInt("REDIS_MAX_RETRIES"),
			RetryDelay:   v.GetDuration("REDIS_RETRY_DELAY"),
			DialTimeout:  v.GetDuration("REDIS_DIAL_TIMEOUT"),
			ReadTimeout:  v.GetDuration("REDIS_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("REDIS_WRITE_TIMEOUT"),
			PoolTimeout:  v.GetDuration("REDIS_POOL_TIMEOUT"),
		},
		Policy: PolicyConfig{
			CancelPenalty:    v.GetFloat64("CANCEL_PENALTY"),
			RejectPenalty:    v.GetFloat64("REJECT_PENALTY"),
			RatingFloor:      v.GetFloat64("RATING_FLOOR"),
			RatingCeiling:    v.GetFloat64("RATING_CEILING"),
			DefaultTimezone:  v.GetString("DEFAULT_TIMEZONE"),
			AdminWeekStart:   v.GetString("ADMIN_WEEK_START"),
			DriverWeekStart:  v.GetString("DRIVER_WEEK_START"),
			RecurringMaxDays: v.GetInt("RECURRING_MAX_DAYS"),
			ReportMaxDays:    v.GetInt("REPORT_MAX_DAYS"),
		},
		Batch: batch.Config{
			ChunkSize:     v.GetInt("BATCH_CHUNK_SIZE"),
			RetryAttempts: v.GetInt("BATCH_RETRY_ATTEMPTS"),
			RetryBackoff:  v.GetDuration("BATCH_RETRY_BACKOFF"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI environment variable is not set"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET environment variable is not set"))
	}
	if c.Policy.CancelPenalty < 0 || c.Policy.RejectPenalty < 0 {
		errs = append(errs, errors.New("rating penalties must not be negative"))
	}
	if c.Policy.RatingFloor > c.Policy.RatingCeiling {
		errs = append(errs, errors.New("RATING_FLOOR must not exceed RATING_CEILING"))
	}
	if c.Policy.RecurringMaxDays <= 0 {
		errs = append(errs, errors.New("RECURRING_MAX_DAYS must be positive"))
	}
	if c.Policy.ReportMaxDays <= 0 {
		errs = append(errs, errors.New("REPORT_MAX_DAYS must be positive"))
	}
	if err := batch.ValidateConfig(c.Batch); err != nil {
		errs = append(errs, err)
	}
	if _, err := time.LoadLocation(c.Policy.DefaultTimezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid DEFAULT_TIMEZONE: %w", err))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
