package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                string        `mapstructure:"PORT"`
	Env                 string        `mapstructure:"ENV"`
	DatabaseURL         string        `mapstructure:"DATABASE_URL"`
	DBMaxConns          int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns          int32         `mapstructure:"DB_MIN_CONNS"`
	RedisURL            string        `mapstructure:"REDIS_URL"`
	LockBackend         string        `mapstructure:"LOCK_BACKEND"`
	LockTTL             time.Duration `mapstructure:"LOCK_TTL"`
	DefaultInitialScore float64       `mapstructure:"DEFAULT_INITIAL_SCORE"`
	TrendWindowDays     int           `mapstructure:"TREND_WINDOW_DAYS"`
	ScoreTimezone       string        `mapstructure:"SCORE_TIMEZONE"`
	BatchConcurrency    int           `mapstructure:"BATCH_CONCURRENCY"`
	RequestTimeout      time.Duration `mapstructure:"REQUEST_TIMEOUT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("LOCK_BACKEND", "memory")
	v.SetDefault("LOCK_TTL", "30s")
	v.SetDefault("DEFAULT_INITIAL_SCORE", 50.0)
	v.SetDefault("TREND_WINDOW_DAYS", 7)
	v.SetDefault("SCORE_TIMEZONE", "UTC")
	v.SetDefault("BATCH_CONCURRENCY", 8)
	v.SetDefault("REQUEST_TIMEOUT", "30s")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("REDIS_URL")
	v.BindEnv("LOCK_BACKEND")
	v.BindEnv("LOCK_TTL")
	v.BindEnv("DEFAULT_INITIAL_SCORE")
	v.BindEnv("TREND_WINDOW_DAYS")
	v.BindEnv("SCORE_TIMEZONE")
	v.BindEnv("BATCH_CONCURRENCY")
	v.BindEnv("REQUEST_TIMEOUT")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: running in DEVELOPMENT mode (ENV=development); HTTP endpoints are unauthenticated.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the service is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location resolves SCORE_TIMEZONE, the zone in which a score date's
// day window starts and ends.
func (c *Config) Location() (*time.Location, error) {
	if c.ScoreTimezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.ScoreTimezone)
	if err != nil {
		return nil, fmt.Errorf("SCORE_TIMEZONE %q: %w", c.ScoreTimezone, err)
	}
	return loc, nil
}

// Validate checks the scoring and locking settings. The Redis lock backend
// needs REDIS_URL; the initial score must lie inside the CRRS range.
func (c *Config) Validate() error {
	if c.DefaultInitialScore < 0 || c.DefaultInitialScore > 100 {
		return fmt.Errorf("DEFAULT_INITIAL_SCORE must be within [0,100], got %v", c.DefaultInitialScore)
	}
	if c.TrendWindowDays < 1 {
		return fmt.Errorf("TREND_WINDOW_DAYS must be at least 1, got %d", c.TrendWindowDays)
	}
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("BATCH_CONCURRENCY must be at least 1, got %d", c.BatchConcurrency)
	}

	switch c.LockBackend {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when LOCK_BACKEND is \"redis\"")
		}
	default:
		return fmt.Errorf("LOCK_BACKEND must be \"memory\" or \"redis\", got %q", c.LockBackend)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("LOCK_TTL must be positive, got %s", c.LockTTL)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
