package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const defaultEnvFile = "./configs/.env"

var (
	once     sync.Once
	instance *Config
)

type Config struct {
	APIAddress string `envconfig:"API_ADDRESS" default:":8080"`

	PostgresAddress  string `envconfig:"POSTGRES_DB_ADDRESS" required:"true"`
	PostgresUser     string `envconfig:"POSTGRES_USER" required:"true"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	PostgresDB       string `envconfig:"POSTGRES_DB" required:"true"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	AppTimezone string `envconfig:"APP_TIMEZONE" default:"UTC"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"info"`

	// Cron spec for the nightly streak recalculation, in AppTimezone.
	StreakRecalcSchedule string `envconfig:"STREAK_RECALC_SCHEDULE" default:"5 0 * * *"`
	// Diamonds charged per freeze day.
	FreezeDayPrice     int `envconfig:"FREEZE_DAY_PRICE" default:"10"`
	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`

	location *time.Location
}

// New loads the process config once. A missing or broken config is fatal.
func New() *Config {
	once.Do(func() {
		cfg, err := Load(defaultEnvFile)
		if err != nil {
			log.Fatal("loading config error: ", err)
		}
		instance = cfg
	})
	return instance
}

// Load reads envFile into the environment (variables already set win) and
// maps the environment onto Config. A missing envFile is not an error.
func Load(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading envs from %s: %w", envFile, err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing envs: %w", err)
	}
	loc, err := time.LoadLocation(cfg.AppTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.AppTimezone, err)
	}
	cfg.location = loc
	if cfg.FreezeDayPrice < 1 {
		return nil, fmt.Errorf("FREEZE_DAY_PRICE must be positive, got %d", cfg.FreezeDayPrice)
	}
	return &cfg, nil
}

func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}
