package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	AppPort       string        `env:"APP_PORT" envDefault:"8080"`
	DatabaseURL   string        `env:"DATABASE_URL"`
	DBMaxConns    int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	RedisURL      string        `env:"REDIS_URL"`
	JWTSecret     string        `env:"JWT_SECRET"`
	JWTTTL        time.Duration `env:"JWT_TTL" envDefault:"24h"`
	AllowedOrigin string        `env:"ALLOWED_ORIGIN"`

	// администраторы каталога игр (subject из JWT)
	AdminIDs []string `env:"ADMIN_IDS" envSeparator:","`
	// секрет перемешивания колоды; пустой - берется JWT_SECRET
	DeckSecret string `env:"DECK_SECRET"`

	Store         string        `env:"STORE" envDefault:"postgres"`
	StoreTimeout  time.Duration `env:"STORE_TIMEOUT" envDefault:"3s"`
	RetryAttempts uint          `env:"RETRY_ATTEMPTS" envDefault:"3"`

	WaitingTTL    time.Duration `env:"WAITING_TTL" envDefault:"30m"`
	IdleTTL       time.Duration `env:"IDLE_TTL" envDefault:"24h"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`

	RateLimitPerMin int `env:"RATE_LIMIT_PER_MIN" envDefault:"120"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse читает только переменные окружения
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE=postgres")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE %q (want postgres or memory)", c.Store)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.StoreTimeout <= 0 {
		return errors.New("STORE_TIMEOUT must be positive")
	}
	if c.RetryAttempts == 0 {
		return errors.New("RETRY_ATTEMPTS must be at least 1")
	}
	return nil
}

// DeckSeed - секрет для раздачи карт
func (c *Config) DeckSeed() string {
	if c.DeckSecret != "" {
		return c.DeckSecret
	}
	return c.JWTSecret
}

func (c *Config) JSONLogs() bool {
	return c.LogFormat == "json"
}
