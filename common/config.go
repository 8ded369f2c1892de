package common

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	PacingNone        = "none"
	PacingFixed       = "fixed"
	PacingBackoff     = "backoff"
	PacingTokenBucket = "token_bucket"
)

// BatchOptions controls how a batched run is paced against the entity store.
type BatchOptions struct {
	BatchSize     int           `env:"BATCH_SIZE"`
	Delay         time.Duration `env:"BATCH_DELAY"`
	Pacing        string        `env:"PACING"`
	MaxDelay      time.Duration `env:"MAX_DELAY"`
	RatePerSecond float64       `env:"RATE_PER_SECOND"`
}

func (o *BatchOptions) Validate(name string) error {
	if o.BatchSize < 1 {
		return fmt.Errorf("%s batch size must be at least 1, got %d", name, o.BatchSize)
	}
	if o.Delay < 0 {
		return fmt.Errorf("%s batch delay must be non-negative, got %s", name, o.Delay)
	}
	switch o.Pacing {
	case PacingNone, PacingFixed:
	case PacingBackoff:
		if o.MaxDelay <= 0 {
			return fmt.Errorf("%s max delay must be positive for backoff pacing", name)
		}
	case PacingTokenBucket:
		if o.RatePerSecond <= 0 {
			return fmt.Errorf("%s rate per second must be positive for token_bucket pacing", name)
		}
	default:
		return fmt.Errorf("%s pacing must be one of none, fixed, backoff, token_bucket, got '%s'", name, o.Pacing)
	}
	return nil
}

type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	DBPath     string `env:"DB_PATH" envDefault:"./data/club.db"`
	UploadsDir string `env:"UPLOADS_DIR" envDefault:"./uploads"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"LOG_FORMAT" envDefault:"json"`
	JWTSecret  string `env:"JWT_SECRET"`

	Import  BatchOptions `envPrefix:"IMPORT_"`
	Cleanup BatchOptions `envPrefix:"CLEANUP_"`
}

// DefaultConfig mirrors the batch sizes of the manual import dialogs (3) and the
// duplicate cleanup dialog (5).
func DefaultConfig() Config {
	return Config{
		Port:       "8080",
		DBPath:     "./data/club.db",
		UploadsDir: "./uploads",
		LogLevel:   "info",
		LogFormat:  "json",
		Import: BatchOptions{
			BatchSize:     3,
			Delay:         300 * time.Millisecond,
			Pacing:        PacingFixed,
			MaxDelay:      5 * time.Second,
			RatePerSecond: 10,
		},
		Cleanup: BatchOptions{
			BatchSize:     5,
			Delay:         2 * time.Second,
			Pacing:        PacingFixed,
			MaxDelay:      10 * time.Second,
			RatePerSecond: 5,
		},
	}
}

func (c *Config) Validate() error {
	if err := c.Import.Validate("import"); err != nil {
		return err
	}
	return c.Cleanup.Validate("cleanup")
}

// LoadEnv loads whichever of the given dotenv files exist and returns how many
// were read.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// LoadConfig reads .env files and the environment on top of DefaultConfig.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env", ".env.local"}
	}
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}

	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
