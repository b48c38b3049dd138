package config

import (
	"fmt"

	pkgconfig "github.com/taskvault/taskvault/pkg/config"
)

const defaultSecret = "change-this-to-a-secure-secret"

// Config holds all configuration for the task service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"taskvault"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"taskvault_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"taskvault"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Cache
	CacheTTLSeconds int `env:"TASK_CACHE_TTL_SECONDS" envDefault:"600"`

	// Kafka (optional relay; disabled when no brokers are configured)
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// JWT. Access and refresh tokens are signed with independent secrets.
	JWTSecret        string `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTRefreshSecret string `env:"JWT_REFRESH_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTAccessExpiry  string `env:"JWT_ACCESS_TOKEN_EXPIRY" envDefault:"15m"`
	JWTRefreshExpiry string `env:"JWT_REFRESH_TOKEN_EXPIRY" envDefault:"168h"`

	// Import endpoint capability key and source.
	ImportAPIKey string `env:"IMPORT_API_KEY" envDefault:"dev-import-key"`
	ImportURL    string `env:"IMPORT_SOURCE_URL" envDefault:"https://jsonplaceholder.typicode.com/todos"`

	// Login rate limiting (per client IP).
	LoginRateRPS   int `env:"LOGIN_RATE_RPS" envDefault:"5"`
	LoginRateBurst int `env:"LOGIN_RATE_BURST" envDefault:"10"`

	// Tracing
	TracingEnabled bool   `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint   string `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}

	// In non-development environments, require explicitly set, strong secrets.
	if cfg.Environment != "development" {
		if err := checkSecret("JWT_SECRET", cfg.JWTSecret, cfg.Environment); err != nil {
			return nil, err
		}
		if err := checkSecret("JWT_REFRESH_SECRET", cfg.JWTRefreshSecret, cfg.Environment); err != nil {
			return nil, err
		}
		if cfg.ImportAPIKey == "dev-import-key" {
			return nil, fmt.Errorf("IMPORT_API_KEY must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
	}

	return cfg, nil
}

func checkSecret(name, value, environment string) error {
	if value == defaultSecret {
		return fmt.Errorf("%s must be explicitly set via environment variable in %q mode", name, environment)
	}
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters long, got %d", name, len(value))
	}
	return nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}

// RedisAddr returns the host:port address of the Redis server.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}
