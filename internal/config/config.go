package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Database drivers accepted in DB_DRIVER.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`

	DBDriver    string `env:"DB_DRIVER" envDefault:"mysql"`
	MySQLDSN    string `env:"MYSQL_DSN" envDefault:"user:password@tcp(localhost:3306)/notes?charset=utf8mb4&parseTime=True&loc=Local"`
	PostgresDSN string `env:"POSTGRES_DSN" envDefault:"host=localhost user=notes password=notes dbname=notes port=5432 sslmode=disable"`
	ResetDB     bool   `env:"RESET_DB" envDefault:"false"`

	// Empty RedisAddr disables the note cache.
	RedisAddr string `env:"REDIS_ADDR"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`
	RedisPass string `env:"REDIS_PASSWORD"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-me"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	ClaudeAPIKey    string `env:"CLAUDE_API_KEY"`
	ClaudeModel     string `env:"CLAUDE_MODEL" envDefault:"claude-3-5-haiku-latest"`
	ClaudeMaxTokens int64  `env:"CLAUDE_MAX_TOKENS" envDefault:"200"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	SwaggerHost string `env:"SWAGGER_HOST"`
}

// Load builds Config from environment with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	switch cfg.DBDriver {
	case DriverMySQL, DriverPostgres, DriverMemory:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.JWTTTL <= 0 {
		return nil, fmt.Errorf("JWT_TTL must be positive, got %s", cfg.JWTTTL)
	}
	return cfg, nil
}

// DSN returns the connection string for the configured SQL driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverPostgres {
		return c.PostgresDSN
	}
	return c.MySQLDSN
}

// SwaggerURL returns where the Swagger UI is reachable for logging at startup.
func (c *Config) SwaggerURL() string {
	switch {
	case c.SwaggerHost == "":
		return "http://localhost:" + c.ServerPort + "/swagger/index.html"
	case len(c.SwaggerHost) >= 7 && c.SwaggerHost[:7] == "http://",
		len(c.SwaggerHost) >= 8 && c.SwaggerHost[:8] == "https://":
		return c.SwaggerHost + "/swagger/index.html"
	default:
		return "http://" + c.SwaggerHost + "/swagger/index.html"
	}
}
