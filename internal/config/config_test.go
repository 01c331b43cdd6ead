package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, DriverMySQL, cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.ClaudeModel)
	assert.Equal(t, int64(200), cfg.ClaudeMaxTokens)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("POSTGRES_DSN", "host=db")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("CLAUDE_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "host=db", cfg.DSN())
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, "sk-test", cfg.ClaudeAPIKey)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("JWT_TTL", "0s")

	_, err := Load()
	assert.Error(t, err)
}

func TestSwaggerURL(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"", "http://localhost:8080/swagger/index.html"},
		{"notes.example.com", "http://notes.example.com/swagger/index.html"},
		{"https://notes.example.com", "https://notes.example.com/swagger/index.html"},
	}
	for _, tt := range tests {
		cfg := &Config{ServerPort: "8080", SwaggerHost: tt.host}
		assert.Equal(t, tt.want, cfg.SwaggerURL())
	}
}
