package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnvs is a helper that sets multiple env vars for the test's duration.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Development_AcceptsDefaultSecrets(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "development",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "change-this-to-a-secure-secret", cfg.JWTSecret)
	assert.Equal(t, "change-this-to-a-secure-secret", cfg.JWTRefreshSecret)
}

func TestLoad_Production_RejectsDefaultAccessSecret(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":        "production",
		"JWT_REFRESH_SECRET": "a-sufficiently-long-refresh-secret-value-1234",
		"IMPORT_API_KEY":     "prod-import-key",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be explicitly set")
}

func TestLoad_Production_RejectsDefaultRefreshSecret(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":    "production",
		"JWT_SECRET":     "a-sufficiently-long-access-secret-value-12345",
		"IMPORT_API_KEY": "prod-import-key",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_REFRESH_SECRET must be explicitly set")
}

func TestLoad_Production_RejectsShortSecret(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":        "production",
		"JWT_SECRET":         "short-but-not-default",
		"JWT_REFRESH_SECRET": "a-sufficiently-long-refresh-secret-value-1234",
		"IMPORT_API_KEY":     "prod-import-key",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be at least 32 characters")
}

func TestLoad_Production_RejectsDefaultImportKey(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":        "production",
		"JWT_SECRET":         "a-sufficiently-long-access-secret-value-12345",
		"JWT_REFRESH_SECRET": "a-sufficiently-long-refresh-secret-value-1234",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMPORT_API_KEY must be explicitly set")
}

func TestLoad_Production_AcceptsStrongSecrets(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":        "production",
		"JWT_SECRET":         "a-sufficiently-long-access-secret-value-12345",
		"JWT_REFRESH_SECRET": "a-sufficiently-long-refresh-secret-value-1234",
		"IMPORT_API_KEY":     "prod-import-key",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
}

func TestLoad_Defaults(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "development",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "15m", cfg.JWTAccessExpiry)
	assert.Equal(t, "168h", cfg.JWTRefreshExpiry)
	assert.Equal(t, 600, cfg.CacheTTLSeconds)
	assert.Equal(t, "https://jsonplaceholder.typicode.com/todos", cfg.ImportURL)
	assert.False(t, cfg.KafkaEnabled)
	assert.False(t, cfg.TracingEnabled)
}

func TestPostgresDSN(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":       "development",
		"POSTGRES_HOST":     "db.internal",
		"POSTGRES_PORT":     "5433",
		"POSTGRES_USER":     "svc",
		"POSTGRES_PASSWORD": "pw",
		"POSTGRES_DB":       "tasks",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://svc:pw@db.internal:5433/tasks?sslmode=disable", cfg.PostgresDSN())
}

func TestRedisAddr(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "development",
		"REDIS_HOST":  "cache.internal",
		"REDIS_PORT":  "6380",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", cfg.RedisAddr())
}
