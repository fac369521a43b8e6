package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET_KEY", testSecret)
	t.Setenv("CONNECTION_STRING", "Data Source=test.db")
}

func missingDotenv(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig(missingDotenv(t))
	require.NoError(t, err)

	assert.Equal(t, ServiceName, cfg.Token.Issuer)
	assert.Equal(t, ServiceName, cfg.Token.Audience)
	assert.Equal(t, 15, cfg.Token.AccessTokenExpiryMinutes)
	assert.Equal(t, 7, cfg.Token.RefreshTokenExpiryDays)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 6, cfg.Password.MinLength)
	assert.False(t, cfg.Admin.Enabled())
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)

	s := cfg.Token.Settings()
	assert.Equal(t, []byte(testSecret), s.Secret)
	assert.Equal(t, 15*time.Minute, s.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, s.RefreshTTL)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_ISSUER", "issuer-x")
	t.Setenv("JWT_AUDIENCE", "audience-y")
	t.Setenv("JWT_ACCESS_TOKEN_EXPIRY_MINUTES", "5")
	t.Setenv("JWT_REFRESH_TOKEN_EXPIRY_DAYS", "30")
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "hunter2")

	cfg, err := LoadConfig(missingDotenv(t))
	require.NoError(t, err)

	s := cfg.Token.Settings()
	assert.Equal(t, "issuer-x", s.Issuer)
	assert.Equal(t, "audience-y", s.Audience)
	assert.Equal(t, 5*time.Minute, s.AccessTTL)
	assert.Equal(t, 30*24*time.Hour, s.RefreshTTL)
	assert.True(t, cfg.Admin.Enabled())
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("CONNECTION_STRING", "Data Source=test.db")

	_, err := LoadConfig(missingDotenv(t))
	assert.Error(t, err)
}

func TestLoadConfig_MissingConnectionString(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", testSecret)
	t.Setenv("CONNECTION_STRING", "")

	_, err := LoadConfig(missingDotenv(t))
	assert.Error(t, err)
}

func TestLoadConfig_ShortSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET_KEY", "short")

	_, err := LoadConfig(missingDotenv(t))
	assert.ErrorIs(t, err, ErrSecretTooShort)
}

func TestLoadConfig_NonPositiveTTL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_ACCESS_TOKEN_EXPIRY_MINUTES", "0")

	_, err := LoadConfig(missingDotenv(t))
	assert.ErrorIs(t, err, ErrInvalidTTL)
}

func TestLoadConfig_SampleRatioOutOfRange(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OTEL_SAMPLE_RATIO", "1.5")

	_, err := LoadConfig(missingDotenv(t))
	assert.ErrorIs(t, err, ErrInvalidSampleRatio)
}

func TestLoadConfig_NotANumber(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_REFRESH_TOKEN_EXPIRY_DAYS", "seven")

	_, err := LoadConfig(missingDotenv(t))
	assert.Error(t, err)
}

func TestLoadConfig_FromDotenv(t *testing.T) {
	// Registered through t.Setenv so the values loaded from the file are
	// removed again when the test ends.
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("CONNECTION_STRING", "")
	t.Setenv("SERVER_PORT", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET_KEY"))
	require.NoError(t, os.Unsetenv("CONNECTION_STRING"))
	require.NoError(t, os.Unsetenv("SERVER_PORT"))

	path := filepath.Join(t.TempDir(), ".env")
	content := "JWT_SECRET_KEY=" + testSecret + "\nCONNECTION_STRING=postgres://u:p@localhost:5432/db\nSERVER_PORT=9999\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@localhost:5432/db", cfg.Database.ConnectionString)
	assert.Equal(t, "9999", cfg.Server.Port)
}
