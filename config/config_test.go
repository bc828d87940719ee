package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	dir := writeConfig(t, `
database:
  user: bank
  name: bank_test
jwt:
  secret_key: "0123456789abcdef0123456789abcdef"
  ttl: 15m
cors:
  allowed_origins: ["https://bank.example.com"]
`)

	require.NoError(t, LoadConfig(dir))

	assert.Equal(t, "8080", AppConfig.Server.Port)
	assert.Equal(t, 15*time.Minute, AppConfig.JWT.TTL)
	assert.Equal(t, "secure-banking-api", AppConfig.JWT.Issuer)
	assert.Equal(t, 12, AppConfig.Security.BcryptCost)
	assert.Equal(t, []string{"https://bank.example.com"}, AppConfig.CORS.AllowedOrigins)
	assert.Equal(t, "postgres://bank:@localhost:5432/bank_test?sslmode=disable", AppConfig.Database.URL())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := writeConfig(t, `
database:
  user: bank
  name: bank_test
jwt:
  secret_key: "0123456789abcdef0123456789abcdef"
`)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_SECRET_KEY", "fedcba9876543210fedcba9876543210-env")

	require.NoError(t, LoadConfig(dir))

	assert.Equal(t, "9090", AppConfig.Server.Port)
	assert.Equal(t, "fedcba9876543210fedcba9876543210-env", AppConfig.JWT.SecretKey)
}

func TestLoadConfig_RejectsShortSecret(t *testing.T) {
	dir := writeConfig(t, `
database:
  user: bank
  name: bank_test
jwt:
  secret_key: "short"
`)

	err := LoadConfig(dir)
	assert.EqualError(t, err, "jwt.secret_key must be at least 32 bytes")
}
