package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
api:
  port: "9090"
  jwt_signing_key: secret
postgres:
  user: tester
  db: tutoring
auth:
  inactivity_timeout: 5m
  callback_secret: bridge
`)

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", conf.API.Port)
	assert.Equal(t, "secret", conf.API.JWTSigningKey)
	assert.Equal(t, "development", conf.API.Environment)
	assert.Equal(t, 5*time.Minute, conf.Auth.InactivityTimeout())
	assert.Equal(t, 24*time.Hour, conf.Auth.TokenTTL)
	assert.Equal(t, "@udea.edu.co", conf.Auth.AllowedEmailDomain)
	assert.Equal(t, "bridge", conf.Auth.CallbackSecret)
	assert.Equal(t, 3, conf.Scheduler.ConfirmationBusinessDays)
	assert.Contains(t, conf.Postgres.DSN(), "dbname=tutoring")
	assert.Contains(t, conf.Postgres.DSN(), "sslmode=disable")
}

func TestLoad_MissingSigningKey(t *testing.T) {
	path := writeConfig(t, "api:\n  port: \"8080\"\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("INGETUTO_API_JWT_SIGNING_KEY", "from-env")
	path := writeConfig(t, "api:\n  port: \"8080\"\n")

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", conf.API.JWTSigningKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestLoad_CallbackSecretRequiredOutsideDevelopment(t *testing.T) {
	path := writeConfig(t, "api:\n  environment: production\n  jwt_signing_key: secret\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.callback_secret")

	t.Setenv("INGETUTO_AUTH_CALLBACK_SECRET", "from-env")
	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", conf.Auth.CallbackSecret)
}
