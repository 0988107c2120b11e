package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"FERT_SCORING_URL":                  "scoring.url",
		"FERT_SCORING_TIMEOUT":              "scoring.timeout",
		"FERT_SCORING_BREAKER_MAX_REQUESTS": "scoring.breaker.max_requests",
		"FERT_RATE_LIMIT_ENABLED":           "rate_limit.enabled",
		"FERT_SERVER_READ_TIMEOUT":          "server.read_timeout",
		"FERT_CORS_ALLOWED_ORIGINS":         "cors.allowed_origins",
		"MONGO_URI":                         "storage.mongo_uri",
		"PROCESSOR_URL":                     "scoring.url",
		"JWT_SECRET":                        "auth.jwt_secret",
		"FERT_DEBUG":                        "",
		"HOME":                              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}

// unsetEnv clears names for the test and restores them afterwards.
func unsetEnv(t *testing.T, names ...string) {
	t.Helper()
	for _, n := range names {
		t.Setenv(n, "")
		require.NoError(t, os.Unsetenv(n))
	}
}

var legacyNames = []string{"MONGO_URI", "MONGO_DB", "PROCESSOR_URL", "SCORING_URL", "JWT_SECRET", "PORT", "LOG_LEVEL", "LOG_FORMAT", configPathEnv}

func TestLoadConfig_Defaults(t *testing.T) {
	unsetEnv(t, legacyNames...)
	t.Chdir(t.TempDir())

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	unsetEnv(t, legacyNames...)
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
storage:
  driver: memory
scoring:
  url: http://scoring.local:8000
  timeout: 2s
  breaker:
    failure_threshold: 0.5
rate_limit:
  requests: 10
crops:
  table_path: /etc/fertadvisor/crops.yaml
`), 0o600))

	t.Setenv("FERT_RATE_LIMIT_ENABLED", "false")
	t.Setenv("FERT_CORS_ALLOWED_ORIGINS", "https://a.test, https://b.test")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "http://scoring.local:8000", cfg.Scoring.URL)
	assert.Equal(t, 2*time.Second, cfg.Scoring.Timeout)
	assert.InDelta(t, 0.5, cfg.Scoring.Breaker.FailureThreshold, 1e-9)
	assert.EqualValues(t, 5, cfg.Scoring.Breaker.MinRequests)
	assert.Equal(t, 10, cfg.RateLimit.Requests)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "/etc/fertadvisor/crops.yaml", cfg.Crops.TablePath)
}

func TestLoadConfig_Invalid(t *testing.T) {
	unsetEnv(t, legacyNames...)
	t.Chdir(t.TempDir())

	t.Run("unknown storage driver", func(t *testing.T) {
		t.Setenv("FERT_STORAGE_DRIVER", "sqlite")
		_, err := loadConfig("")
		assert.ErrorContains(t, err, "invalid config")
	})

	t.Run("bad scoring url", func(t *testing.T) {
		t.Setenv("SCORING_URL", "not a url")
		_, err := loadConfig("")
		assert.ErrorContains(t, err, "invalid config")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
