package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/dbwait/poller"
	"github.com/drblury/dbwait/target"
)

func lookupFrom(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const sampleYAML = `
log:
  level: debug
  format: text
probe:
  max_attempts: 3
  delay: 250ms
  attempt_timeout: 1s
targets:
  - name: primary
    kind: postgres
    dsn: postgres://app@localhost:5432/app?sslmode=disable
  - name: cache
    kind: redis
    dsn: redis://localhost:6379/0
server:
  addr: ":9090"
  timeout: 5s
  quietdown_routes: [/healthz]
  cors:
    origins: ["https://example.com"]
poller:
  enabled: true
  interval: 2s
  queries:
    - name: ping
      sql: SELECT 1
`

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "dbwait.yaml", sampleYAML)

	cfg, err := Load(path, WithLookup(lookupFrom(nil)), WithEnvFiles())
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Probe.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Probe.Delay)
	assert.Equal(t, time.Second, cfg.Probe.AttemptTimeout)
	require.Len(t, cfg.Targets, 2)
	assert.Equal(t, target.KindRedis, cfg.Targets[1].Kind)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.Timeout)
	assert.Equal(t, []string{"/healthz"}, cfg.Server.QuietdownRoutes)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.CORS.Origins)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout, "unset fields keep defaults")

	assert.Equal(t, "primary", cfg.Poller.Target, "poller defaults to the first SQL target")
	assert.Equal(t, 2*time.Second, cfg.Poller.Interval)
	require.Len(t, cfg.Poller.QueriesOrDefault(), 1)

	policy := cfg.Probe.Policy()
	assert.Equal(t, 500*time.Millisecond, policy.Budget())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), WithEnvFiles())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeFile(t, "bad.yaml", "probe: [unclosed")
	_, err := Load(path, WithEnvFiles())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", WithLookup(lookupFrom(nil)), WithEnvFiles())
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 30, cfg.Probe.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Probe.Delay)
	assert.Len(t, cfg.Poller.QueriesOrDefault(), 5)
}

func TestEnvOverrides(t *testing.T) {
	path := writeFile(t, "dbwait.yaml", sampleYAML)
	env := map[string]string{
		"DBWAIT_LOG_LEVEL":       "warn",
		"DBWAIT_MAX_ATTEMPTS":    "7",
		"DBWAIT_DELAY":           "1s",
		"DBWAIT_ADDR":            ":7070",
		"DBWAIT_CORS_ORIGINS":    "https://a.example, https://b.example",
		"DBWAIT_POLLER_ENABLED":  "false",
		"DBWAIT_POLLER_INTERVAL": "10s",

		"DBWAIT_REQUEST_TIMEOUT":    "0s",
		"DBWAIT_DISABLE_VALIDATION": "true",
	}

	cfg, err := Load(path, WithLookup(lookupFrom(env)), WithEnvFiles())
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 7, cfg.Probe.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Probe.Delay)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORS.Origins)
	assert.False(t, cfg.Poller.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Poller.Interval)
	assert.Zero(t, cfg.Server.Timeout)
	assert.True(t, cfg.Server.DisableValidation)
}

func TestEnvOverrideErrors(t *testing.T) {
	env := map[string]string{
		"DBWAIT_MAX_ATTEMPTS":   "many",
		"DBWAIT_DELAY":          "soon",
		"DBWAIT_POLLER_ENABLED": "perhaps",
	}

	_, err := Load("", WithLookup(lookupFrom(env)), WithEnvFiles())
	require.Error(t, err)
	for _, key := range []string{"DBWAIT_MAX_ATTEMPTS", "DBWAIT_DELAY", "DBWAIT_POLLER_ENABLED"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestEnvFiles(t *testing.T) {
	envFile := writeFile(t, ".env", "DBWAIT_MAX_ATTEMPTS=4\nDBWAIT_DELAY=2s\nDATABASE_URL=postgres://app@db/app\n")

	t.Run("dotenv values apply", func(t *testing.T) {
		cfg, err := Load("", WithLookup(lookupFrom(nil)), WithEnvFiles(envFile, filepath.Join(t.TempDir(), "absent.env")))
		require.NoError(t, err)
		assert.Equal(t, 4, cfg.Probe.MaxAttempts)
		assert.Equal(t, 2*time.Second, cfg.Probe.Delay)
		require.Len(t, cfg.Targets, 1)
		assert.Equal(t, target.Spec{Name: "database", Kind: target.KindPostgres, DSN: "postgres://app@db/app"}, cfg.Targets[0])
	})

	t.Run("process environment wins", func(t *testing.T) {
		cfg, err := Load("", WithLookup(lookupFrom(map[string]string{"DBWAIT_MAX_ATTEMPTS": "9"})), WithEnvFiles(envFile))
		require.NoError(t, err)
		assert.Equal(t, 9, cfg.Probe.MaxAttempts)
		assert.Equal(t, 2*time.Second, cfg.Probe.Delay)
	})

	t.Run("database url ignored when targets are configured", func(t *testing.T) {
		path := writeFile(t, "dbwait.yaml", sampleYAML)
		cfg, err := Load(path, WithLookup(lookupFrom(nil)), WithEnvFiles(envFile))
		require.NoError(t, err)
		assert.Len(t, cfg.Targets, 2)
	})
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Default()
		cfg.Targets = []target.Spec{
			{Name: "primary", Kind: target.KindPostgres, DSN: "postgres://localhost/app"},
			{Name: "web", Kind: target.KindHTTP, URL: "http://localhost/healthz"},
		}
		return cfg
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative attempts", func(c *Config) { c.Probe.MaxAttempts = -1 }, "probe.max_attempts must not be negative"},
		{"negative delay", func(c *Config) { c.Probe.Delay = -time.Second }, "probe.delay must not be negative"},
		{"negative attempt timeout", func(c *Config) { c.Probe.AttemptTimeout = -time.Second }, "probe.attempt_timeout"},
		{"no targets", func(c *Config) { c.Targets = nil }, "no targets configured"},
		{"unknown kind", func(c *Config) { c.Targets[0].Kind = "oracle" }, `unknown kind "oracle"`},
		{"duplicate names", func(c *Config) { c.Targets[1].Name = "primary" }, `target "primary": duplicate name`},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, `log level "loud"`},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, `log format "xml"`},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr is required"},
		{"negative request timeout", func(c *Config) { c.Server.Timeout = -time.Second }, "server.timeout must not be negative"},
		{"poller on http target", func(c *Config) {
			c.Poller.Enabled = true
			c.Poller.Target = "web"
		}, "does not expose a SQL connection"},
		{"poller on unknown target", func(c *Config) {
			c.Poller.Enabled = true
			c.Poller.Target = "ghost"
		}, `unknown target "ghost"`},
		{"poller without target", func(c *Config) { c.Poller.Enabled = true }, "no SQL target configured"},
		{"poller query without sql", func(c *Config) {
			c.Poller.Enabled = true
			c.Poller.Target = "primary"
			c.Poller.Queries = []poller.Query{{Name: "empty"}}
		}, "poller.queries[0]: sql is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Probe.MaxAttempts = -1
	cfg.Server.Addr = ""

	err := cfg.Validate()
	require.Error(t, err)
	lines := strings.Split(err.Error(), "\n")
	assert.Len(t, lines, 3)
}

func TestLogConfigLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := LogConfig{Level: "warn", Format: "text"}.Logger(&buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "target", "primary")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "target=primary")

	buf.Reset()
	logger, err = LogConfig{}.Logger(&buf)
	require.NoError(t, err)
	logger.Info("json")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
}
