package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/drblury/dbwait/target"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DBWAIT_"

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// LoadOption configures Load.
type LoadOption func(*loader)

type loader struct {
	lookup   LookupFunc
	envFiles []string
}

// WithLookup replaces os.LookupEnv.
func WithLookup(lookup LookupFunc) LoadOption {
	return func(l *loader) {
		if lookup != nil {
			l.lookup = lookup
		}
	}
}

// WithEnvFiles replaces the default .env file list. Missing files are
// skipped.
func WithEnvFiles(files ...string) LoadOption {
	return func(l *loader) {
		l.envFiles = files
	}
}

// Load builds the configuration. An empty path skips the YAML file. Values
// from the process environment win over values read from .env files.
// The result is not validated.
func Load(path string, opts ...LoadOption) (Config, error) {
	l := &loader{lookup: os.LookupEnv, envFiles: []string{".env"}}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	cfg := Default()
	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	dotenv, err := readEnvFiles(l.envFiles)
	if err != nil {
		return Config{}, err
	}
	lookup := func(key string) (string, bool) {
		if v, ok := l.lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	cfg.Normalize()
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func readEnvFiles(files []string) (map[string]string, error) {
	values := make(map[string]string)
	for _, file := range files {
		read, err := godotenv.Read(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", file, err)
		}
		for k, v := range read {
			values[k] = v
		}
	}
	return values, nil
}

func applyEnv(cfg *Config, lookup LookupFunc) error {
	env := envReader{lookup: lookup}

	env.str("LOG_LEVEL", &cfg.Log.Level)
	env.str("LOG_FORMAT", &cfg.Log.Format)

	env.integer("MAX_ATTEMPTS", &cfg.Probe.MaxAttempts)
	env.duration("DELAY", &cfg.Probe.Delay)
	env.duration("ATTEMPT_TIMEOUT", &cfg.Probe.AttemptTimeout)

	env.str("ADDR", &cfg.Server.Addr)
	env.duration("PROBE_TIMEOUT", &cfg.Server.ProbeTimeout)
	env.duration("SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	env.list("CORS_ORIGINS", &cfg.Server.CORS.Origins)
	env.duration("REQUEST_TIMEOUT", &cfg.Server.Timeout)
	env.boolean("DISABLE_VALIDATION", &cfg.Server.DisableValidation)

	env.boolean("POLLER_ENABLED", &cfg.Poller.Enabled)
	env.str("POLLER_TARGET", &cfg.Poller.Target)
	env.duration("POLLER_INTERVAL", &cfg.Poller.Interval)

	// DATABASE_URL is the conventional way containers receive a Postgres DSN.
	if len(cfg.Targets) == 0 {
		if dsn, ok := lookup("DATABASE_URL"); ok && strings.TrimSpace(dsn) != "" {
			cfg.Targets = append(cfg.Targets, target.Spec{Name: "database", Kind: target.KindPostgres, DSN: dsn})
		}
	}

	return errors.Join(env.errs...)
}

type envReader struct {
	lookup LookupFunc
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(EnvPrefix + key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (e *envReader) fail(key, value string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s%s=%q: %w", EnvPrefix, key, value, err))
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) list(key string, dst *[]string) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func (e *envReader) integer(key string, dst *int) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = n
}

func (e *envReader) boolean(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = b
}

func (e *envReader) duration(key string, dst *time.Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = d
}
