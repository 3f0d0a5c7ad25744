// Package config loads the dbwait configuration from a YAML file, optional
// .env files and DBWAIT_* environment variables, in that order of
// precedence from lowest to highest.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/drblury/dbwait/poller"
	"github.com/drblury/dbwait/readiness"
	"github.com/drblury/dbwait/router"
	"github.com/drblury/dbwait/target"
)

// Config is the root of the configuration file.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Probe   ProbeConfig   `yaml:"probe"`
	Targets []target.Spec `yaml:"targets"`
	Server  ServerConfig  `yaml:"server"`
	Poller  PollerConfig  `yaml:"poller"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ProbeConfig is the retry budget shared by every target.
type ProbeConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	Delay          time.Duration `yaml:"delay"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout"`
}

// ServerConfig configures the health endpoints of the serve command.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	ProbeTimeout      time.Duration `yaml:"probe_timeout"`
	router.Config     `yaml:",inline"`
}

// PollerConfig enables the query loop that runs once the targets are ready.
// Target names the SQL target to query; empty selects the first one.
type PollerConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Target   string         `yaml:"target"`
	Interval time.Duration  `yaml:"interval"`
	Queries  []poller.Query `yaml:"queries"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	policy := readiness.DefaultPolicy()
	return Config{
		Log: LogConfig{Level: "info", Format: "json"},
		Probe: ProbeConfig{
			MaxAttempts: policy.MaxAttempts,
			Delay:       policy.Delay,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			ProbeTimeout:      2 * time.Second,
			Config: router.Config{
				Timeout:         30 * time.Second,
				QuietdownRoutes: router.DefaultQuietdownRoutes(),
			},
		},
		Poller: PollerConfig{Interval: poller.DefaultInterval},
	}
}

// Policy converts the probe section into a readiness policy.
func (p ProbeConfig) Policy() readiness.Policy {
	return readiness.Policy{MaxAttempts: p.MaxAttempts, Delay: p.Delay}
}

// SlogLevel parses the configured level. Empty means info.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(l.Level) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", l.Level, err)
	}
	return level, nil
}

// Logger builds a logger writing to w in the configured format.
func (l LogConfig) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := l.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(l.Format) {
	case "", "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("log format %q: must be json or text", l.Format)
	}
}

// QueriesOrDefault returns the configured queries or the default rotation.
func (p PollerConfig) QueriesOrDefault() []poller.Query {
	if len(p.Queries) > 0 {
		return p.Queries
	}
	return poller.DefaultQueries()
}

// Target returns the target spec with the given name.
func (c Config) Target(name string) (target.Spec, bool) {
	for _, spec := range c.Targets {
		if spec.DisplayName() == name {
			return spec, true
		}
	}
	return target.Spec{}, false
}

// Normalize fills fields derived from the target list. An enabled poller
// without a target is pointed at the first SQL target. Call it again after
// adding targets outside Load.
func (c *Config) Normalize() {
	c.Poller.Target = strings.TrimSpace(c.Poller.Target)
	if !c.Poller.Enabled || c.Poller.Target != "" {
		return
	}
	for _, spec := range c.Targets {
		if spec.Kind.SQL() {
			c.Poller.Target = spec.DisplayName()
			return
		}
	}
}

// Validate reports every problem found in the configuration.
func (c Config) Validate() error {
	var errs []error

	if _, err := c.Log.Logger(io.Discard); err != nil {
		errs = append(errs, err)
	}

	if c.Probe.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("probe.max_attempts must not be negative, got %d", c.Probe.MaxAttempts))
	}
	if c.Probe.Delay < 0 {
		errs = append(errs, fmt.Errorf("probe.delay must not be negative, got %s", c.Probe.Delay))
	}
	if c.Probe.AttemptTimeout < 0 {
		errs = append(errs, fmt.Errorf("probe.attempt_timeout must not be negative, got %s", c.Probe.AttemptTimeout))
	}

	if len(c.Targets) == 0 {
		errs = append(errs, errors.New("no targets configured"))
	}
	seen := make(map[string]bool, len(c.Targets))
	for _, spec := range c.Targets {
		if err := spec.Validate(); err != nil {
			errs = append(errs, err)
		}
		name := spec.DisplayName()
		if seen[name] {
			errs = append(errs, fmt.Errorf("target %q: duplicate name", name))
		}
		seen[name] = true
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.Timeout < 0 {
		errs = append(errs, fmt.Errorf("server.timeout must not be negative, got %s", c.Server.Timeout))
	}

	if c.Poller.Enabled {
		errs = append(errs, c.validatePoller()...)
	}

	return errors.Join(errs...)
}

func (c Config) validatePoller() []error {
	var errs []error
	if c.Poller.Interval < 0 {
		errs = append(errs, fmt.Errorf("poller.interval must not be negative, got %s", c.Poller.Interval))
	}
	if c.Poller.Target == "" {
		errs = append(errs, errors.New("poller: no SQL target configured"))
	} else if spec, ok := c.Target(c.Poller.Target); !ok {
		errs = append(errs, fmt.Errorf("poller: unknown target %q", c.Poller.Target))
	} else if !spec.Kind.SQL() {
		errs = append(errs, fmt.Errorf("poller: target %q: %w", c.Poller.Target, target.ErrNotSQL))
	}
	for i, q := range c.Poller.Queries {
		if strings.TrimSpace(q.SQL) == "" {
			errs = append(errs, fmt.Errorf("poller.queries[%d]: sql is required", i))
		}
	}
	return errs
}
