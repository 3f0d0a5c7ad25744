// Package cli implements the dbwait command line.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drblury/dbwait/config"
	"github.com/drblury/dbwait/readiness"
	"github.com/drblury/dbwait/target"
)

// Exit codes returned by ExitCode.
const (
	ExitOK       = 0
	ExitNotReady = 1
	ExitUsage    = 2
	ExitCanceled = 130
)

// ExitCode maps an error returned by the root command to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, readiness.ErrCanceled):
		return ExitCanceled
	case errors.Is(err, readiness.ErrRetriesExhausted):
		return ExitNotReady
	default:
		return ExitUsage
	}
}

type rootFlags struct {
	configFile     string
	envFiles       []string
	logLevel       string
	logFormat      string
	maxAttempts    int
	delay          string
	attemptTimeout string
	targets        []string
	lookup         config.LookupFunc
}

// NewRootCmd returns the dbwait command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootFlags{})
}

func newRootCmd(flags *rootFlags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dbwait",
		Short:         "Block until databases and services accept connections",
		Long:          "dbwait retries a connection to every configured dependency with a bounded budget, then exits or keeps serving health endpoints.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "c", "", "YAML config file")
	pf.StringSliceVar(&flags.envFiles, "env-file", []string{".env"}, "dotenv files read before DBWAIT_* variables")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug|info|warn|error")
	pf.StringVar(&flags.logFormat, "log-format", "", "log format: json|text")
	pf.IntVar(&flags.maxAttempts, "max-attempts", -1, "connection attempts per target (default from config, 30)")
	pf.StringVar(&flags.delay, "delay", "", "pause between attempts, e.g. 5s")
	pf.StringVar(&flags.attemptTimeout, "attempt-timeout", "", "deadline of a single attempt, e.g. 3s")
	pf.StringArrayVarP(&flags.targets, "target", "t", nil, "extra target as kind=dsn|url|addr, e.g. postgres=postgres://localhost/app")

	rootCmd.AddCommand(newWaitCmd(flags))
	rootCmd.AddCommand(newServeCmd(flags))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// load resolves the configuration for a subcommand: file, env, then flags.
func (f *rootFlags) load(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	opts := []config.LoadOption{config.WithEnvFiles(f.envFiles...)}
	if f.lookup != nil {
		opts = append(opts, config.WithLookup(f.lookup))
	}
	cfg, err := config.Load(f.configFile, opts...)
	if err != nil {
		return config.Config{}, nil, err
	}

	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	if f.maxAttempts >= 0 {
		cfg.Probe.MaxAttempts = f.maxAttempts
	}
	if err := parseDurationFlag("delay", f.delay, &cfg.Probe.Delay); err != nil {
		return config.Config{}, nil, err
	}
	if err := parseDurationFlag("attempt-timeout", f.attemptTimeout, &cfg.Probe.AttemptTimeout); err != nil {
		return config.Config{}, nil, err
	}
	for _, raw := range f.targets {
		spec, err := parseTargetFlag(raw, cfg.Targets)
		if err != nil {
			return config.Config{}, nil, err
		}
		cfg.Targets = append(cfg.Targets, spec)
	}
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger, err := cfg.Log.Logger(cmd.ErrOrStderr())
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// parseTargetFlag turns "kind=value" into a spec named after the kind,
// suffixed with a counter when the name is taken.
func parseTargetFlag(raw string, existing []target.Spec) (target.Spec, error) {
	kind, value, ok := strings.Cut(raw, "=")
	if !ok || strings.TrimSpace(value) == "" {
		return target.Spec{}, fmt.Errorf("--target %q: want kind=value", raw)
	}

	spec := target.Spec{Kind: target.Kind(strings.ToLower(strings.TrimSpace(kind)))}
	switch spec.Kind {
	case target.KindHTTP:
		spec.URL = value
	case target.KindTCP:
		spec.Addr = value
	default:
		spec.DSN = value
	}

	spec.Name = string(spec.Kind)
	for n := 2; nameTaken(spec.Name, existing); n++ {
		spec.Name = fmt.Sprintf("%s-%d", spec.Kind, n)
	}
	return spec, nil
}

func nameTaken(name string, specs []target.Spec) bool {
	for _, s := range specs {
		if s.DisplayName() == name {
			return true
		}
	}
	return false
}
