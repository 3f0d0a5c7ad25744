package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/drblury/dbwait/config"
	"github.com/drblury/dbwait/readiness"
	"github.com/drblury/dbwait/target"
)

func parseDurationFlag(name, raw string, dst *time.Duration) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("--%s %q: %w", name, raw, err)
	}
	*dst = d
	return nil
}

// dependencies owns the opened targets of one command run.
type dependencies struct {
	cfg     config.Config
	log     *slog.Logger
	targets []*target.Target
}

func openDependencies(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...target.Option) (*dependencies, error) {
	deps := &dependencies{cfg: cfg, log: logger}
	opts = append([]target.Option{target.WithLogger(logger)}, opts...)
	for _, spec := range cfg.Targets {
		t, err := target.Open(ctx, spec, opts...)
		if err != nil {
			_ = deps.Close(ctx)
			return nil, err
		}
		deps.targets = append(deps.targets, t)
	}
	return deps, nil
}

func (d *dependencies) names() []string {
	names := make([]string, 0, len(d.targets))
	for _, t := range d.targets {
		names = append(names, t.Name)
	}
	return names
}

func (d *dependencies) lookup(name string) (*target.Target, bool) {
	for _, t := range d.targets {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// waitAll probes the targets one after the other, each with its own budget.
// The first target that does not become ready aborts the run.
func (d *dependencies) waitAll(ctx context.Context, observers ...readiness.Observer) error {
	policy := d.cfg.Probe.Policy()
	started := time.Now()

	for _, t := range d.targets {
		prober := readiness.New(policy,
			readiness.WithTarget(t.Name),
			readiness.WithLogger(d.log),
			readiness.WithAttemptTimeout(d.cfg.Probe.AttemptTimeout),
			readiness.WithObservers(observers...),
		)
		if err := prober.Wait(ctx, readiness.AttemptFunc(t.Check)); err != nil {
			return err
		}
	}

	d.log.Info("all targets ready", "targets", len(d.targets), "elapsed", time.Since(started))
	return nil
}

// Close releases every target with a bounded grace period.
func (d *dependencies) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	var errs []error
	for _, t := range d.targets {
		if err := t.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", t.Name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		d.log.Warn("failed to release targets", "error", err)
		return err
	}
	return nil
}
