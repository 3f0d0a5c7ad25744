package readiness

import (
	"context"
	"log/slog"
	"time"
)

// AttemptFunc tries to reach the dependency once. A nil error means ready.
// Every non-nil error is treated as transient until the budget is spent.
type AttemptFunc func(ctx context.Context) error

// Waiter pauses between attempts. It must return early with a non-nil error
// once ctx is done.
type Waiter func(ctx context.Context, d time.Duration) error

// Option configures a Prober.
type Option func(*Prober)

// Prober drives an AttemptFunc until it succeeds, the policy is exhausted or
// the context ends. A Prober keeps no state between Wait calls and can be
// shared by several goroutines.
type Prober struct {
	policy         Policy
	target         string
	log            *slog.Logger
	wait           Waiter
	now            func() time.Time
	attemptTimeout time.Duration
	observers      []Observer
}

// New builds a Prober for policy. Without options it logs to slog.Default
// and sleeps on a real timer between attempts.
func New(policy Policy, opts ...Option) *Prober {
	p := &Prober{
		policy: policy.normalized(),
		target: "dependency",
		log:    slog.Default(),
		wait:   sleepContext,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// WithTarget names the dependency in logs, events and errors.
func WithTarget(name string) Option {
	return func(p *Prober) {
		if name != "" {
			p.target = name
		}
	}
}

// WithLogger injects the logger used for attempt and failure records.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prober) {
		if logger != nil {
			p.log = logger
		}
	}
}

// WithWaiter replaces the timer based pause between attempts.
func WithWaiter(w Waiter) Option {
	return func(p *Prober) {
		if w != nil {
			p.wait = w
		}
	}
}

// WithClock replaces time.Now when measuring elapsed time.
func WithClock(now func() time.Time) Option {
	return func(p *Prober) {
		if now != nil {
			p.now = now
		}
	}
}

// WithAttemptTimeout bounds each individual attempt. Zero leaves attempts
// bounded only by the caller's context.
func WithAttemptTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.attemptTimeout = d
		}
	}
}

// WithObservers registers observers notified of every attempt and outcome.
func WithObservers(observers ...Observer) Option {
	return func(p *Prober) {
		for _, o := range observers {
			if o != nil {
				p.observers = append(p.observers, o)
			}
		}
	}
}

// Policy returns the normalized policy the Prober follows.
func (p *Prober) Policy() Policy {
	return p.policy
}

// Probe is a shorthand for New(Policy{maxAttempts, delay}).Wait(ctx, attempt).
func Probe(ctx context.Context, attempt AttemptFunc, maxAttempts int, delay time.Duration, opts ...Option) error {
	return New(Policy{MaxAttempts: maxAttempts, Delay: delay}, opts...).Wait(ctx, attempt)
}

// Wait invokes attempt until it returns nil. It returns nil on readiness, an
// *ExhaustedError once MaxAttempts attempts have failed and a *CanceledError
// when ctx ends first. No delay follows the final attempt.
func (p *Prober) Wait(ctx context.Context, attempt AttemptFunc) error {
	if attempt == nil {
		return ErrNilAttempt
	}
	ctx = contextOrBackground(ctx)

	run := &run{Prober: p, started: p.now()}
	maxAttempts := p.policy.MaxAttempts
	if maxAttempts == 0 {
		return run.exhausted(0, nil)
	}

	var last error
	for n := 1; n <= maxAttempts; n++ {
		if err := ctx.Err(); err != nil {
			return run.canceled(n-1, context.Cause(ctx))
		}

		run.emit(Event{Kind: EventAttempt, Attempt: n})
		p.log.Debug("attempting connection", "target", p.target, "attempt", n, "maxAttempts", maxAttempts)

		err := p.try(ctx, attempt)
		if err == nil {
			return run.ready(n)
		}
		last = err

		failure := &AttemptError{Target: p.target, Attempt: n, MaxAttempts: maxAttempts, Err: err}
		run.emit(Event{Kind: EventFailure, Attempt: n, Err: failure})
		p.log.Warn("dependency not ready", "target", p.target, "attempt", n, "maxAttempts", maxAttempts, "error", err.Error())

		if ctx.Err() != nil {
			return run.canceled(n, context.Cause(ctx))
		}
		if n == maxAttempts {
			break
		}
		if err := p.wait(ctx, p.policy.Delay); err != nil {
			return run.canceled(n, err)
		}
	}

	return run.exhausted(maxAttempts, last)
}

func (p *Prober) try(ctx context.Context, attempt AttemptFunc) error {
	if p.attemptTimeout <= 0 {
		return attempt(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, p.attemptTimeout)
	defer cancel()
	return attempt(attemptCtx)
}

// run carries the per-call bookkeeping of a single Wait.
type run struct {
	*Prober
	started time.Time
}

func (r *run) emit(e Event) {
	if len(r.observers) == 0 {
		return
	}
	e.Target = r.target
	e.MaxAttempts = r.policy.MaxAttempts
	e.Elapsed = r.now().Sub(r.started)
	for _, o := range r.observers {
		o.Observe(e)
	}
}

func (r *run) ready(attempts int) error {
	r.emit(Event{Kind: EventReady, Attempt: attempts})
	r.log.Info("dependency ready", "target", r.target, "attempts", attempts, "elapsed", r.now().Sub(r.started).String())
	return nil
}

func (r *run) exhausted(attempts int, last error) error {
	err := &ExhaustedError{Target: r.target, Attempts: attempts, Last: last}
	r.emit(Event{Kind: EventExhausted, Attempt: attempts, Err: err})
	r.log.Error("dependency never became ready", "target", r.target, "attempts", attempts, "error", err.Error())
	return err
}

func (r *run) canceled(attempts int, cause error) error {
	if cause == nil {
		cause = context.Canceled
	}
	err := &CanceledError{Target: r.target, Attempts: attempts, Cause: cause}
	r.emit(Event{Kind: EventCanceled, Attempt: attempts, Err: err})
	r.log.Info("readiness wait canceled", "target", r.target, "attempts", attempts, "reason", cause.Error())
	return err
}
