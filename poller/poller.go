// Package poller runs a rotating set of SQL queries against a database that
// has already been proven ready. It is the steady-state workload that follows
// a successful readiness wait: one query per tick, row counts logged, errors
// logged and skipped.
package poller

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"
)

// DefaultInterval is the pause between two queries.
const DefaultInterval = 5 * time.Second

// Querier is the subset of *sql.DB the poller needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// QueryObserver receives the outcome of every executed query.
type QueryObserver interface {
	ObserveQuery(name string, elapsed time.Duration, err error)
}

// Query is one entry of the rotation.
type Query struct {
	Name string `yaml:"name"`
	SQL  string `yaml:"sql"`
	Args []any  `yaml:"args"`
}

// Result describes one executed tick.
type Result struct {
	Sequence int
	Query    string
	Rows     int
	Elapsed  time.Duration
}

// ErrNoQueries is returned by New when the rotation is empty.
var ErrNoQueries = errors.New("poller: at least one query is required")

// Option configures a Poller.
type Option func(*Poller)

// Poller cycles through its queries, one per tick. It is not safe for
// concurrent use; run it from a single goroutine.
type Poller struct {
	db        Querier
	queries   []Query
	interval  time.Duration
	log       *slog.Logger
	observers []QueryObserver
	now       func() time.Time
	sequence  int
}

// New builds a Poller over db. The queries slice is copied.
func New(db Querier, queries []Query, opts ...Option) (*Poller, error) {
	if db == nil {
		return nil, errors.New("poller: querier is nil")
	}
	if len(queries) == 0 {
		return nil, ErrNoQueries
	}
	p := &Poller{
		db:       db,
		queries:  append([]Query(nil), queries...),
		interval: DefaultInterval,
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// WithInterval sets the pause between ticks.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger injects the logger used for per-query records.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Poller) {
		if logger != nil {
			p.log = logger
		}
	}
}

// WithObservers registers query observers such as the metrics collector.
func WithObservers(observers ...QueryObserver) Option {
	return func(p *Poller) {
		for _, o := range observers {
			if o != nil {
				p.observers = append(p.observers, o)
			}
		}
	}
}

// Tick runs the next query of the rotation. The first tick runs the first
// query.
func (p *Poller) Tick(ctx context.Context) (Result, error) {
	p.sequence++
	q := p.queries[(p.sequence-1)%len(p.queries)]
	res := Result{Sequence: p.sequence, Query: q.Name}

	started := p.now()
	rows, err := p.count(ctx, q)
	res.Rows = rows
	res.Elapsed = p.now().Sub(started)

	for _, o := range p.observers {
		o.ObserveQuery(q.Name, res.Elapsed, err)
	}
	if err != nil {
		p.log.Error("query failed", "sequence", res.Sequence, "query", q.Name, "error", err.Error())
		return res, err
	}
	p.log.Info("query completed", "sequence", res.Sequence, "query", q.Name, "rows", res.Rows, "elapsed", res.Elapsed.String())
	return res, nil
}

// Run ticks immediately and then every interval until ctx is done. Query
// errors are logged and do not stop the loop. Run returns nil on a normal
// shutdown.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Info("starting query loop", "queries", len(p.queries), "interval", p.interval.String())

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}
		_, _ = p.Tick(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (p *Poller) count(ctx context.Context, q Query) (int, error) {
	rows, err := p.db.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n := 0
	for {
		for rows.Next() {
			n++
		}
		if !rows.NextResultSet() {
			break
		}
	}
	return n, rows.Err()
}
