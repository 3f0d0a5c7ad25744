// Package dbwait blocks service startup until the databases and services it
// depends on accept connections, retrying each one with a bounded budget.
//
// The readiness package holds the retry loop: a Prober invokes a connection
// attempt up to MaxAttempts times with a fixed Delay in between, returns nil
// on the first success and an *ExhaustedError once the budget is spent.
// Cancellation through the context interrupts a pending delay and yields a
// *CanceledError instead. Observers receive every attempt and outcome; the
// Gate observer turns them into a readiness check for HTTP probes.
//
// # Packages
//
//   - readiness: the bounded retry loop, its events and the readiness Gate.
//   - probe: adapters turning database pings, HTTP endpoints and TCP dials
//     into connection attempts.
//   - target: opens Postgres, ClickHouse, MongoDB, Redis, HTTP and TCP
//     dependencies from configuration.
//   - poller: the periodic query loop run against a ready database.
//   - metrics: Prometheus counters for attempts, outcomes and queries.
//   - info, responder, router, api: the health endpoints and their OpenAPI
//     document.
//   - config: YAML, dotenv and DBWAIT_* environment configuration.
//   - jsonutil: sonic wrappers used for every JSON payload.
//
// # Quick Start
//
//	db, _ := sql.Open("postgres", dsn)
//	prober := readiness.New(readiness.DefaultPolicy(),
//	    readiness.WithTarget("postgres"),
//	    readiness.WithLogger(logger),
//	)
//	if err := prober.Wait(ctx, readiness.AttemptFunc(probe.NewDBPingProbe("postgres", db))); err != nil {
//	    return err // errors.Is(err, readiness.ErrRetriesExhausted) or readiness.ErrCanceled
//	}
//
// The dbwait command wraps the same loop: "dbwait wait" exits once every
// target is ready, "dbwait serve" also exposes /healthz, /readyz and /metrics.
package dbwait
