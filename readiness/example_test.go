package readiness_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/drblury/dbwait/readiness"
)

func ExampleProber_Wait() {
	attempts := 0
	connect := func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("connection refused")
		}
		return nil
	}

	prober := readiness.New(
		readiness.Policy{MaxAttempts: 30, Delay: time.Millisecond},
		readiness.WithTarget("postgres"),
		readiness.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	fmt.Println(prober.Wait(context.Background(), connect))
	fmt.Println(attempts)
	// Output:
	// <nil>
	// 3
}

func ExampleProbe_exhausted() {
	err := readiness.Probe(context.Background(), func(context.Context) error {
		return errors.New("connection refused")
	}, 2, 0,
		readiness.WithTarget("mssql"),
		readiness.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	fmt.Println(errors.Is(err, readiness.ErrRetriesExhausted))
	fmt.Println(err)
	// Output:
	// true
	// mssql: not ready after 2 attempts: connection refused
}

func ExampleGate() {
	gate := readiness.NewGate("redis")
	fmt.Println(gate.Check(context.Background()))

	_ = readiness.Probe(context.Background(), func(context.Context) error { return nil }, 1, 0,
		readiness.WithTarget("redis"),
		readiness.WithObservers(gate),
		readiness.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	fmt.Println(gate.Check(context.Background()))
	// Output:
	// dependencies not ready: redis pending
	// <nil>
}
