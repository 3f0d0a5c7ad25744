package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/drblury/dbwait/api"
	"github.com/drblury/dbwait/config"
	"github.com/drblury/dbwait/info"
	"github.com/drblury/dbwait/metrics"
	"github.com/drblury/dbwait/poller"
	"github.com/drblury/dbwait/readiness"
	"github.com/drblury/dbwait/responder"
	"github.com/drblury/dbwait/router"
)

const defaultShutdownTimeout = 10 * time.Second

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve health endpoints, wait for the targets, then run the query loop",
		Long: "serve answers /healthz immediately and /readyz with 503 until every target is ready. " +
			"When the budget of a target runs out the server shuts down and the command fails.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			deps, err := openDependencies(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = deps.Close(ctx) }()

			return serve(ctx, cmd, deps)
		},
	}
}

// surface bundles the pieces shared by the HTTP handler and the wait loop.
type surface struct {
	gate      *readiness.Gate
	collector *metrics.Collector
	handler   http.Handler
}

func newSurface(deps *dependencies) (*surface, error) {
	cfg, logger := deps.cfg, deps.log

	gate := readiness.NewGate(deps.names()...)
	collector := metrics.NewCollector("dbwait")
	resp := responder.NewResponder(responder.WithLogger(logger))

	readinessChecks := []info.ProbeFunc{gate.Check}
	for _, t := range deps.targets {
		readinessChecks = append(readinessChecks, t.Check)
	}

	infoHandler := info.NewInfoHandler(
		info.WithInfoResponder(resp),
		info.WithInfoProvider(func() any { return BuildInfo() }),
		info.WithOpenAPIProvider(api.JSON),
		info.WithDependencyReporter(func() any { return gate.Statuses() }),
		info.WithProbeTimeout(cfg.Server.ProbeTimeout),
		info.WithReadinessChecks(readinessChecks...),
	)

	mux := http.NewServeMux()
	infoHandler.Register(mux)
	mux.Handle("GET /metrics", collector.Handler())

	swagger, err := api.Swagger()
	if err != nil {
		return nil, err
	}

	return &surface{
		gate:      gate,
		collector: collector,
		handler: router.New(mux,
			router.WithLogger(logger),
			router.WithConfig(cfg.Server.Config),
			router.WithSwagger(swagger),
			router.WithResponder(resp),
			router.WithMiddlewares(collector.Instrument),
		),
	}, nil
}

func serve(ctx context.Context, cmd *cobra.Command, deps *dependencies) error {
	cfg, logger := deps.cfg, deps.log

	s, err := newSurface(deps)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
	}
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("health server listening", "addr", listener.Addr().String())
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()
	defer shutdown(ctx, server, cfg.Server, logger)

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	go func() {
		if err := <-serverErr; err != nil {
			cancel(fmt.Errorf("health server: %w", err))
		}
	}()

	if err := deps.waitAll(runCtx, s.gate, s.collector); err != nil {
		return serverFailure(ctx, runCtx, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ready: %d target(s), serving on %s\n", len(deps.targets), listener.Addr())

	if cfg.Poller.Enabled {
		if err := runPoller(runCtx, deps, s.collector); err != nil {
			return err
		}
	}

	<-runCtx.Done()
	logger.Info("shutting down", "cause", context.Cause(runCtx))
	return serverFailure(ctx, runCtx, nil)
}

// serverFailure prefers the server error over err when the run was stopped
// by the server rather than by the caller.
func serverFailure(parent, run context.Context, err error) error {
	if parent.Err() == nil && run.Err() != nil {
		return context.Cause(run)
	}
	return err
}

func runPoller(ctx context.Context, deps *dependencies, observer poller.QueryObserver) error {
	cfg := deps.cfg.Poller
	t, ok := deps.lookup(cfg.Target)
	if !ok {
		return fmt.Errorf("poller: unknown target %q", cfg.Target)
	}
	db, err := t.DB()
	if err != nil {
		return fmt.Errorf("poller: %w", err)
	}

	p, err := poller.New(db, cfg.QueriesOrDefault(),
		poller.WithInterval(cfg.Interval),
		poller.WithLogger(deps.log.With("target", t.Name)),
		poller.WithObservers(observer),
	)
	if err != nil {
		return err
	}
	return p.Run(ctx)
}

func shutdown(ctx context.Context, server *http.Server, cfg config.ServerConfig, logger *slog.Logger) {
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("health server shutdown", "error", err)
	}
}
