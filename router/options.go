package router

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/drblury/dbwait/responder"
)

// Middleware wraps an http.Handler to produce a new http.Handler.
type Middleware func(http.Handler) http.Handler

// Option configures New.
type Option func(*options)

type options struct {
	config    Config
	logger    *slog.Logger
	swagger   *openapi3.T
	responder *responder.Responder
	outer     []Middleware
}

func defaultOptions() *options {
	return &options{
		config: Config{
			Timeout:         30 * time.Second,
			QuietdownRoutes: DefaultQuietdownRoutes(),
		},
		logger: slog.Default(),
	}
}

// middlewareChain is ordered outermost first. CORS must precede validation:
// the OpenAPI document declares no OPTIONS operations.
func (o *options) middlewareChain() []Middleware {
	chain := slices.Clone(o.outer)

	if o.logger != nil {
		chain = append(chain, loggingMiddleware(o.logger, o.config.QuietdownRoutes, o.config.HideHeaders))
	}
	if len(o.config.CORS.Origins) > 0 {
		chain = append(chain, corsMiddleware(o.config.CORS))
	}
	if o.swagger != nil && !o.config.DisableValidation {
		chain = append(chain, oapiMiddleware(o.swagger, o.responder))
	}
	if o.config.Timeout > 0 {
		chain = append(chain, timeoutMiddleware(o.config.Timeout))
	}
	return chain
}

// WithConfig replaces the router configuration. Slices are copied.
func WithConfig(cfg Config) Option {
	cfg.QuietdownRoutes = slices.Clone(cfg.QuietdownRoutes)
	cfg.HideHeaders = slices.Clone(cfg.HideHeaders)
	cfg.CORS.Origins = slices.Clone(cfg.CORS.Origins)
	cfg.CORS.Methods = slices.Clone(cfg.CORS.Methods)
	cfg.CORS.Headers = slices.Clone(cfg.CORS.Headers)
	return func(o *options) {
		o.config = cfg
	}
}

// WithLogger sets the access logger. A nil logger disables access logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSwagger enables request validation against swagger unless
// Config.DisableValidation is set.
func WithSwagger(swagger *openapi3.T) Option {
	return func(o *options) {
		o.swagger = swagger
	}
}

// WithResponder renders validation failures as problem documents. Without
// it the validator answers in plain text.
func WithResponder(r *responder.Responder) Option {
	return func(o *options) {
		o.responder = r
	}
}

// WithMiddlewares wraps the whole chain, in order, outermost first. The
// serve command uses it for request metrics.
func WithMiddlewares(middlewares ...Middleware) Option {
	return func(o *options) {
		o.outer = append(o.outer, middlewares...)
	}
}
