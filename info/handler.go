package info

import (
	"errors"
	"net/http"
	"time"

	"github.com/drblury/dbwait/probe"
	"github.com/drblury/dbwait/responder"
)

// InfoProvider returns the payload exposed by the version endpoint.
type InfoProvider func() any

// OpenAPIProvider returns the raw OpenAPI document served at /openapi.json.
type OpenAPIProvider func() ([]byte, error)

// DependencyReporter returns a snapshot of dependency states for /status.
type DependencyReporter func() any

// InfoOption configures NewInfoHandler.
type InfoOption func(*InfoHandler)

const defaultProbeTimeout = 2 * time.Second

// ProbeFunc is executed by liveness and readiness endpoints. Returning a
// non-nil error marks the probe as failed.
type ProbeFunc = probe.Func

// InfoHandler serves the operational endpoints of the service.
type InfoHandler struct {
	*responder.Responder
	infoProvider    InfoProvider
	openapiProvider OpenAPIProvider
	dependencies    DependencyReporter
	probeTimeout    time.Duration
	livenessChecks  []ProbeFunc
	readinessChecks []ProbeFunc
}

// NewInfoHandler constructs an InfoHandler with no checks, an empty version
// payload and no OpenAPI document.
func NewInfoHandler(opts ...InfoOption) *InfoHandler {
	ih := &InfoHandler{
		Responder: responder.NewResponder(),
		infoProvider: func() any {
			return map[string]string{}
		},
		openapiProvider: func() ([]byte, error) {
			return nil, errors.New("openapi provider not configured")
		},
		probeTimeout: defaultProbeTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ih)
		}
	}
	return ih
}

// WithInfoResponder replaces the responder used for JSON and problem output.
func WithInfoResponder(r *responder.Responder) InfoOption {
	return func(ih *InfoHandler) {
		if r != nil {
			ih.Responder = r
		}
	}
}

// WithInfoProvider sets the version payload source.
func WithInfoProvider(provider InfoProvider) InfoOption {
	return func(ih *InfoHandler) {
		if provider != nil {
			ih.infoProvider = provider
		}
	}
}

// WithOpenAPIProvider sets the source of /openapi.json.
func WithOpenAPIProvider(provider OpenAPIProvider) InfoOption {
	return func(ih *InfoHandler) {
		if provider != nil {
			ih.openapiProvider = provider
		}
	}
}

// WithDependencyReporter attaches dependency states to the /status payload.
func WithDependencyReporter(reporter DependencyReporter) InfoOption {
	return func(ih *InfoHandler) {
		ih.dependencies = reporter
	}
}

// WithProbeTimeout bounds the total time a liveness or readiness request may
// spend running checks.
func WithProbeTimeout(timeout time.Duration) InfoOption {
	return func(ih *InfoHandler) {
		if timeout > 0 {
			ih.probeTimeout = timeout
		}
	}
}

// WithLivenessChecks replaces the liveness checks.
func WithLivenessChecks(checks ...ProbeFunc) InfoOption {
	return func(ih *InfoHandler) {
		ih.livenessChecks = filterProbes(checks)
	}
}

// WithReadinessChecks replaces the readiness checks.
func WithReadinessChecks(checks ...ProbeFunc) InfoOption {
	return func(ih *InfoHandler) {
		ih.readinessChecks = filterProbes(checks)
	}
}

// Register mounts every endpoint on mux.
func (ih *InfoHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /status", ih.GetStatus)
	mux.HandleFunc("GET /healthz", ih.GetHealthz)
	mux.HandleFunc("GET /readyz", ih.GetReadyz)
	mux.HandleFunc("GET /version", ih.GetVersion)
	mux.HandleFunc("GET /openapi.json", ih.GetOpenAPIJSON)
}
