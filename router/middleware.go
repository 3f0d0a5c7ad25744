package router

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	oapiMW "github.com/oapi-codegen/nethttp-middleware"

	"github.com/drblury/dbwait/responder"
)

func oapiMiddleware(swagger *openapi3.T, resp *responder.Responder) Middleware {
	// Servers are cleared so validation does not depend on the listen address.
	swagger.Servers = nil

	validatorOptions := &oapiMW.Options{
		Options: openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}
	if resp != nil {
		validatorOptions.ErrorHandlerWithOpts = func(_ context.Context, err error, w http.ResponseWriter, r *http.Request, opts oapiMW.ErrorHandlerOpts) {
			resp.HandleAPIError(w, r, opts.StatusCode, err, "request rejected by openapi validation")
		}
	}

	validate := oapiMW.OapiRequestValidatorWithOptions(swagger, validatorOptions)
	return func(next http.Handler) http.Handler {
		return validate(next)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// loggingMiddleware logs one line per request after it completes. Quiet
// routes are only logged when they fail.
func loggingMiddleware(logger *slog.Logger, quietdownRoutes []string, hideHeaders []string) Middleware {
	quietRoutes := slices.Clone(quietdownRoutes)
	redacted := slices.Clone(hideHeaders)

	logger.Debug("logging middleware configured", "quietdownRoutes", quietRoutes, "hideHeaders", redacted)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			if slices.Contains(quietRoutes, r.URL.Path) && status < http.StatusBadRequest {
				return
			}

			headers := r.Header.Clone()
			redactHeaders(headers, redacted)

			level := slog.LevelDebug
			if status >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			logger.Log(r.Context(), level, "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", rec.bytes,
				"duration", time.Since(started),
				"header", headers,
			)
		})
	}
}

func corsMiddleware(cfg CORSConfig) Middleware {
	headers := strings.Join(cfg.Headers, ",")
	methods := strings.Join(cfg.Methods, ",")
	origins := slices.Clone(cfg.Origins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if allowedOrigin(origin, origins) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				if cfg.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// timeoutMiddleware bounds the handler and answers 503 with a problem
// document once the deadline passes.
func timeoutMiddleware(timeout time.Duration) Middleware {
	body := fmt.Sprintf(`{"title":"Service Unavailable","status":503,"detail":"request timed out after %s"}`, timeout)
	return func(next http.Handler) http.Handler {
		bounded := http.TimeoutHandler(next, timeout, body)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bounded.ServeHTTP(&timeoutWriter{ResponseWriter: w}, r)
		})
	}
}

// timeoutWriter labels the bare 503 written by http.TimeoutHandler. Handler
// responses carry their own Content-Type and pass through untouched.
type timeoutWriter struct {
	http.ResponseWriter
}

func (w *timeoutWriter) WriteHeader(status int) {
	h := w.Header()
	if status == http.StatusServiceUnavailable && h.Get("Content-Type") == "" {
		h.Set("Content-Type", responder.ProblemContentType)
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *timeoutWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func allowedOrigin(origin string, allowed []string) bool {
	return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
}

func redactHeaders(headers http.Header, hideHeaders []string) {
	for _, header := range hideHeaders {
		canonical := http.CanonicalHeaderKey(header)
		values, exists := headers[canonical]
		if !exists {
			continue
		}

		redactedLen := 0
		for _, value := range values {
			redactedLen += len(value)
		}
		headers[canonical] = []string{fmt.Sprintf("[REDACTED - %d bytes]", redactedLen)}
	}
}
