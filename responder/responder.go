// Package responder renders JSON bodies and RFC 9457 problem documents for
// the health endpoints, logging every error with a sortable trace id.
package responder

import (
	"log/slog"
	"net/http"
)

// ProblemContentType is the media type of RFC 7807 problem documents.
const ProblemContentType = "application/problem+json"

const (
	jsonContentType  = "application/json"
	statusDocBaseURL = "https://httpstatuses.io"
)

// ResponderOption follows the functional options pattern used by NewResponder.
type ResponderOption func(*Responder)

type statusMeta struct {
	typeURI  string
	title    string
	logLevel slog.Leveler
	logMsg   string
}

// StatusMetadata customises how a status code is logged and titled. A nil
// LogLevel logs at error level; any slog.Level, including slog.LevelInfo,
// can be set.
type StatusMetadata struct {
	TypeURI  string
	Title    string
	LogLevel slog.Leveler
	LogMsg   string
}

// Responder centralises JSON rendering and error reporting for handlers.
type Responder struct {
	log            *slog.Logger
	statusMetadata map[int]statusMeta
}

// NewResponder constructs a Responder logging to slog.Default. A 503 is
// logged at warn level because it is the expected answer while a dependency
// is still starting.
func NewResponder(opts ...ResponderOption) *Responder {
	r := &Responder{
		log:            slog.Default(),
		statusMetadata: defaultStatusMetadata(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// WithLogger injects the logger used for error reports.
func WithLogger(logger *slog.Logger) ResponderOption {
	return func(r *Responder) {
		if logger != nil {
			r.log = logger
		}
	}
}

// WithStatusMetadata overrides the metadata of one status code. Empty fields
// fall back to the status text and error level.
func WithStatusMetadata(status int, meta StatusMetadata) ResponderOption {
	return func(r *Responder) {
		if r.statusMetadata == nil {
			r.statusMetadata = make(map[int]statusMeta)
		}
		r.statusMetadata[status] = normalizeStatusMeta(status, statusMeta{
			typeURI:  meta.TypeURI,
			title:    meta.Title,
			logLevel: meta.LogLevel,
			logMsg:   meta.LogMsg,
		})
	}
}

// Logger returns the logger used by the responder.
func (r *Responder) Logger() *slog.Logger {
	if r == nil || r.log == nil {
		return slog.Default()
	}
	return r.log
}

// RespondWithJSON writes v with the given status.
func (r *Responder) RespondWithJSON(w http.ResponseWriter, req *http.Request, status int, v any) {
	r.respond(w, status, v, jsonContentType)
}

// HandleAPIError writes a problem document for err and logs it. A nil err
// writes nothing.
func (r *Responder) HandleAPIError(w http.ResponseWriter, req *http.Request, status int, err error, logMsg ...string) {
	if err == nil {
		return
	}
	meta := r.statusMetaFor(status)
	problem := buildProblemDetails(req, status, err, meta)
	r.logProblem(req, meta, err, problem.TraceID, status, logMsg)
	r.respond(w, status, problem, ProblemContentType)
}

// HandleInternalServerError reports err with HTTP 500.
func (r *Responder) HandleInternalServerError(w http.ResponseWriter, req *http.Request, err error, logMsg ...string) {
	r.HandleAPIError(w, req, http.StatusInternalServerError, err, logMsg...)
}

// HandleServiceUnavailable reports err with HTTP 503.
func (r *Responder) HandleServiceUnavailable(w http.ResponseWriter, req *http.Request, err error, logMsg ...string) {
	r.HandleAPIError(w, req, http.StatusServiceUnavailable, err, logMsg...)
}

func (r *Responder) respond(w http.ResponseWriter, status int, payload any, contentType string) {
	if w == nil {
		return
	}
	body, err := marshalPayload(payload)
	if err != nil {
		r.Logger().Error("failed to encode response", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		r.Logger().Error("failed to write response", "error", err)
	}
}

func defaultStatusMetadata() map[int]statusMeta {
	return map[int]statusMeta{
		http.StatusInternalServerError: normalizeStatusMeta(http.StatusInternalServerError, statusMeta{logLevel: slog.LevelError}),
		http.StatusServiceUnavailable:  normalizeStatusMeta(http.StatusServiceUnavailable, statusMeta{logLevel: slog.LevelWarn, logMsg: "dependency not ready"}),
	}
}
