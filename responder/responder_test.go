package responder

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/drblury/dbwait/jsonutil"
)

func TestHandleAPIError(t *testing.T) {
	var logs bytes.Buffer
	r := NewResponder(WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))))

	t.Run("nil error writes nothing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.HandleAPIError(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusInternalServerError, nil)
		if rec.Body.Len() != 0 {
			t.Fatalf("expected empty body, got %q", rec.Body.String())
		}
	})

	t.Run("problem document", func(t *testing.T) {
		logs.Reset()
		rec := httptest.NewRecorder()
		r.HandleInternalServerError(rec, httptest.NewRequest(http.MethodGet, "/version?x=1", nil), errors.New("boom"), "version failed")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		var problem ProblemDetails
		if err := jsonutil.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
			t.Fatalf("decode problem: %v", err)
		}
		if problem.Type != "https://httpstatuses.io/500" {
			t.Fatalf("unexpected type %q", problem.Type)
		}
		if problem.Instance != "/version?x=1" {
			t.Fatalf("unexpected instance %q", problem.Instance)
		}
		if len(problem.TraceID) != 26 {
			t.Fatalf("expected ULID trace id, got %q", problem.TraceID)
		}
		if !strings.Contains(logs.String(), `"level":"ERROR"`) || !strings.Contains(logs.String(), problem.TraceID) {
			t.Fatalf("expected error log with trace id, got %s", logs.String())
		}
		if !strings.Contains(logs.String(), "version failed") {
			t.Fatalf("expected log messages to be attached, got %s", logs.String())
		}
		if !strings.Contains(logs.String(), `"method":"GET"`) || !strings.Contains(logs.String(), `"path":"/version"`) {
			t.Fatalf("expected request attributes in log, got %s", logs.String())
		}
	})

	t.Run("service unavailable logs at warn", func(t *testing.T) {
		logs.Reset()
		rec := httptest.NewRecorder()
		r.HandleServiceUnavailable(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil), errors.New("pending"))

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		if !strings.Contains(logs.String(), `"level":"WARN"`) || !strings.Contains(logs.String(), "dependency not ready") {
			t.Fatalf("expected warn log, got %s", logs.String())
		}
	})
}

func TestRespondWithJSON(t *testing.T) {
	r := NewResponder()

	rec := httptest.NewRecorder()
	r.RespondWithJSON(rec, nil, http.StatusOK, map[string]string{"status": "ok"})
	if rec.Body.String() != "{\"status\":\"ok\"}\n" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != jsonContentType {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
}

func TestNewTraceIDIsMonotonic(t *testing.T) {
	first := newTraceID()
	second := newTraceID()
	if first >= second {
		t.Fatalf("expected increasing ids, got %s then %s", first, second)
	}
}

func TestWithStatusMetadataLogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Leveler
		want  string
	}{
		{name: "info is honoured", level: slog.LevelInfo, want: `"level":"INFO"`},
		{name: "debug is honoured", level: slog.LevelDebug, want: `"level":"DEBUG"`},
		{name: "unset falls back to error", level: nil, want: `"level":"ERROR"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
			r := NewResponder(
				WithLogger(logger),
				WithStatusMetadata(http.StatusNotFound, StatusMetadata{LogLevel: tt.level}),
			)

			r.HandleAPIError(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil), http.StatusNotFound, errors.New("no route"))
			if !strings.Contains(logs.String(), tt.want) {
				t.Fatalf("expected %s in log, got %s", tt.want, logs.String())
			}
		})
	}
}
