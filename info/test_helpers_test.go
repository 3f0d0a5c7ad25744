package info

import (
	"io"
	"log/slog"
	"testing"

	"github.com/drblury/dbwait/jsonutil"
	"github.com/drblury/dbwait/responder"
)

func quietResponder() *responder.Responder {
	return responder.NewResponder(responder.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func decodeProbePayload(t *testing.T, body []byte) probePayload {
	t.Helper()

	var payload probePayload
	if err := jsonutil.Unmarshal(body, &payload); err != nil {
		t.Fatalf("failed to decode probe payload: %v (body: %s)", err, string(body))
	}
	return payload
}

func decodeProblemDetails(t *testing.T, body []byte) responder.ProblemDetails {
	t.Helper()

	var problem responder.ProblemDetails
	if err := jsonutil.Unmarshal(body, &problem); err != nil {
		t.Fatalf("failed to decode problem details: %v (body: %s)", err, string(body))
	}
	return problem
}
