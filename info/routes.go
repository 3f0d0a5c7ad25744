package info

import "net/http"

// GetStatus reports the process as up and, when a DependencyReporter is set,
// the state of every dependency. It never fails.
func (ih *InfoHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	payload := probePayload{Status: "HEALTHY"}
	if ih.dependencies != nil {
		payload.Dependencies = ih.dependencies()
	}
	ih.respondProbe(w, r, http.StatusOK, payload)
}

// GetHealthz implements the liveness probe. It stays green while
// dependencies are still being waited for.
func (ih *InfoHandler) GetHealthz(w http.ResponseWriter, r *http.Request) {
	if err := ih.runChecks(r.Context(), ih.livenessChecks); err != nil {
		ih.HandleServiceUnavailable(w, r, err, "liveness probe failed")
		return
	}
	ih.respondProbe(w, r, http.StatusOK, probePayload{Status: "ok"})
}

// GetReadyz implements the readiness probe. It answers 503 until every
// readiness check passes.
func (ih *InfoHandler) GetReadyz(w http.ResponseWriter, r *http.Request) {
	if err := ih.runChecks(r.Context(), ih.readinessChecks); err != nil {
		ih.HandleServiceUnavailable(w, r, err, "readiness probe failed")
		return
	}
	ih.respondProbe(w, r, http.StatusOK, probePayload{Status: "ready"})
}

// GetVersion returns the payload of the configured InfoProvider.
func (ih *InfoHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	payload := ih.infoProvider()
	if payload == nil {
		payload = map[string]string{}
	}
	ih.RespondWithJSON(w, r, http.StatusOK, payload)
}

// GetOpenAPIJSON streams the configured OpenAPI document.
func (ih *InfoHandler) GetOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := ih.openapiProvider()
	if err != nil {
		ih.HandleInternalServerError(w, r, err, "failed to load openapi document")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(doc); err != nil {
		ih.Logger().Error("failed to write openapi response", "error", err)
	}
}
