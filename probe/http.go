package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPDoer represents the subset of *http.Client required by NewHTTPProbe.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPProbe creates a Func that sends one request to target. By default
// the attempt succeeds on any 2xx status; HTTPProbeOption values refine that.
// An empty method means GET and a nil client means http.DefaultClient.
func NewHTTPProbe(name, method, target string, client HTTPDoer, opts ...HTTPProbeOption) Func {
	cfg := buildHTTPProbeConfig(client, opts...)
	verb := strings.ToUpper(strings.TrimSpace(method))
	if verb == "" {
		verb = http.MethodGet
	}
	url := strings.TrimSpace(target)

	return func(ctx context.Context) error {
		if url == "" {
			return fmt.Errorf("%s probe: target URL is required", name)
		}

		req, err := http.NewRequestWithContext(contextOrBackground(ctx), verb, url, nil)
		if err != nil {
			return fmt.Errorf("%s probe: failed to build request: %w", name, err)
		}
		if err := cfg.applyMutators(req); err != nil {
			return fmt.Errorf("%s probe: request mutation failed: %w", name, err)
		}

		resp, err := cfg.client.Do(req)
		if err != nil {
			return failed(name, err)
		}
		defer resp.Body.Close()

		if err := cfg.validateResponse(resp); err != nil {
			return fmt.Errorf("%s probe: %w", name, err)
		}

		if cfg.drainResponse {
			if _, err := io.Copy(io.Discard, resp.Body); err != nil {
				return fmt.Errorf("%s probe: failed to drain response body: %w", name, err)
			}
		}
		return nil
	}
}
