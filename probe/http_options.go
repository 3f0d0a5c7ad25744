package probe

import (
	"fmt"
	"net/http"
)

// HTTPStatusExpectation reports whether a status code counts as ready.
type HTTPStatusExpectation func(status int) bool

// HTTPRequestMutator adjusts the outbound request, e.g. to add credentials.
type HTTPRequestMutator func(req *http.Request) error

// HTTPResponseValidator can reject a response whose status was accepted.
type HTTPResponseValidator func(resp *http.Response) error

// HTTPProbeOption configures NewHTTPProbe.
type HTTPProbeOption func(*httpProbeConfig)

type httpProbeConfig struct {
	client             HTTPDoer
	expect             HTTPStatusExpectation
	requestMutators    []HTTPRequestMutator
	responseValidators []HTTPResponseValidator
	drainResponse      bool
}

func buildHTTPProbeConfig(client HTTPDoer, opts ...HTTPProbeOption) *httpProbeConfig {
	cfg := &httpProbeConfig{
		client:        client,
		expect:        defaultHTTPStatusExpectation,
		drainResponse: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.client == nil {
		cfg.client = http.DefaultClient
	}
	if cfg.expect == nil {
		cfg.expect = defaultHTTPStatusExpectation
	}
	return cfg
}

func (c *httpProbeConfig) applyMutators(req *http.Request) error {
	for _, mutate := range c.requestMutators {
		if mutate == nil {
			continue
		}
		if err := mutate(req); err != nil {
			return err
		}
	}
	return nil
}

func (c *httpProbeConfig) validateResponse(resp *http.Response) error {
	if !c.expect(resp.StatusCode) {
		return fmt.Errorf("unexpected status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	for _, validate := range c.responseValidators {
		if validate == nil {
			continue
		}
		if err := validate(resp); err != nil {
			return err
		}
	}
	return nil
}

// WithHTTPClient overrides the client passed to NewHTTPProbe.
func WithHTTPClient(client HTTPDoer) HTTPProbeOption {
	return func(cfg *httpProbeConfig) {
		cfg.client = client
	}
}

// WithHTTPStatusExpectation installs a custom status check.
func WithHTTPStatusExpectation(expect HTTPStatusExpectation) HTTPProbeOption {
	return func(cfg *httpProbeConfig) {
		cfg.expect = expect
	}
}

// WithHTTPAllowedStatuses accepts only the listed codes. With no codes the
// default 2xx check stays in place.
func WithHTTPAllowedStatuses(statuses ...int) HTTPProbeOption {
	if len(statuses) == 0 {
		return func(cfg *httpProbeConfig) {
			cfg.expect = defaultHTTPStatusExpectation
		}
	}
	allowed := make(map[int]struct{}, len(statuses))
	for _, status := range statuses {
		allowed[status] = struct{}{}
	}
	return func(cfg *httpProbeConfig) {
		cfg.expect = func(status int) bool {
			_, ok := allowed[status]
			return ok
		}
	}
}

// WithHTTPHeader sets a request header on every attempt.
func WithHTTPHeader(key, value string) HTTPProbeOption {
	return WithHTTPRequestMutator(func(req *http.Request) error {
		req.Header.Set(key, value)
		return nil
	})
}

// WithHTTPRequestMutator registers a mutator that runs before dispatch.
func WithHTTPRequestMutator(mutator HTTPRequestMutator) HTTPProbeOption {
	return func(cfg *httpProbeConfig) {
		cfg.requestMutators = append(cfg.requestMutators, mutator)
	}
}

// WithHTTPResponseValidator registers a validator that runs after the status
// check passed.
func WithHTTPResponseValidator(validator HTTPResponseValidator) HTTPProbeOption {
	return func(cfg *httpProbeConfig) {
		cfg.responseValidators = append(cfg.responseValidators, validator)
	}
}

// WithHTTPDrainResponseBody toggles draining the body so the connection can
// be reused by the next attempt.
func WithHTTPDrainResponseBody(enabled bool) HTTPProbeOption {
	return func(cfg *httpProbeConfig) {
		cfg.drainResponse = enabled
	}
}
