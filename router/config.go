package router

import "time"

// Config holds the settings of the middleware chain. A zero Timeout
// disables the timeout and empty CORS origins disable CORS.
type Config struct {
	Timeout           time.Duration `yaml:"timeout"`
	CORS              CORSConfig    `yaml:"cors"`
	QuietdownRoutes   []string      `yaml:"quietdown_routes"`
	HideHeaders       []string      `yaml:"hide_headers"`
	DisableValidation bool          `yaml:"disable_validation"`
}

// CORSConfig enables cross-origin access when Origins is non-empty. "*"
// matches any origin.
type CORSConfig struct {
	Origins          []string `yaml:"origins"`
	Methods          []string `yaml:"methods"`
	Headers          []string `yaml:"headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
}

// DefaultQuietdownRoutes are the endpoints scraped by orchestrators and
// Prometheus.
func DefaultQuietdownRoutes() []string {
	return []string{"/healthz", "/readyz", "/metrics"}
}
