// Package router wraps the health mux with access logging, CORS, OpenAPI
// request validation and a request timeout, in that order from the outside
// in. Preflights are answered by CORS before validation sees the OPTIONS
// method.
// Probe routes are usually listed in Config.QuietdownRoutes so orchestrator
// polling does not flood the log.
package router
