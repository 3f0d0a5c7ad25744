// Package info exposes status, liveness, readiness, version and OpenAPI
// endpoints for a service whose startup is gated on its dependencies.
//
// Readiness checks are plain probe.Func values, so the same connection
// attempts that drive a readiness.Prober, or the readiness.Gate that records
// its progress, can back /readyz. See ExampleInfoHandler_full.
package info
