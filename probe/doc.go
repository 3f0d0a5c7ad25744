// Package probe turns database drivers, caches, HTTP endpoints and bare TCP
// ports into single connection attempts. Each constructor returns a Func that
// can drive a readiness.Prober during startup and later back the /readyz
// checks of an info.InfoHandler. See ExampleNewDBPingProbe and
// ExampleNewHTTPProbe_withOptions for quick-start patterns.
package probe
