package probe

import "context"

// Func makes one connection attempt. A nil error means the dependency
// answered. The signature matches readiness.AttemptFunc.
type Func func(ctx context.Context) error

// PingFunc is a bespoke connection attempt supplied by the caller.
type PingFunc func(ctx context.Context) error

// NewPingProbe wraps fn with the package's naming and nil handling.
func NewPingProbe(name string, fn PingFunc) Func {
	return func(ctx context.Context) error {
		if fn == nil {
			return nilComponentError(name, "ping function")
		}
		if err := fn(contextOrBackground(ctx)); err != nil {
			return failed(name, err)
		}
		return nil
	}
}
