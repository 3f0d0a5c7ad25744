// Package readiness blocks startup until a dependency accepts connections.
//
// A Prober invokes a caller-supplied AttemptFunc until it succeeds or the
// Policy's attempt budget is spent, waiting a fixed delay between failed
// attempts. Exhaustion and cancellation are reported as distinct errors so
// callers can abort startup or exit quietly. See ExampleProber_Wait for the
// usual wiring and ExampleGate for exposing progress to a readiness endpoint.
package readiness
