package readiness

import "time"

// EventKind identifies a step of a readiness wait.
type EventKind int

const (
	// EventAttempt fires right before the attempt function is invoked.
	EventAttempt EventKind = iota + 1
	// EventFailure fires after a failed attempt. Err holds an *AttemptError.
	EventFailure
	// EventReady fires once when an attempt succeeds.
	EventReady
	// EventExhausted fires once when the budget is spent.
	EventExhausted
	// EventCanceled fires once when the context ends first.
	EventCanceled
)

func (k EventKind) String() string {
	switch k {
	case EventAttempt:
		return "attempt"
	case EventFailure:
		return "failure"
	case EventReady:
		return "ready"
	case EventExhausted:
		return "exhausted"
	case EventCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further events follow for the same wait.
func (k EventKind) Terminal() bool {
	return k == EventReady || k == EventExhausted || k == EventCanceled
}

// Event is emitted to every Observer registered on a Prober. Elapsed is
// measured from the start of the Wait call.
type Event struct {
	Kind        EventKind
	Target      string
	Attempt     int
	MaxAttempts int
	Err         error
	Elapsed     time.Duration
}

// Observer receives progress events. Observe is called synchronously from
// the goroutine running Wait and must not block.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) {
	f(e)
}
