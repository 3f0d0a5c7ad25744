package readiness

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// State is the lifecycle position of one dependency.
type State int

const (
	StatePending State = iota
	StateProbing
	StateReady
	StateExhausted
	StateCanceled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateProbing:
		return "probing"
	case StateReady:
		return "ready"
	case StateExhausted:
		return "exhausted"
	case StateCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Status is a point-in-time view of one dependency tracked by a Gate.
type Status struct {
	Target      string    `json:"target"`
	State       string    `json:"state"`
	Attempt     int       `json:"attempt"`
	MaxAttempts int       `json:"maxAttempts"`
	LastError   string    `json:"lastError,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`

	state State
}

// Gate aggregates readiness events from one or more Probers. It is safe for
// concurrent use: probers write while HTTP handlers read.
type Gate struct {
	mu      sync.RWMutex
	targets map[string]*Status
	now     func() time.Time
}

// NewGate tracks the named dependencies, all starting as pending. Targets
// first seen through Observe are added on the fly.
func NewGate(targets ...string) *Gate {
	g := &Gate{
		targets: make(map[string]*Status, len(targets)),
		now:     time.Now,
	}
	for _, name := range targets {
		g.targets[name] = &Status{Target: name, State: StatePending.String(), UpdatedAt: g.now()}
	}
	return g
}

// Observe implements Observer.
func (g *Gate) Observe(e Event) {
	g.mu.Lock()
	defer g.mu.Unlock()

	st, ok := g.targets[e.Target]
	if !ok {
		st = &Status{Target: e.Target}
		g.targets[e.Target] = st
	}

	st.Attempt = e.Attempt
	st.MaxAttempts = e.MaxAttempts
	st.UpdatedAt = g.now()

	switch e.Kind {
	case EventAttempt:
		st.state = StateProbing
	case EventFailure:
		st.state = StateProbing
		var attemptErr *AttemptError
		if errors.As(e.Err, &attemptErr) {
			st.LastError = attemptErr.Err.Error()
		} else if e.Err != nil {
			st.LastError = e.Err.Error()
		}
	case EventReady:
		st.state = StateReady
		st.LastError = ""
	case EventExhausted:
		st.state = StateExhausted
	case EventCanceled:
		st.state = StateCanceled
	}
	st.State = st.state.String()
}

// Ready reports whether every tracked dependency is ready. A Gate tracking
// nothing is ready.
func (g *Gate) Ready() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, st := range g.targets {
		if st.state != StateReady {
			return false
		}
	}
	return true
}

// State returns the state of one dependency.
func (g *Gate) State(target string) State {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if st, ok := g.targets[target]; ok {
		return st.state
	}
	return StatePending
}

// Statuses returns a copy of every tracked status ordered by target name.
func (g *Gate) Statuses() []Status {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Status, 0, len(g.targets))
	for _, st := range g.targets {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Target < out[j].Target })
	return out
}

// Check has the probe function shape so a Gate can back a readiness endpoint.
// It fails until every tracked dependency has become ready.
func (g *Gate) Check(context.Context) error {
	var pending []string
	for _, st := range g.Statuses() {
		if st.state == StateReady {
			continue
		}
		detail := fmt.Sprintf("%s %s", st.Target, st.State)
		if st.state == StateProbing && st.MaxAttempts > 0 {
			detail = fmt.Sprintf("%s (attempt %d/%d)", detail, st.Attempt, st.MaxAttempts)
		}
		pending = append(pending, detail)
	}
	if len(pending) == 0 {
		return nil
	}
	return fmt.Errorf("dependencies not ready: %s", strings.Join(pending, ", "))
}
