package readiness

import "time"

const (
	// DefaultMaxAttempts is the attempt budget used when no policy is supplied.
	DefaultMaxAttempts = 30
	// DefaultDelay is the pause between two failed attempts.
	DefaultDelay = 5 * time.Second
)

// Policy bounds how long a Prober keeps trying. MaxAttempts counts attempts,
// not retries: a policy of 3 invokes the operation at most three times and
// waits at most twice.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultPolicy returns 30 attempts five seconds apart.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		Delay:       DefaultDelay,
	}
}

// Budget is the longest a Prober following p can spend waiting between
// attempts. Time spent inside the attempts themselves is not included.
func (p Policy) Budget() time.Duration {
	p = p.normalized()
	if p.MaxAttempts <= 1 {
		return 0
	}
	return time.Duration(p.MaxAttempts-1) * p.Delay
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts < 0 {
		p.MaxAttempts = 0
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	return p
}
