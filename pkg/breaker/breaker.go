package breaker

import (
	"time"

	cb "github.com/sony/gobreaker"
)

// Breaker wraps a gobreaker circuit breaker for error-only calls.
type Breaker struct {
	cb *cb.CircuitBreaker
}

// Option configures the breaker settings.
type Option func(*cb.Settings)

// WithTimeout sets how long the breaker stays open before probing.
func WithTimeout(d time.Duration) Option {
	return func(s *cb.Settings) {
		if d > 0 {
			s.Timeout = d
		}
	}
}

// WithMaxFailures sets the consecutive failures that trip the breaker.
func WithMaxFailures(n uint32) Option {
	return func(s *cb.Settings) {
		if n > 0 {
			s.ReadyToTrip = func(counts cb.Counts) bool { return counts.ConsecutiveFailures >= n }
		}
	}
}

// WithStateChange registers a callback for state transitions.
func WithStateChange(fn func(name string, from, to cb.State)) Option {
	return func(s *cb.Settings) {
		s.OnStateChange = fn
	}
}

// New creates a breaker that trips after 5 consecutive failures and probes after 30s.
func New(name string, opts ...Option) *Breaker {
	st := cb.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts cb.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	for _, opt := range opts {
		opt(&st)
	}
	return &Breaker{cb: cb.NewCircuitBreaker(st)}
}

// Do runs fn through the breaker. When open it returns gobreaker.ErrOpenState.
func (b *Breaker) Do(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

// State reports the current breaker state name.
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// IsOpen reports whether err came from an open or saturated breaker.
func IsOpen(err error) bool {
	return err == cb.ErrOpenState || err == cb.ErrTooManyRequests
}
