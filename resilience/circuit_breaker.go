// Package resilience guards calls to the model collaborators. A tripped
// breaker makes model-backed stages fail fast so the routing pipeline
// degrades to its next fallback tier instead of stalling every request.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State represents the state of a CircuitBreaker
type State int

const (
	// StateClosed is the normal state: calls pass through
	StateClosed State = iota
	// StateOpen rejects calls until the reset timeout elapses
	StateOpen
	// StateHalfOpen lets one probe call through to test recovery
	StateHalfOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Errors
var (
	// ErrCircuitOpen is returned when the circuit is open
	ErrCircuitOpen = errors.New("circuit breaker: circuit is open")

	// ErrProbeInFlight is returned when the half-open probe slot is taken
	ErrProbeInFlight = errors.New("circuit breaker: probe already in flight")
)

// CircuitBreaker trips after consecutive failures and recovers through a
// single half-open probe.
type CircuitBreaker struct {
	mu sync.Mutex

	maxFailures  int
	resetTimeout time.Duration

	state           State
	failures        int
	lastFailureTime time.Time
	probeInFlight   bool

	onStateChange func(from, to State)
}

// NewCircuitBreaker creates a closed breaker that opens after maxFailures
// consecutive failures and probes again after resetTimeout.
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        StateClosed,
	}
}

// SetOnStateChange sets the callback invoked on state transitions.
// The callback runs synchronously under the breaker lock; keep it cheap.
func (cb *CircuitBreaker) SetOnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Do runs fn if the breaker allows it. A context already cancelled counts
// as a caller error, not a collaborator failure, and is not recorded.
func (cb *CircuitBreaker) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := cb.beforeCall(); err != nil {
		return err
	}

	err := fn(ctx)
	cb.afterCall(err)
	return err
}

func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil

	case StateOpen:
		if time.Since(cb.lastFailureTime) > cb.resetTimeout {
			cb.changeState(StateHalfOpen)
			cb.probeInFlight = true
			return nil
		}
		return ErrCircuitOpen

	default: // StateHalfOpen
		if cb.probeInFlight {
			return ErrProbeInFlight
		}
		cb.probeInFlight = true
		return nil
	}
}

func (cb *CircuitBreaker) afterCall(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		if err != nil {
			cb.failures++
			cb.lastFailureTime = time.Now()
			if cb.failures >= cb.maxFailures {
				cb.changeState(StateOpen)
			}
		} else {
			cb.failures = 0
		}

	case StateHalfOpen:
		cb.probeInFlight = false
		if err != nil {
			cb.changeState(StateOpen)
			cb.failures = cb.maxFailures
			cb.lastFailureTime = time.Now()
		} else {
			cb.changeState(StateClosed)
			cb.failures = 0
		}
	}
}

func (cb *CircuitBreaker) changeState(to State) {
	if cb.state == to {
		return
	}
	from := cb.state
	cb.state = to
	if cb.onStateChange != nil {
		cb.onStateChange(from, to)
	}
}

// GetState returns the current state of the breaker
func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// GetFailures returns the current consecutive failure count
func (cb *CircuitBreaker) GetFailures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// Reset manually closes the breaker
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.changeState(StateClosed)
	cb.failures = 0
	cb.probeInFlight = false
}
