// Package resilience guards calls to external providers with retries and a
// circuit breaker.
package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/credibility-cli/internal/config"
)

// State is the state of a Breaker.
type State int

const (
	// StateClosed lets calls through.
	StateClosed State = iota
	// StateOpen rejects calls until the reset timeout elapses.
	StateOpen
	// StateHalfOpen lets one trial call through.
	StateHalfOpen
)

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

// ErrOpen is returned when a call is rejected by an open breaker.
var ErrOpen = eris.New("circuit breaker is open")

// Breaker stops calling a provider after consecutive failures and tries it
// again once ResetTimeout has passed.
type Breaker struct {
	// ShouldTrip reports whether err counts toward the failure threshold.
	// If nil, only errors that pass IsTransient count. Any other error is
	// recorded as a success.
	ShouldTrip func(err error) bool

	name         string
	threshold    int
	resetTimeout time.Duration

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	trialing bool
	now      func() time.Time
}

// NewBreaker creates a Breaker for the named provider.
func NewBreaker(name string, threshold int, resetTimeout time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}
	return &Breaker{
		name:         name,
		threshold:    threshold,
		resetTimeout: resetTimeout,
		now:          time.Now,
	}
}

// BreakerFromConfig creates a Breaker from configured values.
func BreakerFromConfig(name string, c config.CircuitConfig) *Breaker {
	return NewBreaker(name, c.FailureThreshold, time.Duration(c.ResetTimeoutSecs)*time.Second)
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.resetTimeout {
		return StateHalfOpen
	}
	return b.state
}

// Failures returns the consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.resetTimeout {
			return eris.Wrap(ErrOpen, b.name)
		}
		b.setState(StateHalfOpen)
		b.trialing = true
		return nil
	case StateHalfOpen:
		if b.trialing {
			return eris.Wrap(ErrOpen, b.name)
		}
		b.trialing = true
		return nil
	default:
		return nil
	}
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.trialing = false
	if !b.trips(err) {
		b.failures = 0
		if b.state != StateClosed {
			b.setState(StateClosed)
		}
		return
	}

	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.threshold {
		b.openedAt = b.now()
		if b.state != StateOpen {
			b.setState(StateOpen)
		}
	}
}

func (b *Breaker) trips(err error) bool {
	if err == nil {
		return false
	}
	if b.ShouldTrip != nil {
		return b.ShouldTrip(err)
	}
	return IsTransient(err)
}

func (b *Breaker) setState(to State) {
	zap.L().Info("circuit breaker state change",
		zap.String("service", b.name),
		zap.Stringer("from", b.state),
		zap.Stringer("to", to),
	)
	b.state = to
}

// Call runs fn through b.
func Call[T any](ctx context.Context, b *Breaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := b.allow(); err != nil {
		return zero, err
	}
	val, err := fn(ctx)
	b.record(err)
	return val, err
}

// Guard combines a retry policy with a breaker for one provider. Each
// attempt passes through the breaker, and an open breaker is not retried.
type Guard struct {
	Policy  Policy
	Breaker *Breaker
}

// NewGuard creates a Guard for the named provider from configuration.
func NewGuard(name string, retry config.RetryConfig, circuit config.CircuitConfig) *Guard {
	p := PolicyFromConfig(retry)
	p.OnRetry = LogRetry(name)
	return &Guard{Policy: p, Breaker: BreakerFromConfig(name, circuit)}
}

// Do runs fn under g. A nil Guard calls fn directly.
func Do[T any](ctx context.Context, g *Guard, fn func(ctx context.Context) (T, error)) (T, error) {
	if g == nil {
		return fn(ctx)
	}
	return Retry(ctx, g.Policy, func(ctx context.Context) (T, error) {
		if g.Breaker == nil {
			return fn(ctx)
		}
		return Call(ctx, g.Breaker, fn)
	})
}
