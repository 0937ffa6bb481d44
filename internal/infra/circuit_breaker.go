package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/config"
)

// Circuit breaker guarding the SMTP relay: Closed → Open → Half-Open.
// Closed passes calls through, Open fast-fails them, Half-Open lets probes
// through until enough succeed to close again.

type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

// String returns the state name used in the health endpoint and logs.
func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when Execute is called while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	FailureThreshold int           // consecutive failures that trip the breaker
	SuccessThreshold int           // half-open successes required to close
	OpenTimeout      time.Duration // time open before allowing probes
}

func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      60 * time.Second,
	}
}

// CBConfigFrom builds the mailer breaker settings from runtime config,
// keeping the defaults for anything unset.
func CBConfigFrom(cfg *config.Config) CircuitBreakerConfig {
	out := DefaultCBConfig()
	if cfg.MailerCBFailures > 0 {
		out.FailureThreshold = cfg.MailerCBFailures
	}
	if cfg.MailerCBSuccesses > 0 {
		out.SuccessThreshold = cfg.MailerCBSuccesses
	}
	if cfg.MailerCBOpenSeconds > 0 {
		out.OpenTimeout = time.Duration(cfg.MailerCBOpenSeconds) * time.Second
	}
	return out
}

type CircuitBreaker struct {
	mu        sync.Mutex
	cfg       CircuitBreakerConfig
	state     CBState
	failures  int
	successes int
	openedAt  time.Time
	now       func() time.Time // injectable for tests
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCBConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// State reports the current state, applying the open → half-open timeout.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentState()
}

// currentState must be called under mu.
func (cb *CircuitBreaker) currentState() CBState {
	if cb.state == CBOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.OpenTimeout {
		cb.state = CBHalfOpen
		cb.successes = 0
	}
	return cb.state
}

// Execute runs fn unless the breaker is open, recording the outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	if cb.currentState() == CBOpen {
		cb.mu.Unlock()
		return ErrCircuitOpen
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.record(err)
	return err
}

// record must be called under mu.
func (cb *CircuitBreaker) record(err error) {
	if err != nil {
		switch cb.state {
		case CBClosed:
			cb.failures++
			if cb.failures >= cb.cfg.FailureThreshold {
				cb.trip()
			}
		case CBHalfOpen:
			// Probe failed, back to open
			cb.trip()
		}
		return
	}

	switch cb.state {
	case CBClosed:
		cb.failures = 0
	case CBHalfOpen:
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.state = CBClosed
			cb.failures = 0
			cb.successes = 0
		}
	}
}

// trip must be called under mu.
func (cb *CircuitBreaker) trip() {
	cb.state = CBOpen
	cb.failures = 0
	cb.openedAt = cb.now()
}
