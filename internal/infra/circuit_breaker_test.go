package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/rai-pramana/NyankoGarage-sub001/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("smtp: connection refused")

func failing() error { return errBoom }
func passing() error { return nil }

// frozenClock lets tests advance the breaker's notion of time without sleeping.
type frozenClock struct{ t time.Time }

func (c *frozenClock) now() time.Time          { return c.t }
func (c *frozenClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCB(cfg CircuitBreakerConfig) (*CircuitBreaker, *frozenClock) {
	clock := &frozenClock{t: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(cfg)
	cb.now = clock.now
	return cb, clock
}

func TestCB_OpensAfterThreshold(t *testing.T) {
	cb, _ := newTestCB(CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 1, OpenTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(failing), errBoom)
	}
	assert.Equal(t, CBOpen, cb.State())

	// Open circuit fast-fails without invoking fn
	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCB_SuccessResetsFailureCount(t *testing.T) {
	cb, _ := newTestCB(CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 1, OpenTimeout: time.Minute})

	require.Error(t, cb.Execute(failing))
	require.Error(t, cb.Execute(failing))
	require.NoError(t, cb.Execute(passing))
	require.Error(t, cb.Execute(failing))
	require.Error(t, cb.Execute(failing))

	// Never reached 3 consecutive failures
	assert.Equal(t, CBClosed, cb.State())
}

func TestCB_HalfOpenProbeClosesOnSuccess(t *testing.T) {
	cb, clock := newTestCB(CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 2, OpenTimeout: time.Minute})

	require.Error(t, cb.Execute(failing))
	require.Equal(t, CBOpen, cb.State())

	clock.advance(time.Minute)
	assert.Equal(t, CBHalfOpen, cb.State())

	require.NoError(t, cb.Execute(passing))
	assert.Equal(t, CBHalfOpen, cb.State(), "needs SuccessThreshold successes to close")
	require.NoError(t, cb.Execute(passing))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCB_HalfOpenProbeFailureReopens(t *testing.T) {
	cb, clock := newTestCB(CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 1, OpenTimeout: time.Minute})

	require.Error(t, cb.Execute(failing))
	clock.advance(time.Minute)
	require.Equal(t, CBHalfOpen, cb.State())

	require.Error(t, cb.Execute(failing))
	assert.Equal(t, CBOpen, cb.State())

	// Stays open until the timeout elapses again
	clock.advance(30 * time.Second)
	assert.Equal(t, CBOpen, cb.State())
	clock.advance(30 * time.Second)
	assert.Equal(t, CBHalfOpen, cb.State())
}

func TestCBConfigFrom_OverridesAndDefaults(t *testing.T) {
	got := CBConfigFrom(&config.Config{
		MailerCBFailures:    7,
		MailerCBOpenSeconds: 120,
	})
	assert.Equal(t, 7, got.FailureThreshold)
	assert.Equal(t, 2, got.SuccessThreshold, "unset values keep defaults")
	assert.Equal(t, 2*time.Minute, got.OpenTimeout)
}

func TestCBState_String(t *testing.T) {
	assert.Equal(t, "closed", CBClosed.String())
	assert.Equal(t, "open", CBOpen.String())
	assert.Equal(t, "half-open", CBHalfOpen.String())
}
