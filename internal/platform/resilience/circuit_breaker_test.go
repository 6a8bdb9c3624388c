package resilience

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream down")

func newTestBreaker(threshold int) (*CircuitBreaker, *time.Time) {
	b := NewCircuitBreaker(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: threshold,
		OpenTimeout:      5 * time.Second,
		HalfOpenMaxReq:   1,
	})
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	return b, &now
}

func fail() error    { return errUpstream }
func succeed() error { return nil }

func TestCircuitBreakerTransitions(t *testing.T) {
	b, now := newTestBreaker(2)

	var transitions []string
	b.OnStateChange(func(from, to CircuitState) {
		transitions = append(transitions, string(from)+"->"+string(to))
	})

	require.ErrorIs(t, b.Execute(fail, nil), errUpstream)
	assert.Equal(t, CircuitStateClosed, b.State())

	require.ErrorIs(t, b.Execute(fail, nil), errUpstream)
	assert.Equal(t, CircuitStateOpen, b.State())

	calls := 0
	err := b.Execute(func() error { calls++; return nil }, nil)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Zero(t, calls)

	*now = now.Add(6 * time.Second)
	assert.Equal(t, CircuitStateHalfOpen, b.State())
	require.NoError(t, b.Execute(succeed, nil))
	assert.Equal(t, CircuitStateClosed, b.State())

	assert.Equal(t, []string{"closed->open", "open->half_open", "half_open->closed"}, transitions)
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	b, now := newTestBreaker(1)

	require.Error(t, b.Execute(fail, nil))
	*now = now.Add(6 * time.Second)

	require.ErrorIs(t, b.Execute(fail, nil), errUpstream)
	assert.Equal(t, CircuitStateOpen, b.State())
	require.ErrorIs(t, b.Execute(succeed, nil), ErrCircuitOpen)
}

func TestCircuitBreakerIgnoresNonFailures(t *testing.T) {
	b, _ := newTestBreaker(1)
	errBadRequest := errors.New("bad request")

	for i := 0; i < 3; i++ {
		err := b.Execute(func() error { return errBadRequest }, func(err error) bool {
			return !errors.Is(err, errBadRequest)
		})
		require.ErrorIs(t, err, errBadRequest)
	}
	assert.Equal(t, CircuitStateClosed, b.State())
}

func TestCircuitBreakerDisabledPassesThrough(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{Enabled: false, FailureThreshold: 1})
	for i := 0; i < 5; i++ {
		require.ErrorIs(t, b.Execute(fail, nil), errUpstream)
	}
	assert.Equal(t, CircuitStateClosed, b.State())
}

func TestNormalizeFillsDefaults(t *testing.T) {
	got := CircuitBreakerConfig{Enabled: true, FailureThreshold: -1}.Normalize()
	want := DefaultCircuitBreakerConfig()
	assert.Equal(t, want.FailureThreshold, got.FailureThreshold)
	assert.Equal(t, want.OpenTimeout, got.OpenTimeout)
	assert.Equal(t, want.HalfOpenMaxReq, got.HalfOpenMaxReq)
	assert.True(t, got.Enabled)
}
