package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRelay = errors.New("smtp: connection refused")

func tripBreaker(t *testing.T, b *Breaker, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := b.Do(func() error { return errRelay })
		require.ErrorIs(t, err, errRelay)
	}
}

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	b := NewBreaker(BreakerConfig{TripAfter: 3, CoolDown: time.Hour})

	tripBreaker(t, b, 3)
	assert.Equal(t, BreakerOpen, b.State())

	// open means the relay is never called
	llamado := false
	err := b.Do(func() error { llamado = true; return nil })
	assert.ErrorIs(t, err, ErrRelayCaido)
	assert.False(t, llamado)
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(BreakerConfig{TripAfter: 3, CoolDown: time.Hour})

	tripBreaker(t, b, 2)
	require.NoError(t, b.Do(func() error { return nil }))

	// the streak restarted, two more failures must not trip it
	tripBreaker(t, b, 2)
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreakerTrialClosesOnSuccess(t *testing.T) {
	b := NewBreaker(BreakerConfig{TripAfter: 1, CoolDown: 10 * time.Millisecond})

	tripBreaker(t, b, 1)
	require.Equal(t, BreakerOpen, b.State())

	time.Sleep(20 * time.Millisecond)
	require.Equal(t, BreakerTrial, b.State())

	require.NoError(t, b.Do(func() error { return nil }))
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreakerTrialFailureRestartsCoolDown(t *testing.T) {
	b := NewBreaker(BreakerConfig{TripAfter: 1, CoolDown: 10 * time.Millisecond})

	tripBreaker(t, b, 1)
	time.Sleep(20 * time.Millisecond)

	err := b.Do(func() error { return errRelay })
	require.ErrorIs(t, err, errRelay)
	assert.Equal(t, BreakerOpen, b.State())
}
