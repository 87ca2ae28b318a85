package pipeline

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Breaker defaults.
const (
	defaultFailureThreshold = 3
	defaultCooldown         = 30 * time.Minute
)

// Breaker is a circuit breaker guarding the remote compositor. After
// threshold consecutive failures it reports ShouldSkip for the cooldown
// window, measured from the most recent failed attempt.
//
// State is process-wide and serialized with a mutex, so concurrent requests
// see consistent counts. It is not persisted; a restart closes the circuit.
type Breaker struct {
	mu                  sync.Mutex
	consecutiveFailures int
	lastAttemptAt       time.Time

	threshold int
	cooldown  time.Duration
	now       func() time.Time // injectable for tests
}

// NewBreaker creates a breaker with the default threshold and cooldown.
func NewBreaker() *Breaker {
	return &Breaker{
		threshold: defaultFailureThreshold,
		cooldown:  defaultCooldown,
		now:       time.Now,
	}
}

// ShouldSkip reports whether the remote compositor should not be attempted:
// the failure threshold has been reached and the cooldown has not elapsed.
func (b *Breaker) ShouldSkip() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.consecutiveFailures < b.threshold {
		return false
	}
	if b.now().Sub(b.lastAttemptAt) >= b.cooldown {
		return false
	}
	return true
}

// RecordFailure notes a failed remote attempt.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures++
	b.lastAttemptAt = b.now()

	if b.consecutiveFailures == b.threshold {
		log.Warn().
			Int("consecutive_failures", b.consecutiveFailures).
			Dur("cooldown", b.cooldown).
			Msg("Circuit breaker opened for remote compositor")
	}
}

// RecordSuccess resets the failure count, closing the circuit.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.consecutiveFailures >= b.threshold {
		log.Info().Msg("Circuit breaker closed after successful remote call")
	}
	b.consecutiveFailures = 0
}

// Failures returns the current consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consecutiveFailures
}
