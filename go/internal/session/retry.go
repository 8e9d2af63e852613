package session

import "time"

// RetryPolicy is the explicit one-shot recovery policy for match
// submissions that hit a missing round: create a replacement round,
// wait Backoff for the new id to settle, then resubmit at most
// Attempts times. No durable retry queue exists beyond this; dropped
// events are logged, never re-queued.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRecoveryPolicy returns the round-not-found recovery policy.
func DefaultRecoveryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: 1,
		Backoff:  1500 * time.Millisecond,
	}
}
