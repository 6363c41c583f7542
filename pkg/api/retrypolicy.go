package api

import "time"

// RetryPolicy controls how a failed snapshot save is retried.
// MaxAttempts includes the first attempt:
//
//	MaxAttempts = 1 => no retries (just the initial call)
//	MaxAttempts = 3 => initial call + up to 2 retries
//
// Backoff is the delay between failed attempts. It is not applied
// before the first attempt. If zero, retries happen immediately.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}
