// internal/dispatch/retry.go
package dispatch

import (
	"context"
	"time"

	"github.com/aiba-2502/denco-notify/internal/types"
)

/*
 * Send retry policy.
 *
 * Wraps the external sender with bounded retries: up to MaxAttempts attempts,
 * exponential backoff doubling from InitialBackoff, each attempt under a hard
 * AttemptTimeout. Only transient error kinds retry; permanent kinds (invalid
 * address, authentication) fail immediately.
 *
 * Cancellation: when the caller's context ends, the in-flight attempt is
 * allowed to finish (it runs under its own attempt timeout) but no further
 * retry is scheduled. The last error is returned with the attempt count so
 * the outcome reflects partial work.
 */

// RetryPolicy bounds retries around one sender invocation.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	AttemptTimeout time.Duration
}

// DefaultRetryPolicy matches the delivery contract: 3 attempts, backoff
// starting at 1s, 30s per attempt.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		AttemptTimeout: 30 * time.Second,
	}
}

// sendWithRetry invokes sender under the policy.
// Returns the number of attempts made alongside the final error (nil on
// success).
func sendWithRetry(ctx context.Context, sender Sender, policy RetryPolicy, channel types.Channel, address, message string) (attempts int, err error) {
	backoff := policy.InitialBackoff

	for attempts = 1; ; attempts++ {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if policy.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, policy.AttemptTimeout)
		}
		err = sender.Send(attemptCtx, channel, address, message)
		if cancel != nil {
			cancel()
		}

		if err == nil {
			return attempts, nil
		}
		if !types.IsTransientSend(err) {
			return attempts, err
		}
		if attempts >= policy.MaxAttempts {
			return attempts, err
		}

		// No new retries once the caller has cancelled.
		select {
		case <-ctx.Done():
			return attempts, err
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}
