package queue

// DefaultMaxAttempts is how many delivery attempts an item gets before it
// is dropped.
const DefaultMaxAttempts = 3

// RetryPolicy decides whether a failed item gets another pass. It is pure:
// no state, no clocks, so the threshold can be tested in isolation.
type RetryPolicy struct {
	MaxAttempts int
}

// NewRetryPolicy returns a policy allowing maxAttempts delivery attempts.
// Non-positive values fall back to DefaultMaxAttempts.
func NewRetryPolicy(maxAttempts int) RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return RetryPolicy{MaxAttempts: maxAttempts}
}

// ShouldDrop reports whether an item whose attempt count, after the failed
// attempt was counted, has exhausted its budget.
func (p RetryPolicy) ShouldDrop(attemptsAfterFailure int) bool {
	return attemptsAfterFailure >= p.MaxAttempts
}
