// Package counter implements the sliding-window counter (component B):
// CheckAndConsume admits at most one event per call against a single key,
// atomically, using the optimistic transaction exposed by pkg/decision/store.
//
// The algorithm mirrors the reference Python implementation's
// SlidingWindowRateLimiterTx.check_and_consume: trim expired entries,
// observe cardinality, reject without writing if already at limit, else add
// a uniquely-identified event and refresh the key's TTL. A failed
// transaction (concurrent modification) is retried, for at most
// DefaultMaxRetries attempts in total (or the number set with
// WithMaxRetries); exhausting them returns a count of -1 rather than guessing.
package counter
