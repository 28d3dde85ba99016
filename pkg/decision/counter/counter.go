package counter

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/throttlegate/throttlegate/pkg/decision/store"
)

// DefaultMaxRetries bounds the optimistic-transaction retry loop in
// CheckAndConsume. A key under heavy contention that exhausts this budget
// reports a count of -1 rather than guessing at admission.
const DefaultMaxRetries = 5

// Counter evaluates sliding-window admission against a store.Backend.
type Counter struct {
	backend    store.Backend
	maxRetries int
}

// New wraps backend with the default retry budget.
func New(backend store.Backend) *Counter {
	return &Counter{backend: backend, maxRetries: DefaultMaxRetries}
}

// WithMaxRetries returns a copy of c using the given retry budget instead of
// DefaultMaxRetries.
func (c *Counter) WithMaxRetries(n int) *Counter {
	return &Counter{backend: c.backend, maxRetries: n}
}

// CheckAndConsume admits at most one event against key within the given
// sliding window, atomically. It returns:
//
//   - (true, count) on admit, where count includes the just-added event.
//   - (false, count) on reject, where count is the observed cardinality that
//     caused the rejection (>= limit); the key is left unmodified.
//   - (false, -1) if the transaction could not commit within the retry
//     budget due to concurrent modification.
func (c *Counter) CheckAndConsume(ctx context.Context, key string, windowSeconds, limit int) (bool, int, error) {
	ttl := time.Duration(2*windowSeconds) * time.Second

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		nowMs := time.Now().UnixMilli()
		windowStartMs := nowMs - int64(windowSeconds)*1000

		var rejectedCount int
		var admitted bool

		cardinality, committed, err := c.backend.Txn(ctx, key, windowStartMs, math.MaxInt64, func(ctx context.Context, cardinality int) ([]store.Write, bool, error) {
			if cardinality >= limit {
				rejectedCount = cardinality
				return nil, false, nil
			}
			admitted = true
			return []store.Write{
				{Op: store.OpAdd, Score: nowMs, Member: uniqueMember(nowMs)},
				{Op: store.OpExpire, TTL: ttl},
			}, true, nil
		})

		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				continue
			}
			return false, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}

		if !committed {
			if admitted {
				// fn wanted to write but the backend declined without error;
				// treat as a conflict and retry.
				continue
			}
			return false, rejectedCount, nil
		}

		return true, cardinality + 1, nil
	}

	return false, -1, nil
}

// uniqueMember encodes a unique event identity compounding the millisecond
// timestamp with a random nonce, so two admissions within the same
// millisecond never collide in the underlying sorted set.
func uniqueMember(nowMs int64) string {
	return fmt.Sprintf("%d-%s", nowMs, uuid.NewString())
}
