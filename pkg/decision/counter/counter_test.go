package counter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/throttlegate/throttlegate/pkg/decision/store"
)

func TestCheckAndConsume_AdmitsUnderLimit(t *testing.T) {
	backend := store.NewMemoryBackend()
	defer backend.Close()
	c := New(backend)
	ctx := context.Background()

	allowed, count, err := c.CheckAndConsume(ctx, "rl:global", 60, 10)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, count)
}

func TestCheckAndConsume_CountsAreContiguous(t *testing.T) {
	backend := store.NewMemoryBackend()
	defer backend.Close()
	c := New(backend)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		allowed, count, err := c.CheckAndConsume(ctx, "rl:tenant:acme", 60, 10)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, i, count)
	}
}

func TestCheckAndConsume_RejectsAtLimitWithoutIncrementing(t *testing.T) {
	backend := store.NewMemoryBackend()
	defer backend.Close()
	c := New(backend)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, err := c.CheckAndConsume(ctx, "rl:apikey:k1", 60, 3)
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, count, err := c.CheckAndConsume(ctx, "rl:apikey:k1", 60, 3)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 3, count)

	// key is left unmodified: a subsequent call still observes count=3
	card, err := backend.Cardinality(ctx, "rl:apikey:k1")
	require.NoError(t, err)
	assert.Equal(t, 3, card)
}

func TestCheckAndConsume_ConcurrentAdmitsNeverExceedLimit(t *testing.T) {
	backend := store.NewMemoryBackend()
	defer backend.Close()
	c := New(backend)
	ctx := context.Background()

	const limit = 5
	const attempts = 10

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	rejected := 0
	contended := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, count, err := c.CheckAndConsume(ctx, "rl:model:gpt", 60, limit)
			require.NoError(t, err)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case count == -1:
				contended++
			case allowed:
				admitted++
			default:
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, contended)
	assert.Equal(t, limit, admitted)
	assert.Equal(t, attempts-limit, rejected)
}

func TestCheckAndConsume_ExhaustedRetriesReportsContention(t *testing.T) {
	backend := &alwaysConflictBackend{}
	c := New(backend).WithMaxRetries(3)
	ctx := context.Background()

	allowed, count, err := c.CheckAndConsume(ctx, "rl:global", 60, 10)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, -1, count)
	assert.Equal(t, 3, backend.calls)
}

// alwaysConflictBackend simulates a store under such heavy contention that
// every transaction attempt reports a conflict.
type alwaysConflictBackend struct {
	calls int
}

func (b *alwaysConflictBackend) Trim(ctx context.Context, key string, minScore, maxScore int64) error {
	return nil
}

func (b *alwaysConflictBackend) Cardinality(ctx context.Context, key string) (int, error) {
	return 0, nil
}

func (b *alwaysConflictBackend) Add(ctx context.Context, key string, score int64, member string) error {
	return nil
}

func (b *alwaysConflictBackend) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}

func (b *alwaysConflictBackend) Close() error { return nil }

func (b *alwaysConflictBackend) Txn(ctx context.Context, key string, minScore, maxScore int64, fn store.TxnFunc) (int, bool, error) {
	b.calls++
	return 0, false, store.ErrConflict
}

func TestCheckAndConsume_BackendTimeoutSurfacesAsStoreUnavailable(t *testing.T) {
	backend := store.NewMemoryBackend().WithTimeout(time.Minute)
	defer backend.Close()
	c := New(backend)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Millisecond))
	defer cancel()

	allowed, _, err := c.CheckAndConsume(ctx, "rl:global", 60, 10)
	assert.False(t, allowed)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
