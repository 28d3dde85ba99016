package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend implements Backend over a sorted-set per key using
// github.com/redis/go-redis/v9, with ZREMRANGEBYSCORE/ZCARD/ZADD/EXPIRE and
// WATCH-based optimistic transactions mirroring the reference redis-py
// pipeline usage (WATCH, read, queue writes in MULTI/EXEC).
type RedisBackend struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisBackend wraps an existing *redis.Client. The caller owns the
// client's lifecycle except that Close also closes it.
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

// WithTimeout returns b configured to bound every subsequent round trip
// with a context.WithTimeout of d. d <= 0 disables the bound.
func (b *RedisBackend) WithTimeout(d time.Duration) *RedisBackend {
	b.timeout = d
	return b
}

func (b *RedisBackend) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, b.timeout)
}

// Trim removes members with score outside [minScore, maxScore], matching
// MemoryBackend.trimLocked. ZREMRANGEBYSCORE removes members *inside* the
// given range, so this issues the two complementary ranges instead of one.
func (b *RedisBackend) Trim(ctx context.Context, key string, minScore, maxScore int64) error {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()
	if err := b.client.ZRemRangeByScore(ctx, key, "-inf", exclusiveBound(minScore)).Err(); err != nil {
		return wrapRedisErr(err)
	}
	err := b.client.ZRemRangeByScore(ctx, key, exclusiveBound(maxScore), "+inf").Err()
	return wrapRedisErr(err)
}

// exclusiveBound formats a Redis score-range bound that excludes the given
// score itself (the "(" prefix in ZRANGEBYSCORE/ZREMRANGEBYSCORE syntax).
func exclusiveBound(score int64) string { return fmt.Sprintf("(%d", score) }

func (b *RedisBackend) Cardinality(ctx context.Context, key string) (int, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()
	n, err := b.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, wrapRedisErr(err)
	}
	return int(n), nil
}

func (b *RedisBackend) Add(ctx context.Context, key string, score int64, member string) error {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()
	err := b.client.ZAdd(ctx, key, redis.Z{Score: float64(score), Member: member}).Err()
	return wrapRedisErr(err)
}

func (b *RedisBackend) Expire(ctx context.Context, key string, ttl time.Duration) error {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()
	return wrapRedisErr(b.client.Expire(ctx, key, ttl).Err())
}

// Txn issues a Redis WATCH on key, performs the trim and cardinality read
// inside the watched transaction, invokes fn, and queues the resulting
// writes in a MULTI/EXEC pipeline. If key changed between WATCH and EXEC,
// go-redis returns redis.TxFailedErr, which is reported as ErrConflict so
// the caller (the sliding-window counter) can retry.
func (b *RedisBackend) Txn(ctx context.Context, key string, minScore, maxScore int64, fn TxnFunc) (int, bool, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	var (
		cardinality int
		committed   bool
		abortErr    error
	)

	txnFn := func(tx *redis.Tx) error {
		if err := tx.ZRemRangeByScore(ctx, key, "-inf", exclusiveBound(minScore)).Err(); err != nil {
			return err
		}
		if err := tx.ZRemRangeByScore(ctx, key, exclusiveBound(maxScore), "+inf").Err(); err != nil {
			return err
		}
		card, err := tx.ZCard(ctx, key).Result()
		if err != nil {
			return err
		}
		cardinality = int(card)

		writes, ok, err := fn(ctx, cardinality)
		if err != nil {
			abortErr = err
			return nil
		}
		if !ok {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, w := range writes {
				switch w.Op {
				case OpAdd:
					pipe.ZAdd(ctx, key, redis.Z{Score: float64(w.Score), Member: w.Member})
				case OpExpire:
					pipe.Expire(ctx, key, w.TTL)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		committed = true
		return nil
	}

	err := b.client.Watch(ctx, txnFn, key)
	if abortErr != nil {
		return cardinality, false, abortErr
	}
	if errors.Is(err, redis.TxFailedErr) {
		return cardinality, false, ErrConflict
	}
	if err != nil {
		return cardinality, false, wrapRedisErr(err)
	}
	return cardinality, committed, nil
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}

func wrapRedisErr(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
