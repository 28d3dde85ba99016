// Package store provides the narrow ordered-set command surface (component A,
// "Counting Store Adapter") consumed by pkg/decision/counter.
//
// # Overview
//
// A Backend exposes exactly five commands against a sorted-set-capable store
// keyed by string: Trim, Cardinality, Add, Expire, and Txn. It does not
// interpret rate-limiting semantics — that is the counter's job.
//
// Two implementations are provided:
//
//   - Memory: an in-process backend for tests and single-instance deployments.
//   - Redis: a github.com/redis/go-redis/v9-backed implementation, using
//     sorted sets (ZADD/ZCARD/ZREMRANGEBYSCORE) and WATCH-based optimistic
//     transactions, mirroring the reference Python implementation's use of
//     redis-py pipelines.
//
// Any transport-level failure from either backend is wrapped as
// ErrUnavailable; a failed optimistic transaction is reported as ErrConflict.
package store
