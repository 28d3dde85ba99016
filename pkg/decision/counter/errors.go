package counter

import "errors"

// ErrStoreUnavailable wraps any non-conflict error surfaced by the
// underlying store.Backend during CheckAndConsume.
var ErrStoreUnavailable = errors.New("counter: store unavailable")
