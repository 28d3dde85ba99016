package catalog

import "errors"

// ErrUnavailable wraps any I/O or schema failure from a catalog Adapter.
// Not-found is never reported this way; see the Adapter doc comment.
var ErrUnavailable = errors.New("catalog: unavailable")
