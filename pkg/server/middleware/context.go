package middleware

type contextKey string

const (
	// requestIDKey stores the unique request ID.
	requestIDKey contextKey = "request_id"

	// startTimeKey stores the request start time for latency calculation.
	startTimeKey contextKey = "start_time"
)
