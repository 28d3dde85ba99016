package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout enforces a per-request deadline. If the downstream handler has not
// finished by then, a 504 response is written and the request context is
// cancelled so in-flight catalog/store calls can unwind.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(w, r.WithContext(ctx))
			}()

			select {
			case <-done:
				return
			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusGatewayTimeout)
					_, _ = w.Write(writeError("request timeout", "gateway_timeout"))
				}
			}
		})
	}
}
