package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("disabled leaves headers untouched", func(t *testing.T) {
		wrapped := CORS(CORSConfig{Enabled: false})(handler)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("expected no CORS header when disabled, got %s", got)
		}
	})

	t.Run("allows configured origin", func(t *testing.T) {
		wrapped := CORS(CORSConfig{Enabled: true, AllowedOrigins: []string{"https://example.com"}})(handler)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
			t.Errorf("Access-Control-Allow-Origin = %s, want https://example.com", got)
		}
	})

	t.Run("rejects origin not in allow list", func(t *testing.T) {
		wrapped := CORS(CORSConfig{Enabled: true, AllowedOrigins: []string{"https://example.com"}})(handler)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("expected no CORS header for disallowed origin, got %s", got)
		}
	})

	t.Run("wildcard allows any origin", func(t *testing.T) {
		wrapped := CORS(CORSConfig{Enabled: true, AllowedOrigins: []string{"*"}})(handler)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://anything.example")
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Access-Control-Allow-Origin = %s, want *", got)
		}
	})

	t.Run("handles preflight OPTIONS request", func(t *testing.T) {
		wrapped := CORS(CORSConfig{Enabled: true, AllowedOrigins: []string{"*"}})(handler)

		req := httptest.NewRequest(http.MethodOptions, "/rate-limit/check", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
		}
		if got := w.Header().Get("Access-Control-Allow-Methods"); got == "" {
			t.Error("expected Access-Control-Allow-Methods to be set")
		}
	})
}
