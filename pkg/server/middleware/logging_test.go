package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLogging(t *testing.T) {
	t.Run("logs status and latency for a normal response", func(t *testing.T) {
		var buf bytes.Buffer
		prev := slog.Default()
		slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
		defer slog.SetDefault(prev)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		wrapped := RequestID(Logging(handler))

		req := httptest.NewRequest(http.MethodPost, "/rate-limit/check", nil)
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		var record map[string]any
		if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
			t.Fatalf("failed to unmarshal log line: %v", err)
		}
		if record["status"].(float64) != http.StatusOK {
			t.Errorf("status = %v, want %d", record["status"], http.StatusOK)
		}
		if record["request_id"] == "" {
			t.Error("expected request_id to be populated")
		}
		if _, ok := record["latency_ms"]; !ok {
			t.Error("expected latency_ms field")
		}
	})

	t.Run("escalates level for server errors", func(t *testing.T) {
		var buf bytes.Buffer
		prev := slog.Default()
		slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
		defer slog.SetDefault(prev)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		wrapped := Logging(handler)

		req := httptest.NewRequest(http.MethodPost, "/rate-limit/check", nil)
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)

		var record map[string]any
		if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
			t.Fatalf("failed to unmarshal log line: %v", err)
		}
		if record["level"] != "ERROR" {
			t.Errorf("level = %v, want ERROR", record["level"])
		}
	})
}

func TestResponseWriter_DefaultsToOKWhenUnwritten(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)
	if _, err := rw.Write([]byte("hi")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rw.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want %d", rw.statusCode, http.StatusOK)
	}
}
