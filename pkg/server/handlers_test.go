package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/throttlegate/throttlegate/pkg/decision"
)

// fakeDecisionService lets handler tests control the outcome without wiring
// a real resolver/counter pair.
type fakeDecisionService struct {
	decision decision.Decision
	err      error
}

func (f *fakeDecisionService) Decide(ctx context.Context, rc decision.RequestContext) (decision.Decision, error) {
	return f.decision, f.err
}

func TestRateLimitHandler_MethodNotAllowed(t *testing.T) {
	h := newRateLimitHandler(&fakeDecisionService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/rate-limit/check", nil)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestRateLimitHandler_MalformedBodyReturns422(t *testing.T) {
	h := newRateLimitHandler(&fakeDecisionService{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/rate-limit/check", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
}

func TestRateLimitHandler_AllowedDecisionReturns200(t *testing.T) {
	fake := &fakeDecisionService{decision: decision.Decision{
		Allowed:       true,
		Limit:         100,
		Count:         5,
		WindowSeconds: 60,
		Fulfilled: []decision.FulfilledLimit{
			{Label: "tenant", Key: "tenant:acme", Limit: 100, Count: 5, WindowSeconds: 60},
		},
	}}
	h := newRateLimitHandler(fake, nil)

	body := `{"userId":"u1","modelId":"gpt-5"}`
	req := httptest.NewRequest(http.MethodPost, "/rate-limit/check", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var got decision.Decision
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if !got.Allowed {
		t.Error("expected Allowed = true")
	}
	if len(got.Fulfilled) != 1 {
		t.Errorf("fulfilled count = %d, want 1", len(got.Fulfilled))
	}
}

func TestRateLimitHandler_DeniedDecisionReturns200(t *testing.T) {
	fake := &fakeDecisionService{decision: decision.Decision{
		Allowed:       false,
		Limit:         100,
		Count:         100,
		WindowSeconds: 60,
		Cause:         "tenant exceeded: 100/100 in the last 60 seconds (key=tenant:acme)",
	}}
	h := newRateLimitHandler(fake, nil)

	body := `{"userId":"u1","modelId":"gpt-5"}`
	req := httptest.NewRequest(http.MethodPost, "/rate-limit/check", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRateLimitHandler_ErrorKindsMapToStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid request", decision.NewInvalidRequest("userId is required"), http.StatusBadRequest},
		{"catalog unavailable", decision.NewCatalogUnavailable("lookup failed", nil), http.StatusInternalServerError},
		{"no policy", decision.NewNoPolicy("no policy resolved"), http.StatusInternalServerError},
		{"store unavailable", decision.NewStoreUnavailable("store down", nil), http.StatusServiceUnavailable},
		{"store contention", decision.NewStoreContention("exhausted retries"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeDecisionService{err: tt.err}
			h := newRateLimitHandler(fake, nil)

			body := `{"userId":"u1","modelId":"gpt-5"}`
			req := httptest.NewRequest(http.MethodPost, "/rate-limit/check", strings.NewReader(body))
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestHealthHandler_ReturnsOK(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	healthHandler{}.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestHealthHandler_RejectsNonGet(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	w := httptest.NewRecorder()

	healthHandler{}.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}
