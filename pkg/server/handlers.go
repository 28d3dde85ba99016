package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/throttlegate/throttlegate/pkg/decision"
	"github.com/throttlegate/throttlegate/pkg/server/middleware"
	"github.com/throttlegate/throttlegate/pkg/telemetry/health"
	"github.com/throttlegate/throttlegate/pkg/telemetry/metrics"
)

// DecisionService is the interface pkg/decision.Service satisfies. Declaring
// it here instead of depending on the concrete type keeps this package
// testable against a fake.
type DecisionService interface {
	Decide(ctx context.Context, rc decision.RequestContext) (decision.Decision, error)
}

// rateLimitHandler serves POST /rate-limit/check.
type rateLimitHandler struct {
	service   DecisionService
	collector *metrics.Collector
}

func newRateLimitHandler(service DecisionService, collector *metrics.Collector) *rateLimitHandler {
	return &rateLimitHandler{service: service, collector: collector}
}

func (h *rateLimitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed", "invalid_request")
		return
	}

	var rc decision.RequestContext
	if err := json.NewDecoder(r.Body).Decode(&rc); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "malformed request body", "schema_violation")
		return
	}

	start := time.Now()
	result, err := h.service.Decide(r.Context(), rc)
	elapsed := time.Since(start)
	if err != nil {
		h.handleDecideError(w, r, err)
		return
	}

	outcome := "denied"
	if result.Allowed {
		outcome = "allowed"
	}
	if h.collector != nil {
		h.collector.RecordDecision(outcome, scopeOf(result), elapsed)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(result)
}

// scopeOf picks the label of the limit that decided the outcome: the
// primary fulfilled limit when allowed, or the cause text when denied (the
// composer names the winning scope first in Cause).
func scopeOf(d decision.Decision) string {
	if d.Allowed {
		for _, f := range d.Fulfilled {
			if f.Limit == d.Limit && f.Count == d.Count && f.WindowSeconds == d.WindowSeconds {
				return f.Label
			}
		}
		return "unknown"
	}
	if label, _, ok := strings.Cut(d.Cause, " exceeded:"); ok && label != "" {
		return label
	}
	return "unknown"
}

func (h *rateLimitHandler) handleDecideError(w http.ResponseWriter, r *http.Request, err error) {
	kind, ok := decision.KindOf(err)
	if !ok {
		slog.ErrorContext(r.Context(), "unrecognized decision error", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error", "server_error")
		return
	}

	var de *decision.Error
	errors.As(err, &de)

	switch kind {
	case decision.InvalidRequest:
		writeJSONError(w, http.StatusBadRequest, de.Message, "invalid_request")
	case decision.CatalogUnavailable:
		if h.collector != nil {
			h.collector.RecordCatalogError("catalog")
		}
		slog.ErrorContext(r.Context(), "catalog unavailable", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "catalog unavailable", "server_error")
	case decision.NoPolicy:
		slog.WarnContext(r.Context(), "no policy resolved", "error", err)
		writeJSONError(w, http.StatusInternalServerError, de.Message, "server_error")
	case decision.StoreUnavailable:
		if h.collector != nil {
			h.collector.RecordStoreError("store")
		}
		slog.ErrorContext(r.Context(), "counting store unavailable", "error", err)
		writeJSONError(w, http.StatusServiceUnavailable, "counting store unavailable", "store_unavailable")
	case decision.StoreContention:
		if h.collector != nil {
			h.collector.RecordStoreContention("store")
		}
		slog.WarnContext(r.Context(), "counting store contention", "error", err)
		writeJSONError(w, http.StatusServiceUnavailable, de.Message, "store_contention")
	default:
		slog.ErrorContext(r.Context(), "unknown decision error kind", "kind", kind)
		writeJSONError(w, http.StatusInternalServerError, "internal error", "server_error")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message, errType string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(middleware.ErrorResponse{
		Error: middleware.ErrorDetail{Message: message, Type: errType},
	})
}

// healthHandler serves GET /health, a plain liveness probe independent of
// the readiness checker: it reports the process is up, not that its
// dependencies are reachable.
type healthHandler struct{}

func (healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed", "invalid_request")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func readinessHandler(checker *health.Checker) http.Handler {
	return checker.ReadinessHandler()
}

func livenessHandler(checker *health.Checker) http.Handler {
	return checker.LivenessHandler()
}
