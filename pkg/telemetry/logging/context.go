package logging

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	tenantIDKey  contextKey = "tenant_id"
	userIDKey    contextKey = "user_id"
	modelIDKey   contextKey = "model_id"
)

// WithRequestID attaches a request ID to ctx for later log enrichment.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID attached to ctx, if any.
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// WithIdentity attaches the request context's identifying fields to ctx for
// later log enrichment. Empty fields are omitted from subsequent log lines.
func WithIdentity(ctx context.Context, tenantID, userID, modelID string) context.Context {
	ctx = context.WithValue(ctx, tenantIDKey, tenantID)
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, modelIDKey, modelID)
	return ctx
}

// contextFields extracts the fields set by WithRequestID/WithIdentity as a
// flat slog.Logger.With(...) argument list.
func contextFields(ctx context.Context) []any {
	var fields []any
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		fields = append(fields, "request_id", v)
	}
	if v, ok := ctx.Value(tenantIDKey).(string); ok && v != "" {
		fields = append(fields, "tenant_id", v)
	}
	if v, ok := ctx.Value(userIDKey).(string); ok && v != "" {
		fields = append(fields, "user_id", v)
	}
	if v, ok := ctx.Value(modelIDKey).(string); ok && v != "" {
		fields = append(fields, "model_id", v)
	}
	return fields
}
