// Package server ties the decision service, health checker, and metrics
// collector into a single HTTP server.
//
// # Routes
//
//   - POST /rate-limit/check - evaluate a rate limit decision
//   - GET /health            - liveness probe, always 200
//   - GET /ready             - readiness probe, checks catalog and store
//   - GET /live              - liveness probe backed by the health checker
//   - GET /metrics           - Prometheus exposition
//
// # Middleware chain
//
// Requests pass through, innermost to outermost: Timeout, CORS, RequestID,
// Logging, Recovery.
//
// # Graceful shutdown
//
//	srv := server.NewServer(cfg, svc, checker, collector)
//	go srv.Start()
//	// ...
//	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
//	defer cancel()
//	srv.Shutdown(ctx)
package server
