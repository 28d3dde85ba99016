// Package decision implements the rate limiting decision core: request
// validation, policy resolution, sliding-window admission, and composition of
// the final allow/reject decision for a single request context.
//
// # Overview
//
// Service.Decide is the single entry point consumed by the transport layer
// (pkg/server). It wires together three sub-packages:
//
//   - catalog: read-only lookup of tenants/users/api-keys/models/tiers and
//     the policies that apply to them.
//   - resolver: turns a request context plus catalog lookups into an ordered
//     list of effective limits.
//   - counter: atomically admits or rejects one event against a single
//     effective limit using a sliding window over the store.
//
// # Usage
//
//	svc := decision.NewService(resolver.New(catalogAdapter), counter.New(storeBackend))
//	result, err := svc.Decide(ctx, decision.RequestContext{
//	    UserID:  "user-42",
//	    ModelID: "gpt-4o",
//	})
//
// # Errors
//
// All core failures are reported as *decision.Error with a stable Kind, so
// the transport layer can map them to HTTP status codes without inspecting
// error strings.
package decision
