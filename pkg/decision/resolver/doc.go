// Package resolver implements the Policy Resolver (component D): it maps a
// decision.RequestContext to the ordered list of decision.EffectiveLimit
// the Decision Composer must evaluate.
//
// Resolve first translates the context's opaque identifiers into
// catalog-internal ids via a catalog.Adapter, queries applicable enabled
// policies, sorts them by scope precedence descending (tie-broken by
// catalog insertion order), and builds one EffectiveLimit per policy using
// the canonical per-scope counting-store key formats.
package resolver
