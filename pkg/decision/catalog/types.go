package catalog

import (
	"context"

	"github.com/throttlegate/throttlegate/pkg/decision"
)

// Policy is a catalog rate-limit policy record, immutable to the core.
type Policy struct {
	ID            int64
	Scope         decision.Scope
	WindowSeconds int
	Limit         int
	Enabled       bool

	TenantID    string
	UserID      string
	APIKeyID    string
	ModelID     string
	ModelTierID string
}

// ModelInfo is the resolved identity and tier of a catalog model record.
type ModelInfo struct {
	ModelID string
	TierID  string
}

// Adapter is the narrow read-only interface the resolver (component D)
// consumes. Implementations must treat unresolved identifiers as a normal
// outcome: return ok=false, not an error.
type Adapter interface {
	// LookupTenant resolves an opaque tenantId to a catalog tenant id.
	LookupTenant(ctx context.Context, tenantID string) (id string, ok bool, err error)

	// LookupUser resolves an opaque userId scoped by tenant to a catalog
	// user id. If tenantID is empty, the user cannot resolve (ok=false).
	LookupUser(ctx context.Context, tenantID, userID string) (id string, ok bool, err error)

	// LookupAPIKey resolves a raw API key to a catalog api_key id, failing
	// to resolve (ok=false) if the key is unknown or revoked.
	LookupAPIKey(ctx context.Context, apiKey string) (id string, ok bool, err error)

	// LookupModel resolves an opaque modelId to its catalog id and the
	// tier id it belongs to (tier id may be empty if the model has none).
	LookupModel(ctx context.Context, modelID string) (info ModelInfo, ok bool, err error)

	// LookupTier resolves an opaque tier name to a catalog model_tier id.
	LookupTier(ctx context.Context, tier string) (id string, ok bool, err error)

	// TierName returns the display name of a tier by its catalog id, used
	// to build the MODEL_TIER effective-limit label. ok=false if unknown.
	TierName(ctx context.Context, tierID string) (name string, ok bool, err error)

	// ApplicablePolicies returns all enabled policies matching any of the
	// resolved identifiers, in catalog insertion (policy id ascending)
	// order. GLOBAL-scope policies always match.
	ApplicablePolicies(ctx context.Context, ids ResolvedIdentity) ([]Policy, error)
}

// ResolvedIdentity is the set of catalog-internal ids the resolver has
// derived from a request context. Empty strings mean "did not resolve".
type ResolvedIdentity struct {
	TenantID    string
	UserID      string
	APIKeyID    string
	ModelID     string
	ModelTierID string
}
