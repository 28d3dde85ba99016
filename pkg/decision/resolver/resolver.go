package resolver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/throttlegate/throttlegate/pkg/decision"
	"github.com/throttlegate/throttlegate/pkg/decision/catalog"
)

// Resolver builds the ordered Effective Limit list for a request context.
type Resolver struct {
	catalog catalog.Adapter
}

// New wraps a catalog.Adapter.
func New(adapter catalog.Adapter) *Resolver {
	return &Resolver{catalog: adapter}
}

// Resolve performs the full lookup → query → sort → build pipeline described
// in the package doc. It returns a *decision.Error wrapping CatalogUnavailable
// on any adapter I/O failure; an empty result is not an error here — the
// composer is responsible for surfacing decision.NoPolicy.
func (r *Resolver) Resolve(ctx context.Context, rc decision.RequestContext) ([]decision.EffectiveLimit, error) {
	ids, err := r.resolveIdentity(ctx, rc)
	if err != nil {
		return nil, err
	}

	policies, err := r.catalog.ApplicablePolicies(ctx, ids)
	if err != nil {
		return nil, catalogUnavailable("query applicable policies", err)
	}

	sort.SliceStable(policies, func(i, j int) bool {
		pi, pj := policies[i], policies[j]
		if pi.Scope.Precedence() != pj.Scope.Precedence() {
			return pi.Scope.Precedence() > pj.Scope.Precedence()
		}
		return pi.ID < pj.ID
	})

	limits := make([]decision.EffectiveLimit, 0, len(policies))
	for _, p := range policies {
		limit, err := r.buildEffectiveLimit(ctx, p, ids)
		if err != nil {
			return nil, err
		}
		limits = append(limits, limit)
	}
	return limits, nil
}

// resolvedIdentity mirrors catalog.ResolvedIdentity to keep this package
// free of a direct struct-literal dependency on catalog's field layout.
type resolvedIdentity = catalog.ResolvedIdentity

func (r *Resolver) resolveIdentity(ctx context.Context, rc decision.RequestContext) (resolvedIdentity, error) {
	var ids resolvedIdentity

	tenantID, _, err := r.catalog.LookupTenant(ctx, rc.TenantID)
	if err != nil {
		return ids, catalogUnavailable("lookup tenant", err)
	}
	ids.TenantID = tenantID

	userID, _, err := r.catalog.LookupUser(ctx, tenantID, rc.UserID)
	if err != nil {
		return ids, catalogUnavailable("lookup user", err)
	}
	ids.UserID = userID

	apiKeyID, _, err := r.catalog.LookupAPIKey(ctx, rc.APIKey)
	if err != nil {
		return ids, catalogUnavailable("lookup api key", err)
	}
	ids.APIKeyID = apiKeyID

	modelInfo, _, err := r.catalog.LookupModel(ctx, rc.ModelID)
	if err != nil {
		return ids, catalogUnavailable("lookup model", err)
	}
	ids.ModelID = modelInfo.ModelID

	modelTierID := modelInfo.TierID
	if rc.ModelTier != "" {
		explicitTierID, ok, err := r.catalog.LookupTier(ctx, rc.ModelTier)
		if err != nil {
			return ids, catalogUnavailable("lookup tier", err)
		}
		if ok {
			modelTierID = explicitTierID
		}
	}
	ids.ModelTierID = modelTierID

	return ids, nil
}

func (r *Resolver) buildEffectiveLimit(ctx context.Context, p catalog.Policy, ids resolvedIdentity) (decision.EffectiveLimit, error) {
	key, err := counterKey(p.Scope, ids)
	if err != nil {
		return decision.EffectiveLimit{}, err
	}

	label := string(p.Scope)
	if p.Scope == decision.ScopeModelTier {
		if name, ok, err := r.catalog.TierName(ctx, ids.ModelTierID); err != nil {
			return decision.EffectiveLimit{}, catalogUnavailable("lookup tier name", err)
		} else if ok {
			label = strings.ToUpper(name) + "_TIER"
		}
	}

	return decision.EffectiveLimit{
		Key:           key,
		WindowSeconds: p.WindowSeconds,
		Limit:         p.Limit,
		Label:         label,
		Scope:         p.Scope,
		PolicyID:      p.ID,
	}, nil
}

// counterKey builds the canonical, deterministic counting-store key for a
// scope instance, per the six forms fixed by the resolver's contract.
func counterKey(scope decision.Scope, ids resolvedIdentity) (string, error) {
	switch scope {
	case decision.ScopeGlobal:
		return "rl:global", nil
	case decision.ScopeTenant:
		return "rl:tenant:" + ids.TenantID, nil
	case decision.ScopeAPIKey:
		return "rl:apikey:" + ids.APIKeyID, nil
	case decision.ScopeModel:
		return "rl:model:" + ids.ModelID, nil
	case decision.ScopeModelTier:
		return "rl:modeltier:" + ids.ModelTierID, nil
	case decision.ScopeUserModel:
		return fmt.Sprintf("rl:user:%s:model:%s", ids.UserID, ids.ModelID), nil
	default:
		return "", catalogUnavailable("unknown scope", fmt.Errorf("scope %q", scope))
	}
}

func catalogUnavailable(message string, cause error) *decision.Error {
	return decision.NewCatalogUnavailable(message, cause)
}
