package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/throttlegate/throttlegate/pkg/decision"
	"github.com/throttlegate/throttlegate/pkg/decision/catalog"
)

// fakeCatalog is an in-memory catalog.Adapter for resolver unit tests.
type fakeCatalog struct {
	tenants  map[string]string
	users    map[string]string // tenantID\x00externalID -> userID
	apiKeys  map[string]string
	models   map[string]catalog.ModelInfo
	tiers    map[string]string
	tierName map[string]string
	policies []catalog.Policy
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		tenants:  map[string]string{},
		users:    map[string]string{},
		apiKeys:  map[string]string{},
		models:   map[string]catalog.ModelInfo{},
		tiers:    map[string]string{},
		tierName: map[string]string{},
	}
}

func (f *fakeCatalog) LookupTenant(ctx context.Context, tenantID string) (string, bool, error) {
	id, ok := f.tenants[tenantID]
	return id, ok, nil
}

func (f *fakeCatalog) LookupUser(ctx context.Context, tenantID, userID string) (string, bool, error) {
	id, ok := f.users[tenantID+"\x00"+userID]
	return id, ok, nil
}

func (f *fakeCatalog) LookupAPIKey(ctx context.Context, apiKey string) (string, bool, error) {
	id, ok := f.apiKeys[apiKey]
	return id, ok, nil
}

func (f *fakeCatalog) LookupModel(ctx context.Context, modelID string) (catalog.ModelInfo, bool, error) {
	info, ok := f.models[modelID]
	return info, ok, nil
}

func (f *fakeCatalog) LookupTier(ctx context.Context, tier string) (string, bool, error) {
	id, ok := f.tiers[tier]
	return id, ok, nil
}

func (f *fakeCatalog) TierName(ctx context.Context, tierID string) (string, bool, error) {
	name, ok := f.tierName[tierID]
	return name, ok, nil
}

func (f *fakeCatalog) ApplicablePolicies(ctx context.Context, ids catalog.ResolvedIdentity) ([]catalog.Policy, error) {
	var out []catalog.Policy
	for _, p := range f.policies {
		switch p.Scope {
		case decision.ScopeGlobal:
			out = append(out, p)
		case decision.ScopeTenant:
			if ids.TenantID != "" && p.TenantID == ids.TenantID {
				out = append(out, p)
			}
		case decision.ScopeAPIKey:
			if ids.APIKeyID != "" && p.APIKeyID == ids.APIKeyID {
				out = append(out, p)
			}
		case decision.ScopeModel:
			if ids.ModelID != "" && p.ModelID == ids.ModelID {
				out = append(out, p)
			}
		case decision.ScopeModelTier:
			if ids.ModelTierID != "" && p.ModelTierID == ids.ModelTierID {
				out = append(out, p)
			}
		case decision.ScopeUserModel:
			if ids.UserID != "" && ids.ModelID != "" && p.UserID == ids.UserID && p.ModelID == ids.ModelID {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func TestResolve_SingleGlobalPolicy(t *testing.T) {
	cat := newFakeCatalog()
	cat.policies = []catalog.Policy{
		{ID: 1, Scope: decision.ScopeGlobal, WindowSeconds: 60, Limit: 10, Enabled: true},
	}
	r := New(cat)

	limits, err := r.Resolve(context.Background(), decision.RequestContext{UserID: "u", ModelID: "m"})
	require.NoError(t, err)
	require.Len(t, limits, 1)
	assert.Equal(t, "rl:global", limits[0].Key)
	assert.Equal(t, "GLOBAL", limits[0].Label)
}

func TestResolve_SortsByPrecedenceDescThenPolicyIDAsc(t *testing.T) {
	cat := newFakeCatalog()
	cat.tenants["acme"] = "tn-1"
	cat.users["tn-1\x00alice"] = "usr-1"
	cat.models["gpt"] = catalog.ModelInfo{ModelID: "mdl-1"}
	cat.policies = []catalog.Policy{
		{ID: 1, Scope: decision.ScopeGlobal, WindowSeconds: 60, Limit: 1000, Enabled: true},
		{ID: 2, Scope: decision.ScopeTenant, WindowSeconds: 60, Limit: 100, Enabled: true, TenantID: "tn-1"},
		{ID: 3, Scope: decision.ScopeUserModel, WindowSeconds: 60, Limit: 5, Enabled: true, UserID: "usr-1", ModelID: "mdl-1"},
	}
	r := New(cat)

	limits, err := r.Resolve(context.Background(), decision.RequestContext{
		UserID: "alice", ModelID: "gpt", TenantID: "acme",
	})
	require.NoError(t, err)
	require.Len(t, limits, 3)
	assert.Equal(t, decision.ScopeUserModel, limits[0].Scope)
	assert.Equal(t, decision.ScopeTenant, limits[1].Scope)
	assert.Equal(t, decision.ScopeGlobal, limits[2].Scope)
	assert.Equal(t, "rl:user:usr-1:model:mdl-1", limits[0].Key)
}

func TestResolve_ExplicitModelTierOverridesModelsDefaultTier(t *testing.T) {
	cat := newFakeCatalog()
	cat.models["gpt"] = catalog.ModelInfo{ModelID: "mdl-1", TierID: "standard-tier"}
	cat.tiers["premium"] = "premium-tier"
	cat.tierName["premium-tier"] = "premium"
	cat.policies = []catalog.Policy{
		{ID: 1, Scope: decision.ScopeModelTier, WindowSeconds: 60, Limit: 20, Enabled: true, ModelTierID: "premium-tier"},
	}
	r := New(cat)

	limits, err := r.Resolve(context.Background(), decision.RequestContext{
		UserID: "u", ModelID: "gpt", ModelTier: "premium",
	})
	require.NoError(t, err)
	require.Len(t, limits, 1)
	assert.Equal(t, "rl:modeltier:premium-tier", limits[0].Key)
	assert.Equal(t, "PREMIUM_TIER", limits[0].Label)
}

func TestResolve_EmptyResultWhenNoPoliciesMatch(t *testing.T) {
	cat := newFakeCatalog()
	r := New(cat)

	limits, err := r.Resolve(context.Background(), decision.RequestContext{UserID: "u", ModelID: "m"})
	require.NoError(t, err)
	assert.Empty(t, limits)
}

func TestResolve_UnknownIdentifiersDoNotError(t *testing.T) {
	cat := newFakeCatalog()
	cat.policies = []catalog.Policy{
		{ID: 1, Scope: decision.ScopeGlobal, WindowSeconds: 60, Limit: 10, Enabled: true},
	}
	r := New(cat)

	limits, err := r.Resolve(context.Background(), decision.RequestContext{
		UserID: "u", ModelID: "m", TenantID: "nonexistent-tenant",
	})
	require.NoError(t, err)
	require.Len(t, limits, 1)
	assert.Equal(t, decision.ScopeGlobal, limits[0].Scope)
}
