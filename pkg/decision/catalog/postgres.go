package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/throttlegate/throttlegate/pkg/decision"
)

// Postgres is an Adapter backed by a pgxpool.Pool, querying the
// tenant/user_account/api_key/model/model_tier/rate_limit_policy schema
// described in SPEC_FULL.md's catalog persistence schema section.
type Postgres struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewPostgres wraps an existing pool. The caller owns the pool's lifecycle.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Open parses dsn and opens a new pool, pinging it before returning.
func Open(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse dsn: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("catalog: ping: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// WithTimeout returns a copy of p that bounds every subsequent lookup and
// ApplicablePolicies call with a context.WithTimeout of d. d <= 0 disables
// the bound.
func (p *Postgres) WithTimeout(d time.Duration) *Postgres {
	return &Postgres{pool: p.pool, timeout: d}
}

// withTimeout returns ctx bounded by p.timeout, along with its cancel func,
// or ctx unchanged with a no-op cancel when no timeout is configured.
func (p *Postgres) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}

func (p *Postgres) Close() {
	p.pool.Close()
}

// Ping checks that the pool can still reach the database, for use as a
// readiness probe.
func (p *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.pool.Ping(ctx)
}

func (p *Postgres) LookupTenant(ctx context.Context, tenantID string) (string, bool, error) {
	if tenantID == "" {
		return "", false, nil
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	var id string
	err := p.pool.QueryRow(ctx, `SELECT id FROM tenant WHERE name = $1`, tenantID).Scan(&id)
	return scanLookup(id, err)
}

func (p *Postgres) LookupUser(ctx context.Context, tenantID, userID string) (string, bool, error) {
	if tenantID == "" || userID == "" {
		return "", false, nil
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	var id string
	err := p.pool.QueryRow(ctx,
		`SELECT id FROM user_account WHERE tenant_id = $1 AND external_id = $2`,
		tenantID, userID,
	).Scan(&id)
	return scanLookup(id, err)
}

func (p *Postgres) LookupAPIKey(ctx context.Context, apiKey string) (string, bool, error) {
	if apiKey == "" {
		return "", false, nil
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	var id string
	err := p.pool.QueryRow(ctx,
		`SELECT id FROM api_key WHERE key_hash = $1 AND revoked = false`,
		hashAPIKey(apiKey),
	).Scan(&id)
	return scanLookup(id, err)
}

func (p *Postgres) LookupModel(ctx context.Context, modelID string) (ModelInfo, bool, error) {
	if modelID == "" {
		return ModelInfo{}, false, nil
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	var id string
	var tierID *string
	err := p.pool.QueryRow(ctx,
		`SELECT id, tier_id FROM model WHERE name = $1`,
		modelID,
	).Scan(&id, &tierID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ModelInfo{}, false, nil
	}
	if err != nil {
		return ModelInfo{}, false, fmt.Errorf("%w: lookup model: %v", ErrUnavailable, err)
	}
	info := ModelInfo{ModelID: id}
	if tierID != nil {
		info.TierID = *tierID
	}
	return info, true, nil
}

func (p *Postgres) LookupTier(ctx context.Context, tier string) (string, bool, error) {
	if tier == "" {
		return "", false, nil
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	var id string
	err := p.pool.QueryRow(ctx, `SELECT id FROM model_tier WHERE name = $1`, tier).Scan(&id)
	return scanLookup(id, err)
}

func (p *Postgres) TierName(ctx context.Context, tierID string) (string, bool, error) {
	if tierID == "" {
		return "", false, nil
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	var name string
	err := p.pool.QueryRow(ctx, `SELECT name FROM model_tier WHERE id = $1`, tierID).Scan(&name)
	return scanLookup(name, err)
}

func (p *Postgres) ApplicablePolicies(ctx context.Context, ids ResolvedIdentity) ([]Policy, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	rows, err := p.pool.Query(ctx, `
		SELECT id, scope, window_seconds, limit_value, enabled,
		       COALESCE(tenant_id, ''), COALESCE(user_id, ''),
		       COALESCE(api_key_id, ''), COALESCE(model_id, ''), COALESCE(model_tier_id, '')
		FROM rate_limit_policy
		WHERE enabled = true
		  AND (
		    scope = 'GLOBAL'
		    OR (scope = 'TENANT' AND tenant_id = NULLIF($1, ''))
		    OR (scope = 'API_KEY' AND api_key_id = NULLIF($2, ''))
		    OR (scope = 'MODEL' AND model_id = NULLIF($3, ''))
		    OR (scope = 'MODEL_TIER' AND model_tier_id = NULLIF($4, ''))
		    OR (scope = 'USER_MODEL' AND user_id = NULLIF($5, '') AND model_id = NULLIF($3, ''))
		  )
		ORDER BY id ASC
	`, ids.TenantID, ids.APIKeyID, ids.ModelID, ids.ModelTierID, ids.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: query policies: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var policies []Policy
	for rows.Next() {
		var pol Policy
		var scope string
		if err := rows.Scan(&pol.ID, &scope, &pol.WindowSeconds, &pol.Limit, &pol.Enabled,
			&pol.TenantID, &pol.UserID, &pol.APIKeyID, &pol.ModelID, &pol.ModelTierID); err != nil {
			return nil, fmt.Errorf("%w: scan policy: %v", ErrUnavailable, err)
		}
		pol.Scope = decision.Scope(scope)
		policies = append(policies, pol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate policies: %v", ErrUnavailable, err)
	}
	return policies, nil
}

func scanLookup(val string, err error) (string, bool, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return val, true, nil
}
