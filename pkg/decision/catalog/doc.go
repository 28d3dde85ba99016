// Package catalog is the read-only Policy Catalog Adapter (component C): it
// resolves opaque request identifiers (tenant, user, api key, model, tier)
// to catalog-internal identity and answers which rate limit policies apply.
//
// Not-found is not an error: lookup methods return (id, false) for an
// unknown tenant, user, api key, model, or tier, since an unresolved scope
// simply never matches a policy (pkg/decision/resolver handles this). Only
// genuine I/O or schema failures are reported as errors, which callers
// should treat as CatalogUnavailable.
//
// Two Adapter implementations are provided:
//
//   - Postgres: backed by github.com/jackc/pgx/v5 / pgxpool, querying the
//     tenant/user_account/api_key/model/model_tier/rate_limit_policy tables.
//   - File: a YAML-file-backed catalog for local development and tests,
//     hot-reloaded on change via github.com/fsnotify/fsnotify.
package catalog
