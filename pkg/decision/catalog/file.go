package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/throttlegate/throttlegate/pkg/decision"
)

// fileDocument is the on-disk shape of a YAML catalog file.
type fileDocument struct {
	Tenants  []fileTenant `yaml:"tenants"`
	Users    []fileUser   `yaml:"users"`
	APIKeys  []fileAPIKey `yaml:"apiKeys"`
	Tiers    []fileTier   `yaml:"modelTiers"`
	Models   []fileModel  `yaml:"models"`
	Policies []filePolicy `yaml:"policies"`
}

type fileTenant struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type fileUser struct {
	ID         string `yaml:"id"`
	TenantName string `yaml:"tenant"`
	ExternalID string `yaml:"externalId"`
}

type fileAPIKey struct {
	ID      string `yaml:"id"`
	Key     string `yaml:"key"`
	Revoked bool   `yaml:"revoked"`
}

type fileTier struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type fileModel struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	TierName string `yaml:"tier"`
}

type filePolicy struct {
	ID            int64  `yaml:"id"`
	Scope         string `yaml:"scope"`
	WindowSeconds int    `yaml:"windowSeconds"`
	Limit         int    `yaml:"limit"`
	Enabled       bool   `yaml:"enabled"`
	Tenant        string `yaml:"tenant,omitempty"`
	User          string `yaml:"user,omitempty"`
	APIKey        string `yaml:"apiKey,omitempty"`
	Model         string `yaml:"model,omitempty"`
	ModelTier     string `yaml:"modelTier,omitempty"`
}

// index is the parsed, lookup-ready form of a fileDocument.
type index struct {
	tenantByName map[string]string
	userByKey    map[string]string // "tenantID\x00externalID" -> userID
	apiKeyByHash map[string]string
	tierByName   map[string]string
	tierNameByID map[string]string
	modelByName  map[string]ModelInfo
	policies     []Policy
}

// File is an Adapter backed by a single YAML document on disk, reloaded on
// change. Intended for local development and tests, not production scale.
type File struct {
	path    string
	logger  *slog.Logger
	timeout time.Duration

	mu  sync.RWMutex
	idx *index

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// WithTimeout returns f configured to bound every lookup's context with d.
// Lookups are in-memory reads and never block, so this only matters when
// the caller passes in an already-expired context. d <= 0 disables the bound.
func (f *File) WithTimeout(d time.Duration) *File {
	f.timeout = d
	return f
}

func (f *File) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, f.timeout)
}

// NewFile loads path and starts watching it for changes via fsnotify. The
// caller must call Close to stop the watcher.
func NewFile(path string, logger *slog.Logger) (*File, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f := &File{
		path:   path,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	if err := f.reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("catalog: create watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("catalog: watch %s: %w", path, err)
	}
	f.watcher = watcher
	go f.watchLoop()

	return f, nil
}

func (f *File) watchLoop() {
	defer close(f.doneCh)
	for {
		select {
		case <-f.stopCh:
			return
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := f.reload(); err != nil {
				f.logger.Error("catalog: reload failed", "path", f.path, "error", err)
				continue
			}
			f.logger.Info("catalog: reloaded", "path", f.path)
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.logger.Error("catalog: watcher error", "error", err)
		}
	}
}

// Close stops the file watcher.
func (f *File) Close() error {
	close(f.stopCh)
	<-f.doneCh
	if f.watcher != nil {
		return f.watcher.Close()
	}
	return nil
}

func (f *File) reload() error {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrUnavailable, f.path, err)
	}
	var doc fileDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrUnavailable, f.path, err)
	}

	idx := buildIndex(doc)

	f.mu.Lock()
	f.idx = idx
	f.mu.Unlock()
	return nil
}

func buildIndex(doc fileDocument) *index {
	idx := &index{
		tenantByName: make(map[string]string),
		userByKey:    make(map[string]string),
		apiKeyByHash: make(map[string]string),
		tierByName:   make(map[string]string),
		tierNameByID: make(map[string]string),
		modelByName:  make(map[string]ModelInfo),
	}

	tenantIDByName := make(map[string]string)
	for _, t := range doc.Tenants {
		idx.tenantByName[t.Name] = t.ID
		tenantIDByName[t.Name] = t.ID
	}
	for _, u := range doc.Users {
		tenantID := tenantIDByName[u.TenantName]
		idx.userByKey[tenantID+"\x00"+u.ExternalID] = u.ID
	}
	for _, k := range doc.APIKeys {
		if k.Revoked {
			continue
		}
		idx.apiKeyByHash[hashAPIKey(k.Key)] = k.ID
	}
	for _, t := range doc.Tiers {
		idx.tierByName[t.Name] = t.ID
		idx.tierNameByID[t.ID] = t.Name
	}
	for _, m := range doc.Models {
		idx.modelByName[m.Name] = ModelInfo{ModelID: m.ID, TierID: idx.tierByName[m.TierName]}
	}
	for _, p := range doc.Policies {
		idx.policies = append(idx.policies, Policy{
			ID:            p.ID,
			Scope:         decision.Scope(p.Scope),
			WindowSeconds: p.WindowSeconds,
			Limit:         p.Limit,
			Enabled:       p.Enabled,
			TenantID:      tenantIDByName[p.Tenant],
			UserID:        idx.userByKey[tenantIDByName[p.Tenant]+"\x00"+p.User],
			APIKeyID:      p.APIKey,
			ModelID:       idx.modelByName[p.Model].ModelID,
			ModelTierID:   idx.tierByName[p.ModelTier],
		})
	}
	sort.SliceStable(idx.policies, func(i, j int) bool {
		return idx.policies[i].ID < idx.policies[j].ID
	})
	return idx
}

func (f *File) snapshot() *index {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.idx
}

func (f *File) LookupTenant(ctx context.Context, tenantID string) (string, bool, error) {
	if tenantID == "" {
		return "", false, nil
	}
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	id, ok := f.snapshot().tenantByName[tenantID]
	return id, ok, nil
}

func (f *File) LookupUser(ctx context.Context, tenantID, userID string) (string, bool, error) {
	if tenantID == "" || userID == "" {
		return "", false, nil
	}
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	id, ok := f.snapshot().userByKey[tenantID+"\x00"+userID]
	return id, ok, nil
}

func (f *File) LookupAPIKey(ctx context.Context, apiKey string) (string, bool, error) {
	if apiKey == "" {
		return "", false, nil
	}
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	id, ok := f.snapshot().apiKeyByHash[hashAPIKey(apiKey)]
	return id, ok, nil
}

func (f *File) LookupModel(ctx context.Context, modelID string) (ModelInfo, bool, error) {
	if modelID == "" {
		return ModelInfo{}, false, nil
	}
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return ModelInfo{}, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	info, ok := f.snapshot().modelByName[modelID]
	return info, ok, nil
}

func (f *File) LookupTier(ctx context.Context, tier string) (string, bool, error) {
	if tier == "" {
		return "", false, nil
	}
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	id, ok := f.snapshot().tierByName[tier]
	return id, ok, nil
}

func (f *File) TierName(ctx context.Context, tierID string) (string, bool, error) {
	if tierID == "" {
		return "", false, nil
	}
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	name, ok := f.snapshot().tierNameByID[tierID]
	return name, ok, nil
}

func (f *File) ApplicablePolicies(ctx context.Context, ids ResolvedIdentity) ([]Policy, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	idx := f.snapshot()
	var out []Policy
	for _, p := range idx.policies {
		if !p.Enabled {
			continue
		}
		if matches(p, ids) {
			out = append(out, p)
		}
	}
	return out, nil
}

func matches(p Policy, ids ResolvedIdentity) bool {
	switch p.Scope {
	case decision.ScopeGlobal:
		return true
	case decision.ScopeTenant:
		return ids.TenantID != "" && p.TenantID == ids.TenantID
	case decision.ScopeAPIKey:
		return ids.APIKeyID != "" && p.APIKeyID == ids.APIKeyID
	case decision.ScopeModel:
		return ids.ModelID != "" && p.ModelID == ids.ModelID
	case decision.ScopeModelTier:
		return ids.ModelTierID != "" && p.ModelTierID == ids.ModelTierID
	case decision.ScopeUserModel:
		return ids.UserID != "" && ids.ModelID != "" && p.UserID == ids.UserID && p.ModelID == ids.ModelID
	default:
		return false
	}
}
