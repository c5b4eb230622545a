package regview

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/registry-tools/regview/client"
)

// Registry is the root of the object graph: one remote registry and
// the lazily-discovered repositories inside it.
//
// The repository mapping is populated from the catalog on first access
// and kept as a point-in-time snapshot; it is never refreshed. A
// Registry and every entity reachable from it are safe for concurrent
// use.
type Registry struct {
	name   string
	api    API
	cl     *client.Client // nil when an API was injected
	policy DeletePolicy
	logger *slog.Logger

	mu    sync.Mutex
	repos map[string]*Repository
}

// New connects to the registry at host. See client.New for host
// normalization and the API-version capability probe.
func New(ctx context.Context, host string, opts ...Option) (*Registry, error) {
	cfg := &config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	r := &Registry{
		name:   host,
		api:    cfg.api,
		policy: cfg.policy,
		logger: cfg.logger,
	}
	if r.api == nil {
		clientOpts := cfg.clientOpts
		if cfg.logger != nil {
			clientOpts = append(clientOpts, client.WithLogger(cfg.logger))
		}
		cl, err := client.New(ctx, host, clientOpts...)
		if err != nil {
			return nil, err
		}
		r.api = cl
		r.cl = cl
	}
	return r, nil
}

// Name returns the registry host the Registry was constructed with.
func (r *Registry) Name() string {
	return r.name
}

func (r *Registry) String() string {
	return r.name
}

// Close releases the underlying HTTP session. It is a no-op for
// registries constructed with WithAPI.
func (r *Registry) Close() {
	if r.cl != nil {
		r.cl.Close()
	}
}

func (r *Registry) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

// Repositories returns every repository in the catalog snapshot,
// sorted by name. The catalog is fetched on first call only.
func (r *Registry) Repositories(ctx context.Context) ([]*Repository, error) {
	repos, err := r.repositories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Repository, 0, len(repos))
	for _, repo := range repos {
		out = append(out, repo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

// Repository returns the named repository from the catalog snapshot,
// or ErrRepositoryNotFound if the catalog does not contain it.
func (r *Registry) Repository(ctx context.Context, name string) (*Repository, error) {
	repos, err := r.repositories(ctx)
	if err != nil {
		return nil, err
	}
	repo, ok := repos[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRepositoryNotFound, name)
	}
	return repo, nil
}

// Get returns the named repository, or ok=false if the catalog does
// not contain it. Unlike Repository, a missing name is not an error;
// only a failure to populate the catalog snapshot is.
func (r *Registry) Get(ctx context.Context, name string) (*Repository, bool, error) {
	repos, err := r.repositories(ctx)
	if err != nil {
		return nil, false, err
	}
	repo, ok := repos[name]
	return repo, ok, nil
}

// repositories populates the repository mapping on first call. The
// lock is held across the catalog fetch so concurrent first accesses
// resolve exactly once and observe the same mapping. On failure the
// mapping stays unpopulated and the next call retries.
func (r *Registry) repositories(ctx context.Context) (map[string]*Repository, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repos != nil {
		return r.repos, nil
	}

	names, err := r.api.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	r.log().Debug("catalog resolved", "registry", r.name, "repositories", len(names))

	repos := make(map[string]*Repository, len(names))
	for _, name := range names {
		repos[name] = newRepository(r.api, name, r.policy, r.logger)
	}
	r.repos = repos
	return r.repos, nil
}
