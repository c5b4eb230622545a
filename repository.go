package regview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/opencontainers/go-digest"
)

// Repository is a named repository within a registry. Its tag mapping
// is fetched once, on first access, and cached for the lifetime of the
// instance.
type Repository struct {
	api    API
	name   string
	policy DeletePolicy
	logger *slog.Logger

	mu   sync.Mutex
	tags map[string]*Tag
}

func newRepository(api API, name string, policy DeletePolicy, logger *slog.Logger) *Repository {
	return &Repository{
		api:    api,
		name:   name,
		policy: policy,
		logger: logger,
	}
}

// Name returns the repository name. It is immutable.
func (r *Repository) Name() string {
	return r.name
}

func (r *Repository) String() string {
	return r.name
}

func (r *Repository) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

// Tags returns every tag in the snapshot, sorted by name. The tag list
// is fetched on first call only.
func (r *Repository) Tags(ctx context.Context) ([]*Tag, error) {
	tags, err := r.tagMap(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Tag, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

// Tag returns the named tag, or ErrTagNotFound if the repository does
// not contain it.
func (r *Repository) Tag(ctx context.Context, name string) (*Tag, error) {
	tags, err := r.tagMap(ctx)
	if err != nil {
		return nil, err
	}
	tag, ok := tags[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s:%s", ErrTagNotFound, r.name, name)
	}
	return tag, nil
}

// Get returns the named tag, or ok=false if the repository does not
// contain it. A missing name is not an error.
func (r *Repository) Get(ctx context.Context, name string) (*Tag, bool, error) {
	tags, err := r.tagMap(ctx)
	if err != nil {
		return nil, false, err
	}
	tag, ok := tags[name]
	return tag, ok, nil
}

// Manifests resolves every tag's manifest and returns one Manifest per
// distinct digest, sorted by digest. Multiple tags pointing at the
// same digest collapse into a single entry.
func (r *Repository) Manifests(ctx context.Context) ([]*Manifest, error) {
	tags, err := r.tagMap(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[digest.Digest]*Manifest, len(tags))
	for _, tag := range tags {
		m, err := tag.Manifest(ctx)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[m.Digest()]; !ok {
			seen[m.Digest()] = m
		}
	}

	out := make([]*Manifest, 0, len(seen))
	for _, m := range seen {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Digest() < out[j].Digest() })
	return out, nil
}

// Delete removes every distinct manifest reachable from the
// repository's tags. Order across manifests is unspecified and the
// cascade is not transactional: with DeleteFailFast (the default) the
// first failure aborts the remainder, and deletes already issued stay
// issued; with DeleteBestEffort every manifest is attempted and the
// failures are joined.
//
// The local tag and manifest caches are not purged; discard the
// Repository after a delete.
func (r *Repository) Delete(ctx context.Context) error {
	manifests, err := r.Manifests(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, m := range manifests {
		if err := m.Delete(ctx); err != nil {
			if r.policy == DeleteFailFast {
				return err
			}
			errs = append(errs, err)
			continue
		}
		r.log().Debug("manifest deleted", "repository", r.name, "digest", m.Digest())
	}
	return errors.Join(errs...)
}

// tagMap populates the tag mapping on first call, holding the lock
// across the fetch. On failure the mapping stays unpopulated and the
// next call retries.
func (r *Repository) tagMap(ctx context.Context) (map[string]*Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tags != nil {
		return r.tags, nil
	}

	names, err := r.api.Tags(ctx, r.name)
	if err != nil {
		return nil, err
	}

	tags := make(map[string]*Tag, len(names))
	for _, name := range names {
		tags[name] = newTag(r.api, r.name, name)
	}
	r.tags = tags
	return r.tags, nil
}
