package regview

import (
	"context"
	"sync"
)

// Tag is a named reference within a repository. Its manifest is
// resolved on first access and shared: every later access returns the
// identical Manifest instance.
type Tag struct {
	api  API
	repo string
	name string

	mu       sync.Mutex
	manifest *Manifest
}

func newTag(api API, repo, name string) *Tag {
	return &Tag{api: api, repo: repo, name: name}
}

// Repository returns the name of the repository the tag belongs to.
func (t *Tag) Repository() string {
	return t.repo
}

// Name returns the tag string.
func (t *Tag) Name() string {
	return t.name
}

func (t *Tag) String() string {
	return t.repo + ":" + t.name
}

// Manifest resolves the tag to its manifest. The first call fetches
// the manifest by tag and caches it, constructed with the canonical
// digest the registry reported; the manifest content fetched here is
// retained, so accessing it later costs no extra round trip. On
// failure nothing is cached and the next call retries.
func (t *Tag) Manifest(ctx context.Context) (*Manifest, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.manifest != nil {
		return t.manifest, nil
	}

	info, err := t.api.Manifest(ctx, t.repo, t.name)
	if err != nil {
		return nil, err
	}
	t.manifest = newResolvedManifest(t.api, t.repo, info)
	return t.manifest, nil
}

// Delete removes the manifest the tag points to. Because registries
// delete manifests by digest, this removes every other tag referencing
// the same digest as well. The local cache is not purged.
func (t *Tag) Delete(ctx context.Context) error {
	m, err := t.Manifest(ctx)
	if err != nil {
		return err
	}
	return m.Delete(ctx)
}

// Equal reports whether both tags name the same repository and tag
// string. Manifest resolution state does not participate.
func (t *Tag) Equal(other *Tag) bool {
	if other == nil {
		return false
	}
	return t.repo == other.repo && t.name == other.name
}
