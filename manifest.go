package regview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/docker/distribution"
	"github.com/docker/distribution/manifest/schema2"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/registry-tools/regview/client"
)

// Manifest is an image manifest identified by (repository, digest).
//
// Content and the derived image age are resolved lazily and cached.
// A Manifest discovered through a Tag already carries its content;
// one constructed from a bare digest fetches it on first access.
type Manifest struct {
	api  API
	repo string
	dgst digest.Digest

	mu        sync.Mutex
	raw       []byte // nil until fetched
	mediaType string

	// ageMu guards the age fields and is held across the whole config
	// blob fetch; it nests outside mu, never the other way around.
	ageMu  sync.Mutex
	age    time.Time
	ageSet bool
}

// NewManifest returns an unresolved manifest handle for a digest known
// out-of-band (e.g. discovered in another manifest's references).
// Content is fetched on first access.
func NewManifest(api API, repo string, dgst digest.Digest) *Manifest {
	return &Manifest{api: api, repo: repo, dgst: dgst}
}

func newResolvedManifest(api API, repo string, info *client.ManifestInfo) *Manifest {
	return &Manifest{
		api:       api,
		repo:      repo,
		dgst:      info.Digest,
		raw:       info.Content,
		mediaType: info.MediaType,
	}
}

// Repository returns the name of the repository the manifest lives in.
func (m *Manifest) Repository() string {
	return m.repo
}

// Digest returns the canonical digest, as reported by the registry.
func (m *Manifest) Digest() digest.Digest {
	return m.dgst
}

func (m *Manifest) String() string {
	return m.repo + "@" + m.dgst.String()
}

// Raw returns a copy of the manifest document, fetching it by digest
// on first access. The cached bytes are never handed out directly, so
// callers cannot corrupt them.
func (m *Manifest) Raw(ctx context.Context) ([]byte, error) {
	raw, _, err := m.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(raw), nil
}

// MediaType returns the media type the registry served the manifest
// as, fetching the manifest on first access.
func (m *Manifest) MediaType(ctx context.Context) (string, error) {
	_, mediaType, err := m.resolve(ctx)
	return mediaType, err
}

// Content decodes the manifest as a schema 2 document. Each call
// returns a freshly decoded value, so mutating it cannot corrupt the
// cache.
func (m *Manifest) Content(ctx context.Context) (schema2.Manifest, error) {
	raw, _, err := m.resolve(ctx)
	if err != nil {
		return schema2.Manifest{}, err
	}
	var manifest schema2.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return schema2.Manifest{}, fmt.Errorf("regview: decoding manifest %s: %w", m, err)
	}
	return manifest, nil
}

// Config returns the manifest's config blob descriptor.
func (m *Manifest) Config(ctx context.Context) (distribution.Descriptor, error) {
	content, err := m.Content(ctx)
	if err != nil {
		return distribution.Descriptor{}, err
	}
	if content.Config.Digest == "" {
		return distribution.Descriptor{}, fmt.Errorf("regview: manifest %s has no config descriptor", m)
	}
	return content.Config, nil
}

// Age returns the image creation time, resolved on first access by
// fetching the config blob the manifest references and reading its
// creation timestamp, truncated to whole seconds.
func (m *Manifest) Age(ctx context.Context) (time.Time, error) {
	m.ageMu.Lock()
	defer m.ageMu.Unlock()

	if m.ageSet {
		return m.age, nil
	}

	conf, err := m.Config(ctx)
	if err != nil {
		return time.Time{}, err
	}

	blob, err := m.api.Blob(ctx, m.repo, conf.Digest, conf.MediaType)
	if err != nil {
		return time.Time{}, err
	}

	var img ocispec.Image
	if err := json.Unmarshal(blob, &img); err != nil {
		return time.Time{}, fmt.Errorf("regview: decoding config blob %s: %w", conf.Digest, err)
	}
	if img.Created == nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrNoCreationTime, conf.Digest)
	}

	m.age = img.Created.Truncate(time.Second)
	m.ageSet = true
	return m.age, nil
}

// Delete removes the manifest from the registry. The instance keeps
// its cached content; discard it after a successful delete.
func (m *Manifest) Delete(ctx context.Context) error {
	return m.api.DeleteManifest(ctx, m.repo, m.dgst)
}

// Equal reports whether both manifests name the same repository and
// digest and hold the same content. Equal never performs I/O: content
// is compared as cached, and two manifests whose content is unfetched
// compare equal when repository and digest match.
func (m *Manifest) Equal(other *Manifest) bool {
	if other == nil {
		return false
	}
	if m.repo != other.repo || m.dgst != other.dgst {
		return false
	}
	m.mu.Lock()
	raw := bytes.Clone(m.raw)
	m.mu.Unlock()
	other.mu.Lock()
	otherRaw := bytes.Clone(other.raw)
	other.mu.Unlock()
	return bytes.Equal(raw, otherRaw)
}

// resolve returns the cached manifest bytes, fetching them by digest
// on first access. On failure nothing is cached and the next call
// retries.
func (m *Manifest) resolve(ctx context.Context) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.raw != nil {
		return m.raw, m.mediaType, nil
	}

	info, err := m.api.Manifest(ctx, m.repo, m.dgst.String())
	if err != nil {
		return nil, "", err
	}
	m.raw = info.Content
	m.mediaType = info.MediaType
	return m.raw, m.mediaType, nil
}
