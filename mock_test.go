package regview

import (
	"context"
	"io"

	"github.com/opencontainers/go-digest"

	"github.com/registry-tools/regview/client"
)

// mockAPI is a funcfield mock of the API interface. Calls without a
// configured func panic, which doubles as a "no unexpected network
// call" assertion. Call counters track how often each operation ran.
type mockAPI struct {
	CatalogFunc        func(ctx context.Context) ([]string, error)
	TagsFunc           func(ctx context.Context, repo string) ([]string, error)
	ManifestFunc       func(ctx context.Context, repo, reference string) (*client.ManifestInfo, error)
	DeleteManifestFunc func(ctx context.Context, repo string, dgst digest.Digest) error
	BlobFunc           func(ctx context.Context, repo string, dgst digest.Digest, mediaType string) ([]byte, error)
	BlobReaderFunc     func(ctx context.Context, repo string, dgst digest.Digest, mediaType string) (io.ReadCloser, error)
	DeleteBlobFunc     func(ctx context.Context, repo string, dgst digest.Digest) error

	catalogCalls        int
	tagsCalls           int
	manifestCalls       int
	deleteManifestCalls int
	blobCalls           int
}

var _ API = (*mockAPI)(nil)

func (m *mockAPI) Catalog(ctx context.Context) ([]string, error) {
	m.catalogCalls++
	if m.CatalogFunc == nil {
		panic("mockAPI: unexpected Catalog call")
	}
	return m.CatalogFunc(ctx)
}

func (m *mockAPI) Tags(ctx context.Context, repo string) ([]string, error) {
	m.tagsCalls++
	if m.TagsFunc == nil {
		panic("mockAPI: unexpected Tags call")
	}
	return m.TagsFunc(ctx, repo)
}

func (m *mockAPI) Manifest(ctx context.Context, repo, reference string) (*client.ManifestInfo, error) {
	m.manifestCalls++
	if m.ManifestFunc == nil {
		panic("mockAPI: unexpected Manifest call")
	}
	return m.ManifestFunc(ctx, repo, reference)
}

func (m *mockAPI) DeleteManifest(ctx context.Context, repo string, dgst digest.Digest) error {
	m.deleteManifestCalls++
	if m.DeleteManifestFunc == nil {
		panic("mockAPI: unexpected DeleteManifest call")
	}
	return m.DeleteManifestFunc(ctx, repo, dgst)
}

func (m *mockAPI) Blob(ctx context.Context, repo string, dgst digest.Digest, mediaType string) ([]byte, error) {
	m.blobCalls++
	if m.BlobFunc == nil {
		panic("mockAPI: unexpected Blob call")
	}
	return m.BlobFunc(ctx, repo, dgst, mediaType)
}

func (m *mockAPI) BlobReader(ctx context.Context, repo string, dgst digest.Digest, mediaType string) (io.ReadCloser, error) {
	if m.BlobReaderFunc == nil {
		panic("mockAPI: unexpected BlobReader call")
	}
	return m.BlobReaderFunc(ctx, repo, dgst, mediaType)
}

func (m *mockAPI) DeleteBlob(ctx context.Context, repo string, dgst digest.Digest) error {
	if m.DeleteBlobFunc == nil {
		panic("mockAPI: unexpected DeleteBlob call")
	}
	return m.DeleteBlobFunc(ctx, repo, dgst)
}

// newTestRegistry builds a Registry backed by a mock API.
func newTestRegistry(api API, opts ...Option) *Registry {
	opts = append(opts, WithAPI(api))
	r, err := New(context.Background(), "registry.test", opts...)
	if err != nil {
		panic(err)
	}
	return r
}
