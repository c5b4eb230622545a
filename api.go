package regview

import (
	"context"
	"io"

	"github.com/opencontainers/go-digest"

	"github.com/registry-tools/regview/client"
)

// API is the low-level operation set the entity model is built on.
// *client.Client satisfies it; tests substitute a mock.
type API interface {
	// Catalog lists every repository name in the registry.
	Catalog(ctx context.Context) ([]string, error)

	// Tags lists the tag names of a repository.
	Tags(ctx context.Context, repo string) ([]string, error)

	// Manifest fetches a manifest by tag or digest, returning the raw
	// document plus the canonical digest from the response headers.
	Manifest(ctx context.Context, repo, reference string) (*client.ManifestInfo, error)

	// DeleteManifest removes a manifest by digest.
	DeleteManifest(ctx context.Context, repo string, dgst digest.Digest) error

	// Blob fetches a blob into memory.
	Blob(ctx context.Context, repo string, dgst digest.Digest, mediaType string) ([]byte, error)

	// BlobReader streams a blob; the caller closes the reader.
	BlobReader(ctx context.Context, repo string, dgst digest.Digest, mediaType string) (io.ReadCloser, error)

	// DeleteBlob removes a blob by digest.
	DeleteBlob(ctx context.Context, repo string, dgst digest.Digest) error
}

var _ API = (*client.Client)(nil)
