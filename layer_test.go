package regview

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/docker/distribution"
	"github.com/klauspost/compress/gzip"
	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/registry-tools/regview/client"
)

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestManifest_Layers(t *testing.T) {
	t.Parallel()

	api := &mockAPI{
		ManifestFunc: func(ctx context.Context, repo, reference string) (*client.ManifestInfo, error) {
			return &client.ManifestInfo{Content: manifestJSON, Digest: sharedDigest}, nil
		},
	}
	m := NewManifest(api, "app", sharedDigest)

	layers, err := m.Layers(context.Background())
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Equal(t, otherDigest, layers[0].Digest)
	assert.Equal(t, int64(1000), layers[0].Size)
}

func TestManifest_LayerReaderDecompresses(t *testing.T) {
	t.Parallel()

	payload := []byte("layer tar bytes")
	api := &mockAPI{
		BlobReaderFunc: func(ctx context.Context, repo string, dgst digest.Digest, mediaType string) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(gzipped(t, payload))), nil
		},
	}
	m := NewManifest(api, "app", sharedDigest)

	rc, err := m.LayerReader(context.Background(), distribution.Descriptor{
		MediaType: "application/vnd.docker.image.rootfs.diff.tar.gzip",
		Digest:    otherDigest,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestManifest_LayerReaderPassthrough(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"not":"compressed"}`)
	api := &mockAPI{
		BlobReaderFunc: func(ctx context.Context, repo string, dgst digest.Digest, mediaType string) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(payload)), nil
		},
	}
	m := NewManifest(api, "app", sharedDigest)

	rc, err := m.LayerReader(context.Background(), distribution.Descriptor{
		MediaType: client.MediaTypeImageConfig,
		Digest:    configDigest,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestIsGzipped(t *testing.T) {
	t.Parallel()

	assert.True(t, isGzipped("application/vnd.docker.image.rootfs.diff.tar.gzip"))
	assert.True(t, isGzipped("application/vnd.oci.image.layer.v1.tar+gzip"))
	assert.False(t, isGzipped("application/vnd.docker.container.image.v1+json"))
	assert.False(t, isGzipped("application/vnd.oci.image.layer.v1.tar"))
}
