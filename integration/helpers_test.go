//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/docker/distribution"
	"github.com/docker/distribution/manifest/schema2"
	"github.com/klauspost/compress/gzip"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"oras.land/oras-go/v2/registry/remote"

	"github.com/registry-tools/regview"
)

// --- Registry Container Setup ---

var (
	registryOnce sync.Once
	registryAddr string
	registryErr  error
)

// getRegistry returns the shared registry address, starting the container if
// needed. The container is shared across all tests for performance.
func getRegistry(tb testing.TB) string {
	tb.Helper()

	if os.Getenv("SKIP_DOCKER_TESTS") == "1" {
		tb.Skip("SKIP_DOCKER_TESTS is set")
	}

	registryOnce.Do(func() {
		ctx := context.Background()
		registryAddr, registryErr = startRegistryContainer(ctx)
	})

	if registryErr != nil {
		tb.Fatalf("start registry container: %v", registryErr)
	}

	return registryAddr
}

// startRegistryContainer starts a registry:2 container with manifest deletion
// enabled and returns the host:port address.
func startRegistryContainer(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        "registry:2",
		ExposedPorts: []string{"5000/tcp"},
		Env: map[string]string{
			"REGISTRY_STORAGE_DELETE_ENABLED": "true",
		},
		WaitingFor: wait.ForHTTP("/v2/").WithPort("5000/tcp").WithStatusCodeMatcher(isOKStatus),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start registry container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve registry host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5000/tcp")
	if err != nil {
		return "", fmt.Errorf("resolve registry port: %w", err)
	}

	return fmt.Sprintf("%s:%s", host, port.Port()), nil
}

func isOKStatus(status int) bool {
	return status >= 200 && status < 300
}

// --- Registry Factory ---

// openRegistry connects a Registry to the local test container.
func openRegistry(tb testing.TB, addr string, opts ...regview.Option) *regview.Registry {
	tb.Helper()

	allOpts := append([]regview.Option{regview.WithPlainHTTP(true)}, opts...)

	reg, err := regview.New(context.Background(), addr, allOpts...)
	require.NoError(tb, err, "connect to test registry")
	tb.Cleanup(reg.Close)

	return reg
}

// --- Seeding Helpers ---

// seedImage pushes a minimal schema2 image to repo under the given tag and
// returns the manifest digest. The config blob carries the supplied creation
// time and the single layer holds content gzip-compressed, matching what a
// docker push would produce.
func seedImage(tb testing.TB, addr, repoName, tag string, created time.Time, content []byte) digest.Digest {
	tb.Helper()
	ctx := context.Background()

	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", addr, repoName))
	require.NoError(tb, err)
	repo.PlainHTTP = true

	configJSON, err := json.Marshal(ocispec.Image{Created: &created})
	require.NoError(tb, err)
	configDesc := ocispec.Descriptor{
		MediaType: schema2.MediaTypeImageConfig,
		Digest:    digest.FromBytes(configJSON),
		Size:      int64(len(configJSON)),
	}
	require.NoError(tb, repo.Blobs().Push(ctx, configDesc, bytes.NewReader(configJSON)))

	var layerBuf bytes.Buffer
	zw := gzip.NewWriter(&layerBuf)
	_, err = zw.Write(content)
	require.NoError(tb, err)
	require.NoError(tb, zw.Close())
	layerDesc := ocispec.Descriptor{
		MediaType: schema2.MediaTypeLayer,
		Digest:    digest.FromBytes(layerBuf.Bytes()),
		Size:      int64(layerBuf.Len()),
	}
	require.NoError(tb, repo.Blobs().Push(ctx, layerDesc, bytes.NewReader(layerBuf.Bytes())))

	manifest := schema2.Manifest{
		Versioned: schema2.SchemaVersion,
		Config:    distributionDescriptor(configDesc),
		Layers:    []distribution.Descriptor{distributionDescriptor(layerDesc)},
	}
	manifestJSON, err := json.Marshal(manifest)
	require.NoError(tb, err)
	manifestDesc := ocispec.Descriptor{
		MediaType: schema2.MediaTypeManifest,
		Digest:    digest.FromBytes(manifestJSON),
		Size:      int64(len(manifestJSON)),
	}
	require.NoError(tb, repo.Manifests().PushReference(ctx, manifestDesc, bytes.NewReader(manifestJSON), tag))

	return manifestDesc.Digest
}

// tagImage adds another tag pointing at an already pushed manifest digest.
func tagImage(tb testing.TB, addr, repoName string, dgst digest.Digest, tag string) {
	tb.Helper()
	ctx := context.Background()

	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", addr, repoName))
	require.NoError(tb, err)
	repo.PlainHTTP = true

	desc, err := repo.Resolve(ctx, dgst.String())
	require.NoError(tb, err)
	require.NoError(tb, repo.Tag(ctx, desc, tag))
}

func distributionDescriptor(d ocispec.Descriptor) distribution.Descriptor {
	return distribution.Descriptor{
		MediaType: d.MediaType,
		Digest:    d.Digest,
		Size:      d.Size,
	}
}
