package regview

import (
	"context"
	"errors"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/registry-tools/regview/client"
)

func TestTag_ManifestSharedInstance(t *testing.T) {
	t.Parallel()

	api := appAPI()
	repo := testRepository(t, api)

	tag, err := repo.Tag(context.Background(), "v1")
	require.NoError(t, err)

	first, err := tag.Manifest(context.Background())
	require.NoError(t, err)
	second, err := tag.Manifest(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second, "repeated access returns the identical instance")
	assert.Equal(t, 1, api.manifestCalls)
	assert.Equal(t, sharedDigest, first.Digest())
	assert.Equal(t, "app", first.Repository())
}

func TestTag_ManifestDigestComesFromHeader(t *testing.T) {
	t.Parallel()

	// Content whose computed digest would differ from the header value:
	// the cached Manifest must carry the header digest regardless.
	api := appAPI()
	api.ManifestFunc = func(ctx context.Context, repo, reference string) (*client.ManifestInfo, error) {
		return &client.ManifestInfo{
			Content: []byte(`{"schemaVersion":2,"layers":[]}`),
			Digest:  otherDigest,
		}, nil
	}
	repo := testRepository(t, api)

	tag, err := repo.Tag(context.Background(), "v1")
	require.NoError(t, err)

	m, err := tag.Manifest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, otherDigest, m.Digest())
}

func TestTag_FailedResolutionIsRetried(t *testing.T) {
	t.Parallel()

	api := appAPI()
	boom := errors.New("manifest unavailable")
	calls := 0
	api.ManifestFunc = func(ctx context.Context, repo, reference string) (*client.ManifestInfo, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return &client.ManifestInfo{Content: []byte(`{}`), Digest: sharedDigest}, nil
	}
	repo := testRepository(t, api)

	tag, err := repo.Tag(context.Background(), "v1")
	require.NoError(t, err)

	_, err = tag.Manifest(context.Background())
	assert.ErrorIs(t, err, boom)

	m, err := tag.Manifest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sharedDigest, m.Digest())
}

func TestTag_Delete(t *testing.T) {
	t.Parallel()

	api := appAPI()
	var deleted []string
	api.DeleteManifestFunc = func(ctx context.Context, repo string, dgst digest.Digest) error {
		deleted = append(deleted, repo+"@"+dgst.String())
		return nil
	}
	repo := testRepository(t, api)

	tag, err := repo.Tag(context.Background(), "v1")
	require.NoError(t, err)

	require.NoError(t, tag.Delete(context.Background()))
	assert.Equal(t, []string{"app@" + sharedDigest.String()}, deleted)
}

func TestTag_Equal(t *testing.T) {
	t.Parallel()

	a := newTag(nil, "app", "v1")
	b := newTag(&mockAPI{}, "app", "v1")
	c := newTag(nil, "app", "v2")
	d := newTag(nil, "other", "v1")

	assert.True(t, a.Equal(b), "equality ignores client and resolution state")
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
	assert.False(t, a.Equal(nil))
}

func TestTag_EqualIgnoresManifestResolution(t *testing.T) {
	t.Parallel()

	api := appAPI()
	repo := testRepository(t, api)

	resolved, err := repo.Tag(context.Background(), "v1")
	require.NoError(t, err)
	_, err = resolved.Manifest(context.Background())
	require.NoError(t, err)

	unresolved := newTag(api, "app", "v1")
	assert.True(t, resolved.Equal(unresolved))
}
