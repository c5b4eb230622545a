package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/registry-tools/regview/client/auth"
)

// ManifestInfo is the result of a manifest fetch: the raw manifest
// document, the media type the registry served it as, and the
// canonical digest reported by the registry. The digest always comes
// from the Docker-Content-Digest response header; for signed schema 1
// manifests it cannot be derived from the body alone.
type ManifestInfo struct {
	Content   []byte
	MediaType string
	Digest    digest.Digest
}

// CheckStatus probes the registry capability endpoint. A nil return
// means the registry speaks API v2 and the client is authorized to
// talk to it.
func (c *Client) CheckStatus(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/v2/", auth.CatalogScope(), "")
	if err != nil {
		return err
	}
	discard(resp)
	return nil
}

// Catalog lists every repository name the registry reports, following
// pagination links until the listing is exhausted.
func (c *Client) Catalog(ctx context.Context) ([]string, error) {
	var repos []string
	path := "/v2/_catalog"
	for path != "" {
		resp, err := c.do(ctx, http.MethodGet, path, auth.CatalogScope(), "")
		if err != nil {
			return nil, err
		}
		next := nextLink(resp.Header.Get("Link"))

		var body struct {
			Repositories []string `json:"repositories"`
		}
		if err := decode(resp, &body); err != nil {
			return nil, err
		}
		repos = append(repos, body.Repositories...)
		path = next
	}
	return repos, nil
}

// Tags lists the tag names of a repository, following pagination links.
func (c *Client) Tags(ctx context.Context, repo string) ([]string, error) {
	var tags []string
	path := fmt.Sprintf("/v2/%s/tags/list", repo)
	for path != "" {
		resp, err := c.do(ctx, http.MethodGet, path, auth.RepositoryScope(repo), "")
		if err != nil {
			return nil, err
		}
		next := nextLink(resp.Header.Get("Link"))

		var body struct {
			Tags []string `json:"tags"`
		}
		if err := decode(resp, &body); err != nil {
			return nil, err
		}
		tags = append(tags, body.Tags...)
		path = next
	}
	return tags, nil
}

// Manifest fetches a manifest by tag or digest. The Accept header
// carries the configured manifest media type (schema 2 by default), so
// the registry answers in that schema when it can.
func (c *Client) Manifest(ctx context.Context, repo, reference string) (*ManifestInfo, error) {
	path := fmt.Sprintf("/v2/%s/manifests/%s", repo, reference)
	resp, err := c.do(ctx, http.MethodGet, path, auth.RepositoryScope(repo), c.manifestType)
	if err != nil {
		return nil, err
	}
	defer discard(resp)

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: reading manifest %s: %w", reference, err)
	}

	header := resp.Header.Get("Docker-Content-Digest")
	if header == "" {
		return nil, fmt.Errorf("%w: %s %s", ErrMissingDigest, repo, reference)
	}
	dgst, err := digest.Parse(header)
	if err != nil {
		return nil, fmt.Errorf("client: invalid Docker-Content-Digest %q: %w", header, err)
	}

	return &ManifestInfo{
		Content:   content,
		MediaType: resp.Header.Get("Content-Type"),
		Digest:    dgst,
	}, nil
}

// DeleteManifest removes a manifest by digest. Registries only accept
// digests here; deleting by tag is not part of the API.
func (c *Client) DeleteManifest(ctx context.Context, repo string, dgst digest.Digest) error {
	path := fmt.Sprintf("/v2/%s/manifests/%s", repo, dgst)
	resp, err := c.do(ctx, http.MethodDelete, path, auth.RepositoryScope(repo), c.manifestType)
	if err != nil {
		return err
	}
	discard(resp)
	return nil
}

// Blob fetches a blob into memory. An empty mediaType defaults to the
// image config media type; use BlobReader for large layer blobs.
func (c *Client) Blob(ctx context.Context, repo string, dgst digest.Digest, mediaType string) ([]byte, error) {
	body, err := c.BlobReader(ctx, repo, dgst, mediaType)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	content, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("client: reading blob %s: %w", dgst, err)
	}
	return content, nil
}

// BlobReader streams a blob. The caller must close the returned reader.
func (c *Client) BlobReader(ctx context.Context, repo string, dgst digest.Digest, mediaType string) (io.ReadCloser, error) {
	if mediaType == "" {
		mediaType = MediaTypeImageConfig
	}
	path := fmt.Sprintf("/v2/%s/blobs/%s", repo, dgst)
	resp, err := c.do(ctx, http.MethodGet, path, auth.RepositoryScope(repo), mediaType)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// DeleteBlob removes a blob by digest.
func (c *Client) DeleteBlob(ctx context.Context, repo string, dgst digest.Digest) error {
	path := fmt.Sprintf("/v2/%s/blobs/%s", repo, dgst)
	resp, err := c.do(ctx, http.MethodDelete, path, auth.RepositoryScope(repo), "")
	if err != nil {
		return err
	}
	discard(resp)
	return nil
}

// decode unmarshals a JSON response body and closes it.
func decode(resp *http.Response, out any) error {
	defer discard(resp)
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decoding response: %w", err)
	}
	return nil
}

// discard drains and closes a response body so the connection can be
// reused.
func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// nextLink extracts the URI of the rel="next" entry from an RFC 5988
// Link header, or "" when there is none.
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		fields := strings.Split(part, ";")
		if len(fields) < 2 {
			continue
		}
		uri := strings.TrimSpace(fields[0])
		if !strings.HasPrefix(uri, "<") || !strings.HasSuffix(uri, ">") {
			continue
		}
		for _, attr := range fields[1:] {
			if key, value, ok := strings.Cut(strings.TrimSpace(attr), "="); ok &&
				strings.TrimSpace(key) == "rel" && strings.Trim(strings.TrimSpace(value), `"`) == "next" {
				return strings.Trim(uri, "<>")
			}
		}
	}
	return ""
}
