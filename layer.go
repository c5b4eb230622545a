package regview

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/docker/distribution"
	"github.com/klauspost/compress/gzip"
)

// Layers returns the manifest's layer descriptors in order.
func (m *Manifest) Layers(ctx context.Context) ([]distribution.Descriptor, error) {
	content, err := m.Content(ctx)
	if err != nil {
		return nil, err
	}
	return content.Layers, nil
}

// LayerReader streams the blob behind a layer descriptor, transparently
// decompressing gzip-compressed layer media types. The caller must
// close the returned reader.
func (m *Manifest) LayerReader(ctx context.Context, desc distribution.Descriptor) (io.ReadCloser, error) {
	body, err := m.api.BlobReader(ctx, m.repo, desc.Digest, desc.MediaType)
	if err != nil {
		return nil, err
	}
	if !isGzipped(desc.MediaType) {
		return body, nil
	}

	zr, err := gzip.NewReader(body)
	if err != nil {
		_ = body.Close()
		return nil, fmt.Errorf("regview: decompressing layer %s: %w", desc.Digest, err)
	}
	return &layerReadCloser{body: body, zr: zr}, nil
}

func isGzipped(mediaType string) bool {
	return strings.HasSuffix(mediaType, ".tar.gzip") || strings.HasSuffix(mediaType, "+gzip")
}

// layerReadCloser closes both the gzip reader and the underlying body.
type layerReadCloser struct {
	body io.ReadCloser
	zr   *gzip.Reader
}

func (l *layerReadCloser) Read(p []byte) (int, error) {
	return l.zr.Read(p)
}

func (l *layerReadCloser) Close() error {
	zerr := l.zr.Close()
	berr := l.body.Close()
	if zerr != nil {
		return zerr
	}
	return berr
}
