package client

import "github.com/docker/distribution/manifest/schema2"

// Manifest media types usable with WithManifestMediaType. The registry
// converts (or refuses to convert) between schemas based on the Accept
// header, so the chosen type decides what Manifest returns.
const (
	// MediaTypeSignedManifest is the legacy signed schema 1 media type.
	MediaTypeSignedManifest = "application/vnd.docker.distribution.manifest.v1+prettyjws"

	// MediaTypeManifestV1 is the schema 1 media type.
	MediaTypeManifestV1 = "application/vnd.docker.distribution.manifest.v1+json"

	// MediaTypeManifest is the schema 2 media type, the default.
	MediaTypeManifest = schema2.MediaTypeManifest
)

// MediaTypeImageConfig is the media type assumed for config blobs when
// the caller does not specify one.
const MediaTypeImageConfig = schema2.MediaTypeImageConfig
