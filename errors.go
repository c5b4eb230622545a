package regview

import (
	"errors"

	"github.com/registry-tools/regview/client"
)

// Errors re-exported from client.
var (
	// ErrNotSupported is returned by New when the registry does not
	// support API v2.
	ErrNotSupported = client.ErrNotSupported

	// ErrNotFound is matched by 404 registry responses via errors.Is.
	ErrNotFound = client.ErrNotFound

	// ErrUnauthorized is matched by 401 registry responses via errors.Is.
	ErrUnauthorized = client.ErrUnauthorized
)

// Entity model errors.
var (
	// ErrRepositoryNotFound is returned when a repository is absent from
	// the registry catalog.
	ErrRepositoryNotFound = errors.New("regview: repository not found")

	// ErrTagNotFound is returned when a tag is absent from a repository.
	ErrTagNotFound = errors.New("regview: tag not found")

	// ErrNoCreationTime is returned by Manifest.Age when the referenced
	// config blob carries no creation timestamp.
	ErrNoCreationTime = errors.New("regview: config blob has no creation time")
)
