package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for registry operations.
var (
	// ErrNotSupported is returned at construction when the registry does
	// not implement API v2 (or an unsupported version was requested).
	ErrNotSupported = errors.New("client: registry does not support API v2")

	// ErrNotFound is matched by 404 responses via errors.Is.
	ErrNotFound = errors.New("client: not found")

	// ErrUnauthorized is matched by 401 responses via errors.Is.
	ErrUnauthorized = errors.New("client: unauthorized")

	// ErrMissingDigest is returned when a manifest response lacks the
	// Docker-Content-Digest header. The canonical digest is computed
	// server-side and is never recomputed from content.
	ErrMissingDigest = errors.New("client: response is missing Docker-Content-Digest")
)

// StatusError is returned for any non-2xx registry response.
//
// 404 and 401 responses additionally satisfy errors.Is against
// [ErrNotFound] and [ErrUnauthorized].
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Reason     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("client: %s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Reason)
}

// Is maps well-known status codes onto sentinel errors.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}
