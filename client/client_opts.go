package client

import (
	"log/slog"
	"net/http"
	"time"
)

// APIVersion selects the registry API implementation.
type APIVersion int

const (
	// VersionAuto probes the registry at construction and selects the
	// v2 implementation, failing with ErrNotSupported if the registry
	// does not answer on /v2/.
	VersionAuto APIVersion = iota

	// Version1 is the legacy v1 API. Not implemented; requesting it
	// fails construction with ErrNotSupported.
	Version1

	// Version2 skips the construction-time probe and assumes v2.
	Version2
)

type options struct {
	httpc        *http.Client
	insecure     bool
	plainHTTP    bool
	timeout      time.Duration
	username     string
	password     string
	authRealm    string
	authService  string
	manifestType string
	userAgent    string
	version      APIVersion
	logger       *slog.Logger
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient sets the HTTP client used for all registry and token
// requests, overriding the TLS and timeout options.
func WithHTTPClient(httpc *http.Client) Option {
	return func(o *options) {
		o.httpc = httpc
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(insecure bool) Option {
	return func(o *options) {
		o.insecure = insecure
	}
}

// WithPlainHTTP uses plain HTTP for hosts given without a scheme.
// Useful for local development registries.
func WithPlainHTTP(enabled bool) Option {
	return func(o *options) {
		o.plainHTTP = enabled
	}
}

// WithTimeout bounds each request, transport-level. Zero means no
// timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithCredentials sets the username/password used against the token
// endpoint and, for registries without token auth, as HTTP basic auth
// on registry requests.
func WithCredentials(username, password string) Option {
	return func(o *options) {
		o.username = username
		o.password = password
	}
}

// WithAuthEndpoint sets the token endpoint explicitly instead of
// discovering it from the registry's auth challenge. An empty service
// defaults to the registry host.
func WithAuthEndpoint(realm, service string) Option {
	return func(o *options) {
		o.authRealm = realm
		o.authService = service
	}
}

// WithManifestMediaType sets the Accept header sent on manifest
// requests. Defaults to MediaTypeManifest (schema 2).
func WithManifestMediaType(mediaType string) Option {
	return func(o *options) {
		o.manifestType = mediaType
	}
}

// WithUserAgent sets the User-Agent header for registry requests.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithAPIVersion selects the API version. Defaults to VersionAuto.
func WithAPIVersion(version APIVersion) Option {
	return func(o *options) {
		o.version = version
	}
}

// WithLogger sets a logger for the client. If nil, logging is
// discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
