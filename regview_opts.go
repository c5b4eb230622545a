package regview

import (
	"log/slog"
	"time"

	"github.com/registry-tools/regview/client"
)

// DeletePolicy controls how Repository.Delete proceeds when one of the
// manifest deletions fails.
type DeletePolicy int

const (
	// DeleteFailFast aborts the cascade on the first failure. Deletes
	// already issued are not rolled back.
	DeleteFailFast DeletePolicy = iota

	// DeleteBestEffort attempts every manifest and returns the joined
	// failures, if any.
	DeleteBestEffort
)

type config struct {
	clientOpts []client.Option
	api        API
	policy     DeletePolicy
	logger     *slog.Logger
}

// Option configures a Registry.
type Option func(*config) error

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(insecure bool) Option {
	return func(c *config) error {
		c.clientOpts = append(c.clientOpts, client.WithInsecureSkipVerify(insecure))
		return nil
	}
}

// WithPlainHTTP uses plain HTTP for hosts given without a scheme.
func WithPlainHTTP(enabled bool) Option {
	return func(c *config) error {
		c.clientOpts = append(c.clientOpts, client.WithPlainHTTP(enabled))
		return nil
	}
}

// WithCredentials sets the username/password used against the
// authorization endpoint and the registry.
func WithCredentials(username, password string) Option {
	return func(c *config) error {
		c.clientOpts = append(c.clientOpts, client.WithCredentials(username, password))
		return nil
	}
}

// WithTimeout bounds each registry request. Zero means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) error {
		c.clientOpts = append(c.clientOpts, client.WithTimeout(timeout))
		return nil
	}
}

// WithAuthEndpoint sets the token endpoint explicitly instead of
// discovering it from the registry's auth challenge.
func WithAuthEndpoint(realm, service string) Option {
	return func(c *config) error {
		c.clientOpts = append(c.clientOpts, client.WithAuthEndpoint(realm, service))
		return nil
	}
}

// WithManifestMediaType selects the manifest schema requested from the
// registry. Defaults to client.MediaTypeManifest (schema 2).
func WithManifestMediaType(mediaType string) Option {
	return func(c *config) error {
		c.clientOpts = append(c.clientOpts, client.WithManifestMediaType(mediaType))
		return nil
	}
}

// WithUserAgent sets the User-Agent header for registry requests.
func WithUserAgent(ua string) Option {
	return func(c *config) error {
		c.clientOpts = append(c.clientOpts, client.WithUserAgent(ua))
		return nil
	}
}

// WithAPIVersion selects the registry API version. Defaults to
// client.VersionAuto, which probes at construction.
func WithAPIVersion(version client.APIVersion) Option {
	return func(c *config) error {
		c.clientOpts = append(c.clientOpts, client.WithAPIVersion(version))
		return nil
	}
}

// WithDeletePolicy sets the cascade behavior of Repository.Delete.
func WithDeletePolicy(policy DeletePolicy) Option {
	return func(c *config) error {
		c.policy = policy
		return nil
	}
}

// WithAPI injects a low-level API implementation, bypassing client
// construction (and its capability probe) entirely. Intended for tests
// and custom transports.
func WithAPI(api API) Option {
	return func(c *config) error {
		c.api = api
		return nil
	}
}

// WithLogger sets a logger for the registry and its client.
// If nil, logging is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}
