package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/registry-tools/regview/client/auth"
)

// Client is a Docker Registry HTTP API v2 client for a single
// registry. It owns one HTTP session and one token service for its
// lifetime; construct it with New and release the session with Close.
type Client struct {
	base         *url.URL
	httpc        *http.Client
	auth         *auth.Service
	manifestType string
	username     string
	password     string
	userAgent    string
	logger       *slog.Logger
}

// New creates a client for the registry at host. A host without a
// scheme defaults to https (or http with WithPlainHTTP).
//
// With the default VersionAuto, New probes the registry's capability
// endpoint; a registry answering 404 there does not speak API v2 and
// construction fails with ErrNotSupported. The HTTP session is
// released when construction fails after the client is assembled.
func New(ctx context.Context, host string, opts ...Option) (*Client, error) {
	o := &options{manifestType: MediaTypeManifest}
	for _, opt := range opts {
		opt(o)
	}

	base, err := parseHost(host, o.plainHTTP)
	if err != nil {
		return nil, err
	}

	httpc := o.httpc
	if httpc == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if o.insecure {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via WithInsecureSkipVerify
		}
		httpc = &http.Client{
			Transport: transport,
			Timeout:   o.timeout,
		}
	}

	authOpts := []auth.Option{auth.WithHTTPClient(httpc)}
	if o.username != "" || o.password != "" {
		authOpts = append(authOpts, auth.WithCredentials(o.username, o.password))
	}
	if o.authRealm != "" {
		service := o.authService
		if service == "" {
			service = base.Host
		}
		authOpts = append(authOpts, auth.WithEndpoint(o.authRealm, service))
	}
	if o.logger != nil {
		authOpts = append(authOpts, auth.WithLogger(o.logger))
	}

	c := &Client{
		base:         base,
		httpc:        httpc,
		auth:         auth.New(base, authOpts...),
		manifestType: o.manifestType,
		username:     o.username,
		password:     o.password,
		userAgent:    o.userAgent,
		logger:       o.logger,
	}

	switch o.version {
	case Version1:
		c.Close()
		return nil, fmt.Errorf("%w: v1 requested", ErrNotSupported)
	case VersionAuto:
		if err := c.CheckStatus(ctx); err != nil {
			c.Close()
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: %v", ErrNotSupported, err)
			}
			return nil, err
		}
	case Version2:
		// Caller vouches for v2; skip the probe.
	}

	return c, nil
}

// Close releases idle connections held by the client's HTTP session.
func (c *Client) Close() {
	c.httpc.CloseIdleConnections()
}

// Version returns the registry API version the client speaks.
func (c *Client) Version() int {
	return 2
}

func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// parseHost normalizes a registry host into a base URL.
func parseHost(host string, plainHTTP bool) (*url.URL, error) {
	if !strings.Contains(host, "://") {
		scheme := "https"
		if plainHTTP {
			scheme = "http"
		}
		host = scheme + "://" + host
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("client: invalid registry host %q: %w", host, err)
	}
	base.Path = strings.TrimSuffix(base.Path, "/")
	return base, nil
}

// do performs one registry request: it records the desired scope,
// attaches bearer or basic credentials, and maps any non-2xx response
// to a *StatusError. On failure the response body is consumed and idle
// connections are dropped so a broken session is not reused across the
// auth boundary. On success the caller owns the response body.
func (c *Client) do(ctx context.Context, method, path string, scope auth.Scope, accept string) (*http.Response, error) {
	c.auth.SetDesiredScope(scope)

	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("client: invalid path %q: %w", path, err)
	}
	target := c.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, method, target.String(), nil)
	if err != nil {
		return nil, err
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	required, err := c.auth.Required(ctx)
	if err != nil {
		return nil, err
	}
	if required {
		token, err := c.auth.Token(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	} else if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	c.log().Debug("registry request", "method", method, "path", path)

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.httpc.CloseIdleConnections()
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}

	c.log().Debug("registry response", "status", resp.StatusCode, "path", path)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		c.httpc.CloseIdleConnections()
		// Keep the reason phrase the server actually sent, not the
		// canonical text for the code.
		reason := strings.TrimPrefix(resp.Status, fmt.Sprintf("%d ", resp.StatusCode))
		return nil, &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Reason:     reason,
		}
	}

	return resp, nil
}
