package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
)

// Sentinel errors for token negotiation.
var (
	// ErrTokenExchange is returned when the token endpoint is unreachable
	// or rejects a renewal request.
	ErrTokenExchange = errors.New("auth: token exchange failed")

	// ErrNoEndpoint is returned when a token is required but no token
	// endpoint is known (no challenge seen and none configured).
	ErrNoEndpoint = errors.New("auth: no token endpoint")
)

// Service negotiates bearer tokens for a single registry.
//
// A Service holds at most one token: the one minted for the most
// recently renewed scope. Changing the desired scope invalidates the
// held token, forcing a renewal on the next Token call. This trades
// renewal overhead for correctness; no attempt is made to hold one
// token per scope.
//
// All methods are safe for concurrent use. One mutex serializes the
// read-check-renew sequence so a caller can never observe the token
// being replaced mid-flight.
type Service struct {
	base     *url.URL
	httpc    *http.Client
	username string
	password string
	logger   *slog.Logger

	mu       sync.Mutex
	realm    string // token endpoint URL
	service  string // service parameter sent on token requests
	probed   bool
	required bool
	desired  Scope
	scope    Scope // scope the current token was minted for
	token    string
}

// Option configures a Service.
type Option func(*Service)

// WithHTTPClient sets the HTTP client used for the challenge probe and
// token requests.
func WithHTTPClient(httpc *http.Client) Option {
	return func(s *Service) {
		s.httpc = httpc
	}
}

// WithCredentials sets the username/password presented to the token
// endpoint via HTTP basic auth.
func WithCredentials(username, password string) Option {
	return func(s *Service) {
		s.username = username
		s.password = password
	}
}

// WithEndpoint sets the token endpoint explicitly instead of
// discovering it from the registry's challenge. Configuring an
// endpoint implies that token auth is required, so the probe is
// skipped entirely.
func WithEndpoint(realm, service string) Option {
	return func(s *Service) {
		s.realm = realm
		s.service = service
		s.probed = true
		s.required = true
	}
}

// WithLogger sets a logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a token service for the registry at base.
func New(base *url.URL, opts ...Option) *Service {
	s := &Service{
		base:    base,
		httpc:   http.DefaultClient,
		service: base.Host,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.httpc == nil {
		s.httpc = http.DefaultClient
	}
	return s
}

func (s *Service) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// SetDesiredScope records the scope required by the next registry
// operation. It performs no I/O; the held token is renewed lazily by
// Token when the desired scope differs from the token's scope.
func (s *Service) SetDesiredScope(scope Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.desired = scope
}

// DesiredScope returns the most recently requested scope.
func (s *Service) DesiredScope() Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.desired
}

// Required reports whether the registry demands bearer tokens.
//
// The answer is determined once, lazily, by an unauthenticated probe of
// the registry root: a 401 response carrying a Bearer challenge means
// token auth is in use, and the challenge's realm and service become
// the token endpoint. A failed probe (transport error) is not recorded,
// so a later call retries it.
func (s *Service) Required(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.probed {
		return s.required, nil
	}

	probe := s.base.JoinPath("/v2/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probe.String(), nil)
	if err != nil {
		return false, err
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		return false, fmt.Errorf("auth: probe %s: %w", probe, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		if c, ok := parseChallenge(resp.Header.Get("WWW-Authenticate")); ok && c.scheme == "bearer" {
			s.realm = c.params["realm"]
			if svc := c.params["service"]; svc != "" {
				s.service = svc
			}
			s.required = true
			s.log().Debug("registry requires token auth", "realm", s.realm, "service", s.service)
		}
	}
	s.probed = true
	return s.required, nil
}

// Token returns a token valid for the desired scope, renewing it first
// if no token is held or the held token was minted for a different
// scope. Renewal is synchronous; a renewal failure surfaces as
// ErrTokenExchange and leaves no token held.
func (s *Service) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.scope == s.desired {
		return s.token, nil
	}
	if err := s.renewLocked(ctx); err != nil {
		return "", err
	}
	return s.token, nil
}

// renewLocked fetches a fresh token for the desired scope.
// Caller must hold s.mu.
func (s *Service) renewLocked(ctx context.Context) error {
	if s.realm == "" {
		return ErrNoEndpoint
	}

	endpoint, err := url.Parse(s.realm)
	if err != nil {
		return fmt.Errorf("%w: invalid realm %q: %v", ErrTokenExchange, s.realm, err)
	}
	q := endpoint.Query()
	q.Set("service", s.service)
	if s.desired != "" {
		q.Set("scope", string(s.desired))
	}
	endpoint.RawQuery = q.Encode()

	s.log().Debug("renewing token", "scope", s.desired)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	if s.username != "" || s.password != "" {
		req.SetBasicAuth(s.username, s.password)
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		s.token = ""
		return fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.token = ""
		return fmt.Errorf("%w: %s returned %s", ErrTokenExchange, endpoint.Host, resp.Status)
	}

	var body struct {
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		s.token = ""
		return fmt.Errorf("%w: decoding response: %v", ErrTokenExchange, err)
	}

	token := body.Token
	if token == "" {
		token = body.AccessToken
	}
	if token == "" {
		s.token = ""
		return fmt.Errorf("%w: response contains no token", ErrTokenExchange)
	}

	s.token = token
	s.scope = s.desired
	return nil
}
