// Package auth implements the Docker registry token authentication
// protocol: it probes the registry for a bearer challenge, exchanges
// credentials for scoped tokens at the advertised token endpoint, and
// renews the token whenever the desired scope changes.
//
// See https://distribution.github.io/distribution/spec/auth/token/ for
// the protocol specification.
package auth
