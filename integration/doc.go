//go:build integration

// Package integration provides integration tests for the regview library.
//
// These tests require Docker and spin up a real registry:2 container using
// testcontainers. Run with: go test -tags=integration ./integration/...
package integration
