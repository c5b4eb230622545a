// Package client implements the read and delete subset of the Docker
// Registry HTTP API v2: capability probing, catalog and tag listing,
// and manifest/blob retrieval and deletion.
//
// Every operation computes the access scope it needs and delegates
// token negotiation to the [auth] subpackage, so callers never deal
// with bearer tokens directly. For the lazy entity model built on top
// of this package, see the parent regview package.
package client
