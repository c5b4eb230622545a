package auth

import "strings"

// Scope is an access scope string as defined by the Docker registry
// token specification, e.g. "repository:library/alpine:pull" or
// "registry:catalog:*".
type Scope string

// RepositoryScope returns the scope granting the given actions on a
// repository. With no actions, all actions ("*") are requested.
func RepositoryScope(repo string, actions ...string) Scope {
	if len(actions) == 0 {
		actions = []string{"*"}
	}
	return Scope("repository:" + repo + ":" + strings.Join(actions, ","))
}

// CatalogScope returns the scope granting catalog listing access.
func CatalogScope() Scope {
	return Scope("registry:catalog:*")
}
