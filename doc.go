// Package regview models a Docker v2 container image registry as a
// navigable object graph: registry → repositories → tags → manifests.
//
// Entities resolve their contents lazily, fetching nothing until it is
// asked for, and memoize the result per instance, so repeated access
// performs no further network calls. Token negotiation against
// the registry's authorization service happens transparently in the
// [client] subpackage; each operation requests exactly the access
// scope it needs.
//
// # Quick start
//
// List every tag of every repository:
//
//	reg, err := regview.New(ctx, "registry.example.com",
//	    regview.WithCredentials(user, pass),
//	)
//	if err != nil {
//	    return err
//	}
//	defer reg.Close()
//
//	repos, err := reg.Repositories(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, repo := range repos {
//	    tags, err := repo.Tags(ctx)
//	    ...
//	}
//
// Resolve a tag to its manifest and image age:
//
//	repo, err := reg.Repository(ctx, "library/app")
//	tag, err := repo.Tag(ctx, "v1")
//	m, err := tag.Manifest(ctx)
//	age, err := m.Age(ctx)
//
// # Caching and consistency
//
// Every lazy mapping is a point-in-time snapshot: once populated it is
// never refreshed. Deletions act on the remote registry only and do
// not purge local caches; discard stale entities and construct a new
// Registry to observe the new state. A failed resolution leaves the
// cache unpopulated, so the next access retries from scratch.
package regview
