// Package resolver replaces indirect references ("5 0 R") with the objects
// they name.
//
// Resolve follows a chain of references to the first direct object and
// leaves containers alone:
//
//	res := resolver.NewResolver(r)
//	resources, err := res.Resolve(page.Get("Resources"))
//
// ResolveDeep and ResolveDict copy the whole tree, replacing references at
// every level. Cycles on the current path are errors; an object reached
// twice through different keys is expanded twice. Nesting is bounded by
// DefaultMaxDepth unless WithMaxDepth says otherwise.
package resolver
