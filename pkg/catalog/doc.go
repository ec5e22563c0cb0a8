// Package catalog holds the immutable course catalog and the selection set.
//
// A [Catalog] is an ordered list of [Course] records keyed by identifier.
// Catalog order is significant: layering, layout and hit-testing all iterate
// courses in the order they were supplied, which makes every downstream result
// deterministic.
//
// Prerequisites are references by identifier. A reference to a course that is
// not in the catalog is accepted and silently ignored by every consumer; a
// course that lists itself as a prerequisite is rejected by [New].
//
// # Loading
//
// Catalogs are loaded from TOML, YAML or JSON documents with a top-level
// "courses" list:
//
//	[[courses]]
//	id = "MBA505"
//	name = "Strategic Management"
//	credits = 3
//	category = "core"
//	prerequisites = ["MBA501"]
//
// [Default] returns the embedded MBA catalog.
package catalog
