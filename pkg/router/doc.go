// Package router compiles file-system-shaped route templates into an
// immutable table and matches request paths against it.
//
// # Folder Convention
//
// Each folder name under the routes directory is one template segment:
//
//	about/          → static, matches "about"
//	[slug]/         → dynamic, binds one component to "slug"
//	[...slug]/      → catch-all, binds one or more trailing components
//	[[...slug]]/    → optional catch-all, binds zero or more trailing components
//	(marketing)/    → route group, contributes no segment
//	_components/    → private, never a route
//
// A folder containing a page file (page.go or index.go by default) declares
// a route. See Scanner.
//
// # Precedence
//
// At every depth a static literal is preferred over a dynamic segment,
// which is preferred over a catch-all, which is preferred over an optional
// catch-all. If the preferred branch fails deeper in the path the matcher
// backs up and tries the next alternative at the same depth.
//
// # Usage
//
//	decls, err := router.NewScanner("app/routes").Scan(ctx)
//	table, err := router.Build(decls)
//
//	result := table.MatchPath("/products/123/reviews/456")
//	if result.Matched() {
//	    // result.ID() == "/products/[productId]/reviews/[reviewId]"
//	    // result.Params.Get("reviewId") == "456"
//	}
//
// A Table never changes after Build and is safe for concurrent use. Use
// Live to swap in a rebuilt table.
package router
