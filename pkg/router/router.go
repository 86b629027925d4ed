package router

import "github.com/vango-dev/fsroute/pkg/routepath"

// EmptyCatchAll selects how an optional catch-all that matched zero
// components is reported.
type EmptyCatchAll uint8

const (
	// EmptyCatchAllBind binds the parameter to an empty, non-nil slice.
	EmptyCatchAllBind EmptyCatchAll = iota

	// EmptyCatchAllOmit leaves the parameter out of Params.
	EmptyCatchAllOmit
)

// String returns the configuration spelling of the mode.
func (m EmptyCatchAll) String() string {
	if m == EmptyCatchAllOmit {
		return "omit"
	}
	return "bind"
}

// ParseEmptyCatchAll parses "bind" or "omit". The empty string is "bind".
func ParseEmptyCatchAll(s string) (EmptyCatchAll, bool) {
	switch s {
	case "", "bind":
		return EmptyCatchAllBind, true
	case "omit":
		return EmptyCatchAllOmit, true
	}
	return EmptyCatchAllBind, false
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	emptyCatchAll EmptyCatchAll
}

// WithEmptyCatchAll sets how empty optional catch-all matches are bound.
func WithEmptyCatchAll(mode EmptyCatchAll) BuildOption {
	return func(o *buildOptions) {
		o.emptyCatchAll = mode
	}
}

// Table is a compiled, immutable route table. It is safe for concurrent
// use by any number of goroutines.
type Table struct {
	root   *node
	routes []*Route
	byID   map[string]*Route
	opts   buildOptions
}

// Build validates decls and compiles them into a Table. When any
// declaration is malformed or two declarations share a shape, Build
// returns a *BuildError listing every violation and no table.
//
// Example:
//
//	table, err := router.Build([]router.Declaration{
//	    {ID: "home"},
//	    {ID: "post", Segments: router.MustParsePattern("/blog/[slug]")},
//	})
//	result := table.MatchPath("/blog/hello-world")
//	// result.ID() == "post", result.Params.Get("slug") == "hello-world"
func Build(decls []Declaration, opts ...BuildOption) (*Table, error) {
	var options buildOptions
	for _, opt := range opts {
		opt(&options)
	}

	if err := NewValidator(decls).Validate(); err != nil {
		return nil, err
	}

	t := &Table{
		root:   newNode(),
		routes: make([]*Route, 0, len(decls)),
		byID:   make(map[string]*Route, len(decls)),
		opts:   options,
	}

	for i, d := range decls {
		route := compile(d, i)
		t.root.insert(route)
		t.routes = append(t.routes, route)
		t.byID[route.ID] = route
	}

	return t, nil
}

// compile copies a declaration into an immutable Route.
func compile(d Declaration, index int) *Route {
	segments := make([]Segment, len(d.Segments))
	copy(segments, d.Segments)

	route := &Route{
		ID:       d.ID,
		Pattern:  FormatPattern(segments),
		Source:   d.Source,
		Index:    index,
		segments: segments,
	}
	for pos, seg := range segments {
		if seg.IsParam() {
			route.params = append(route.params, paramSlot{name: seg.Value, kind: seg.Kind, position: pos})
		}
	}
	return route
}

// Match resolves components, a request path already split into non-empty
// components (root is an empty slice). It never fails: a miss is the zero
// MatchResult.
func (t *Table) Match(components []string) MatchResult {
	route, caps := t.root.match(components, 0, nil)
	if route == nil {
		return MatchResult{}
	}
	return MatchResult{
		Route:  route,
		Params: bind(route, components, caps, t.opts.emptyCatchAll),
	}
}

// MatchPath splits path on "/" and matches the components.
// No percent-decoding is applied.
func (t *Table) MatchPath(path string) MatchResult {
	return t.Match(routepath.Components(path))
}

// Routes returns the compiled routes in declaration order.
func (t *Table) Routes() []*Route {
	out := make([]*Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// SortedRoutes returns routes in precedence order: for each position
// static literals (alphabetically) come before dynamic, catch-all and
// optional catch-all branches.
func (t *Table) SortedRoutes() []*Route {
	out := make([]*Route, 0, len(t.routes))
	t.root.walk(func(r *Route) { out = append(out, r) })
	return out
}

// Lookup returns the route with the given ID.
func (t *Table) Lookup(id string) (*Route, bool) {
	r, ok := t.byID[id]
	return r, ok
}

// Len returns the number of routes.
func (t *Table) Len() int {
	return len(t.routes)
}

// EmptyCatchAll returns the table's empty optional catch-all mode.
func (t *Table) EmptyCatchAll() EmptyCatchAll {
	return t.opts.emptyCatchAll
}
