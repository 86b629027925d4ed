package router

import (
	"slices"
)

// node is a trie node keyed by segment position.
type node struct {
	// static children keyed by literal
	static map[string]*node

	// dynamic is the single dynamic child. Parameter names live on the
	// routes, so differently named dynamic segments share this branch.
	dynamic *node

	// catchAll and optional terminate matching; their route is set on
	// the child itself.
	catchAll *node
	optional *node

	// route is the template ending at this node, if any.
	route *Route
}

func newNode() *node {
	return &node{}
}

// staticChild returns or creates the static child for literal.
func (n *node) staticChild(literal string) *node {
	if n.static == nil {
		n.static = make(map[string]*node)
	}
	child, ok := n.static[literal]
	if !ok {
		child = newNode()
		n.static[literal] = child
	}
	return child
}

// insert walks or extends the trie along route's segments and attaches
// route at the end. Declarations are validated beforehand, so a terminal
// slot is never occupied twice.
func (n *node) insert(route *Route) {
	current := n
	for _, seg := range route.segments {
		switch seg.Kind {
		case KindStatic:
			current = current.staticChild(seg.Value)
		case KindDynamic:
			if current.dynamic == nil {
				current.dynamic = newNode()
			}
			current = current.dynamic
		case KindCatchAll:
			if current.catchAll == nil {
				current.catchAll = newNode()
			}
			current = current.catchAll
		case KindOptionalCatchAll:
			if current.optional == nil {
				current.optional = newNode()
			}
			current = current.optional
		}
	}
	if current.route == nil {
		current.route = route
	}
}

// span is a captured range of request components, [start, end).
type span struct {
	start, end int
}

// match resolves components[depth:] below n. Captures are appended in
// template order: one per dynamic or catch-all segment consumed.
//
// Alternatives are tried static, dynamic, catch-all, optional catch-all.
// A failed static or dynamic subtree falls back to the next alternative at
// the same depth.
func (n *node) match(components []string, depth int, caps []span) (*Route, []span) {
	if depth == len(components) {
		if n.route != nil {
			return n.route, caps
		}
		if n.optional != nil && n.optional.route != nil {
			return n.optional.route, append(caps, span{depth, depth})
		}
		return nil, nil
	}

	if child, ok := n.static[components[depth]]; ok {
		if route, c := child.match(components, depth+1, caps); route != nil {
			return route, c
		}
	}

	if n.dynamic != nil {
		if route, c := n.dynamic.match(components, depth+1, append(caps, span{depth, depth + 1})); route != nil {
			return route, c
		}
	}

	if n.catchAll != nil && n.catchAll.route != nil {
		return n.catchAll.route, append(caps, span{depth, len(components)})
	}

	if n.optional != nil && n.optional.route != nil {
		return n.optional.route, append(caps, span{depth, len(components)})
	}

	return nil, nil
}

// walk visits every route reachable from n in trie order: static children
// sorted by literal, then dynamic, catch-all and optional catch-all.
func (n *node) walk(visit func(*Route)) {
	if n.route != nil {
		visit(n.route)
	}
	keys := make([]string, 0, len(n.static))
	for key := range n.static {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		n.static[key].walk(visit)
	}
	for _, child := range []*node{n.dynamic, n.catchAll, n.optional} {
		if child != nil {
			child.walk(visit)
		}
	}
}
