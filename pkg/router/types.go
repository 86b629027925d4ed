package router

import "strings"

// Kind classifies a route template segment.
type Kind uint8

const (
	// KindStatic matches one exact literal component.
	KindStatic Kind = iota

	// KindDynamic matches exactly one component and binds it ([id]).
	KindDynamic

	// KindCatchAll matches one or more trailing components ([...slug]).
	KindCatchAll

	// KindOptionalCatchAll matches zero or more trailing components ([[...slug]]).
	KindOptionalCatchAll
)

// String returns the kind name used in error messages and listings.
func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindDynamic:
		return "dynamic"
	case KindCatchAll:
		return "catchAll"
	case KindOptionalCatchAll:
		return "optionalCatchAll"
	default:
		return "unknown"
	}
}

// IsCatchAll reports whether the kind consumes the rest of the path.
func (k Kind) IsCatchAll() bool {
	return k == KindCatchAll || k == KindOptionalCatchAll
}

// Segment is one component of a route template.
type Segment struct {
	// Kind is the segment kind.
	Kind Kind

	// Value is the literal for static segments and the parameter
	// name for every other kind.
	Value string
}

// Static returns a static segment.
func Static(literal string) Segment { return Segment{Kind: KindStatic, Value: literal} }

// Dynamic returns a dynamic segment bound to name.
func Dynamic(name string) Segment { return Segment{Kind: KindDynamic, Value: name} }

// CatchAll returns a catch-all segment bound to name.
func CatchAll(name string) Segment { return Segment{Kind: KindCatchAll, Value: name} }

// OptionalCatchAll returns an optional catch-all segment bound to name.
func OptionalCatchAll(name string) Segment { return Segment{Kind: KindOptionalCatchAll, Value: name} }

// IsParam reports whether the segment binds a parameter.
func (s Segment) IsParam() bool {
	return s.Kind != KindStatic
}

// String renders the segment in folder naming convention.
func (s Segment) String() string {
	switch s.Kind {
	case KindDynamic:
		return "[" + s.Value + "]"
	case KindCatchAll:
		return "[..." + s.Value + "]"
	case KindOptionalCatchAll:
		return "[[..." + s.Value + "]]"
	default:
		return s.Value
	}
}

// Declaration is a route template as declared by the caller, before
// it has been compiled into a Table.
type Declaration struct {
	// ID identifies the page or handler the template resolves to.
	ID string

	// Segments is the ordered template.
	Segments []Segment

	// Source is where the declaration came from (file path, manifest
	// entry). Informational only.
	Source string
}

// Pattern renders the declaration as a slash-separated pattern
// (e.g. "/blog/[slug]").
func (d Declaration) Pattern() string {
	return FormatPattern(d.Segments)
}

// shapeOf returns the structural key of a template: kinds and literal values,
// ignoring parameter names.
func shapeOf(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteByte('/')
		switch seg.Kind {
		case KindStatic:
			b.WriteString(seg.Value)
		case KindDynamic:
			b.WriteString("[]")
		case KindCatchAll:
			b.WriteString("[...]")
		case KindOptionalCatchAll:
			b.WriteString("[[...]]")
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// Route is a compiled, immutable route template.
type Route struct {
	// ID is the declared identity.
	ID string

	// Pattern is the rendered template (e.g. "/docs/[...slug]").
	Pattern string

	// Source is copied from the declaration.
	Source string

	// Index is the declaration order within the table.
	Index int

	segments []Segment
	params   []paramSlot
}

// paramSlot records where a parameter sits in the template.
type paramSlot struct {
	name     string
	kind     Kind
	position int
}

// Segments returns a copy of the route's segments.
func (r *Route) Segments() []Segment {
	out := make([]Segment, len(r.segments))
	copy(out, r.segments)
	return out
}

// ParamNames returns parameter names in declared order.
func (r *Route) ParamNames() []string {
	names := make([]string, len(r.params))
	for i, p := range r.params {
		names[i] = p.name
	}
	return names
}

// IsCatchAll reports whether the route ends in a catch-all kind segment.
func (r *Route) IsCatchAll() bool {
	return len(r.segments) > 0 && r.segments[len(r.segments)-1].Kind.IsCatchAll()
}

// MatchResult is the outcome of matching a request path.
// The zero value means no match.
type MatchResult struct {
	// Route is the matched route, nil when nothing matched.
	Route *Route

	// Params are the bindings extracted for Route.
	Params Params
}

// Matched reports whether a route was found.
func (m MatchResult) Matched() bool {
	return m.Route != nil
}

// ID returns the matched route ID, or "" when nothing matched.
func (m MatchResult) ID() string {
	if m.Route == nil {
		return ""
	}
	return m.Route.ID
}
