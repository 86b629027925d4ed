package router

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Reverse routing errors.
var (
	ErrUnknownRoute = errors.New("unknown route")
	ErrMissingParam = errors.New("missing route parameter")
	ErrInvalidParam = errors.New("invalid route parameter")
)

// Path builds the URL path for the route with the given ID.
// See Route.Expand for the accepted values.
func (t *Table) Path(id string, params map[string]any) (string, error) {
	route, ok := t.Lookup(id)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRoute, id)
	}
	return route.Expand(params)
}

// Expand substitutes params into the route template and returns a URL
// path. Dynamic parameters take a string; catch-all parameters take a
// []string (a string is treated as one component). Components are escaped
// with url.PathEscape. An optional catch-all may be absent or empty.
//
//	/docs/[...slug] + {"slug": []string{"a", "b"}} → /docs/a/b
func (r *Route) Expand(params map[string]any) (string, error) {
	var b strings.Builder
	for _, seg := range r.segments {
		if seg.Kind == KindStatic {
			b.WriteByte('/')
			b.WriteString(url.PathEscape(seg.Value))
			continue
		}

		raw, ok := params[seg.Value]
		if !ok {
			if seg.Kind == KindOptionalCatchAll {
				continue
			}
			return "", fmt.Errorf("%w: %q in %s", ErrMissingParam, seg.Value, r.Pattern)
		}

		parts, err := paramParts(seg, raw)
		if err != nil {
			return "", fmt.Errorf("%s in %s: %w", seg.Value, r.Pattern, err)
		}
		if len(parts) == 0 && seg.Kind != KindOptionalCatchAll {
			return "", fmt.Errorf("%w: %q in %s", ErrMissingParam, seg.Value, r.Pattern)
		}
		for _, part := range parts {
			if part == "" {
				return "", fmt.Errorf("%w: empty component for %q", ErrInvalidParam, seg.Value)
			}
			b.WriteByte('/')
			b.WriteString(url.PathEscape(part))
		}
	}

	if b.Len() == 0 {
		return "/", nil
	}
	return b.String(), nil
}

// paramParts normalizes a parameter value into components.
func paramParts(seg Segment, raw any) ([]string, error) {
	switch v := raw.(type) {
	case string:
		return []string{v}, nil
	case []string:
		if seg.Kind == KindDynamic {
			if len(v) != 1 {
				return nil, fmt.Errorf("%w: dynamic segment needs exactly one value", ErrInvalidParam)
			}
		}
		return v, nil
	case fmt.Stringer:
		return []string{v.String()}, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return []string{fmt.Sprint(v)}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidParam, raw)
	}
}
