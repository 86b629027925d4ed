package router

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidSegment is returned for folder names that use the bracket
// convention incorrectly.
var ErrInvalidSegment = errors.New("invalid route segment")

var (
	dynamicSegmentRe          = regexp.MustCompile(`^\[([^\[\]./]+)\]$`)
	catchAllSegmentRe         = regexp.MustCompile(`^\[\.\.\.([^\[\]./]+)\]$`)
	optionalCatchAllSegmentRe = regexp.MustCompile(`^\[\[\.\.\.([^\[\]./]+)\]\]$`)
)

// ParseSegment converts one folder name into a segment:
//
//	about          → static "about"
//	[slug]         → dynamic "slug"
//	[...slug]      → catch-all "slug"
//	[[...slug]]    → optional catch-all "slug"
//
// Route groups such as "(marketing)" are not segments; use IsRouteGroup
// to filter them before calling ParseSegment.
func ParseSegment(name string) (Segment, error) {
	if m := optionalCatchAllSegmentRe.FindStringSubmatch(name); m != nil {
		return OptionalCatchAll(m[1]), nil
	}
	if m := catchAllSegmentRe.FindStringSubmatch(name); m != nil {
		return CatchAll(m[1]), nil
	}
	if m := dynamicSegmentRe.FindStringSubmatch(name); m != nil {
		return Dynamic(m[1]), nil
	}
	if strings.ContainsAny(name, "[]") {
		return Segment{}, fmt.Errorf("%w: %q", ErrInvalidSegment, name)
	}
	if name == "" {
		return Segment{}, fmt.Errorf("%w: empty name", ErrInvalidSegment)
	}
	return Static(name), nil
}

// IsRouteGroup reports whether a folder name is a route group, which
// organizes files without contributing a URL segment.
func IsRouteGroup(name string) bool {
	return len(name) > 2 && strings.HasPrefix(name, "(") && strings.HasSuffix(name, ")")
}

// ParsePattern parses a slash-separated pattern such as
// "/products/[productId]/reviews/[reviewId]". Leading, trailing and
// repeated slashes are ignored and route groups are dropped, so "/" and ""
// both yield an empty template.
func ParsePattern(pattern string) ([]Segment, error) {
	var segments []Segment
	for _, part := range strings.Split(pattern, "/") {
		if part == "" || IsRouteGroup(part) {
			continue
		}
		seg, err := ParseSegment(part)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// MustParsePattern is like ParsePattern but panics on error.
func MustParsePattern(pattern string) []Segment {
	segments, err := ParsePattern(pattern)
	if err != nil {
		panic(err)
	}
	return segments
}

// Declare builds a Declaration from an ID and a pattern.
func Declare(id, pattern string) (Declaration, error) {
	segments, err := ParsePattern(pattern)
	if err != nil {
		return Declaration{}, err
	}
	return Declaration{ID: id, Segments: segments}, nil
}

// FormatPattern renders segments back into a slash-separated pattern.
func FormatPattern(segments []Segment) string {
	if len(segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, seg := range segments {
		b.WriteByte('/')
		b.WriteString(seg.String())
	}
	return b.String()
}
