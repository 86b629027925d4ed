package router

import "github.com/vango-dev/fsroute/pkg/routepath"

// CanonicalizeResult contains the result of path canonicalization.
type CanonicalizeResult = routepath.CanonicalizeResult

// Path canonicalization errors.
var (
	ErrInvalidPath          = routepath.ErrInvalidPath
	ErrBackslashInPath      = routepath.ErrBackslashInPath
	ErrNullByteInPath       = routepath.ErrNullByteInPath
	ErrInvalidPercentEscape = routepath.ErrInvalidPercentEscape
	ErrPathEscapesRoot      = routepath.ErrPathEscapesRoot
	ErrEncodedSlash         = routepath.ErrEncodedSlashInSegment
)

// CanonicalizePath normalizes a URL path before matching.
func CanonicalizePath(input string) (CanonicalizeResult, error) {
	return routepath.CanonicalizePath(input)
}

// SplitComponents splits a path into non-empty components.
func SplitComponents(path string) []string {
	return routepath.Components(path)
}

// MatchRequestPath canonicalizes and percent-decodes a raw request path,
// then matches it against t.
func (t *Table) MatchRequestPath(raw string) (MatchResult, error) {
	components, err := routepath.Parse(raw)
	if err != nil {
		return MatchResult{}, err
	}
	return t.Match(components), nil
}
