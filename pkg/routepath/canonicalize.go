// Package routepath normalizes request paths and splits them into the
// component sequences the route matcher consumes.
package routepath

import (
	"errors"
	"strings"
)

// CanonicalizeResult contains the result of path canonicalization.
type CanonicalizeResult struct {
	// Path is the canonical path (without query string).
	Path string

	// Query is the query string (without leading "?").
	Query string

	// Changed reports whether canonicalization modified the path.
	Changed bool
}

// Path errors.
var (
	ErrInvalidPath           = errors.New("invalid path")
	ErrBackslashInPath       = errors.New("path contains backslash")
	ErrNullByteInPath        = errors.New("path contains null byte")
	ErrInvalidPercentEscape  = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot       = errors.New("path escapes root via ..")
	ErrEncodedSlashInSegment = errors.New("encoded slash (%2F) in path component")
)

// CanonicalizePath normalizes a request path:
//   - a missing leading slash is added
//   - repeated slashes collapse (/blog//post → /blog/post)
//   - "." components are dropped and ".." pops the previous component
//   - the trailing slash is removed (except for "/")
//
// Backslashes, NUL bytes (literal or %00), malformed percent escapes and
// ".." above root are rejected. A query string is split off and returned
// untouched.
func CanonicalizePath(input string) (CanonicalizeResult, error) {
	if input == "" {
		return CanonicalizeResult{Path: "/", Changed: true}, nil
	}

	path, query := SplitPathAndQuery(input)

	if strings.Contains(path, "\\") {
		return CanonicalizeResult{}, ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return CanonicalizeResult{}, ErrNullByteInPath
	}
	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return CanonicalizeResult{}, err
		}
	}

	var stack []string
	for _, comp := range Components(path) {
		switch comp {
		case ".":
		case "..":
			if len(stack) == 0 {
				return CanonicalizeResult{}, ErrPathEscapesRoot
			}
			stack = stack[:len(stack)-1]
		default:
			stack = append(stack, comp)
		}
	}

	canonical := "/" + strings.Join(stack, "/")
	return CanonicalizeResult{
		Path:    canonical,
		Query:   query,
		Changed: canonical != path,
	}, nil
}

// validatePercentEscapes checks that every "%" starts a %XX hex escape.
func validatePercentEscapes(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// SplitPathAndQuery splits input at the first "?".
// The query is returned without the leading "?".
func SplitPathAndQuery(input string) (path, query string) {
	path, query, _ = strings.Cut(input, "?")
	return path, query
}
