package routepath

import (
	"net/url"
	"strings"
)

// Components splits path on "/" and drops empty components, so leading,
// trailing and repeated slashes are ignored. The root path yields nil.
func Components(path string) []string {
	if path == "" {
		return nil
	}

	n := 1
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			n++
		}
	}

	var out []string
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '/' {
			if i > start {
				if out == nil {
					out = make([]string, 0, n)
				}
				out = append(out, path[start:i])
			}
			start = i + 1
		}
	}
	return out
}

// DecodeComponents returns a percent-decoded copy of components.
// A component that decodes to something containing "/" is rejected, since
// it would otherwise be matched as a single component. So is one that
// decodes to "." or "..": dot segments are resolved before decoding.
func DecodeComponents(components []string) ([]string, error) {
	if len(components) == 0 {
		return nil, nil
	}
	out := make([]string, len(components))
	for i, comp := range components {
		if !strings.Contains(comp, "%") {
			out[i] = comp
			continue
		}
		decoded, err := url.PathUnescape(comp)
		if err != nil {
			return nil, ErrInvalidPercentEscape
		}
		if strings.Contains(decoded, "/") {
			return nil, ErrEncodedSlashInSegment
		}
		if decoded == "." || decoded == ".." {
			return nil, ErrInvalidPath
		}
		out[i] = decoded
	}
	return out, nil
}

// Parse canonicalizes a raw request path (query ignored) and returns its
// decoded components.
func Parse(raw string) ([]string, error) {
	result, err := CanonicalizePath(raw)
	if err != nil {
		return nil, err
	}
	return DecodeComponents(Components(result.Path))
}
