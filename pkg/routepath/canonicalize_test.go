package routepath

import (
	"reflect"
	"testing"
)

func TestCanonicalizePath(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantPath    string
		wantQuery   string
		wantChanged bool
		wantErr     error
	}{
		{
			name:        "root",
			input:       "/",
			wantPath:    "/",
			wantChanged: false,
		},
		{
			name:        "empty string",
			input:       "",
			wantPath:    "/",
			wantChanged: true,
		},
		{
			name:        "no leading slash",
			input:       "about",
			wantPath:    "/about",
			wantChanged: true,
		},
		{
			name:        "collapse slashes",
			input:       "/blog//post",
			wantPath:    "/blog/post",
			wantChanged: true,
		},
		{
			name:        "single dot",
			input:       "/blog/./post",
			wantPath:    "/blog/post",
			wantChanged: true,
		},
		{
			name:        "double dot",
			input:       "/blog/posts/../other",
			wantPath:    "/blog/other",
			wantChanged: true,
		},
		{
			name:        "double dot to root",
			input:       "/blog/../",
			wantPath:    "/",
			wantChanged: true,
		},
		{
			name:        "query preserved",
			input:       "/projects/123?tab=details",
			wantPath:    "/projects/123",
			wantQuery:   "tab=details",
			wantChanged: false,
		},
		{
			name:        "normalized path with query",
			input:       "/projects/123/?tab=details",
			wantPath:    "/projects/123",
			wantQuery:   "tab=details",
			wantChanged: true,
		},
		{
			name:        "query percent escapes not validated",
			input:       "/projects?bad=%GG",
			wantPath:    "/projects",
			wantQuery:   "bad=%GG",
			wantChanged: false,
		},
		{
			name:        "valid percent escapes",
			input:       "/path/%2Fok",
			wantPath:    "/path/%2Fok",
			wantChanged: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := CanonicalizePath(tc.input)
			if tc.wantErr != nil {
				if err != tc.wantErr {
					t.Errorf("CanonicalizePath(%q) error = %v, want %v", tc.input, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("CanonicalizePath(%q) unexpected error = %v", tc.input, err)
				return
			}
			if result.Path != tc.wantPath {
				t.Errorf("CanonicalizePath(%q).Path = %q, want %q", tc.input, result.Path, tc.wantPath)
			}
			if result.Query != tc.wantQuery {
				t.Errorf("CanonicalizePath(%q).Query = %q, want %q", tc.input, result.Query, tc.wantQuery)
			}
			if result.Changed != tc.wantChanged {
				t.Errorf("CanonicalizePath(%q).Changed = %v, want %v", tc.input, result.Changed, tc.wantChanged)
			}
		})
	}
}

func TestCanonicalizePathErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "backslash",
			input:   "/path\\with\\backslash",
			wantErr: ErrBackslashInPath,
		},
		{
			name:    "null byte literal",
			input:   "/path/\x00/null",
			wantErr: ErrNullByteInPath,
		},
		{
			name:    "null byte encoded",
			input:   "/path/%00/null",
			wantErr: ErrNullByteInPath,
		},
		{
			name:    "invalid percent escape incomplete",
			input:   "/path/%2",
			wantErr: ErrInvalidPercentEscape,
		},
		{
			name:    "invalid percent escape bad chars",
			input:   "/path/%GG",
			wantErr: ErrInvalidPercentEscape,
		},
		{
			name:    "invalid percent literal",
			input:   "/path/100%",
			wantErr: ErrInvalidPercentEscape,
		},
		{
			name:    "escape root",
			input:   "/../secret",
			wantErr: ErrPathEscapesRoot,
		},
		{
			name:    "deep escape root",
			input:   "/a/../../secret",
			wantErr: ErrPathEscapesRoot,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CanonicalizePath(tc.input)
			if err != tc.wantErr {
				t.Errorf("CanonicalizePath(%q) error = %v, want %v", tc.input, err, tc.wantErr)
			}
		})
	}
}

func TestComponents(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"", nil},
		{"/", nil},
		{"//", nil},
		{"dashboard", []string{"dashboard"}},
		{"/dashboard/settings", []string{"dashboard", "settings"}},
		{"/dashboard/settings/", []string{"dashboard", "settings"}},
		{"docs//feature1///concept1", []string{"docs", "feature1", "concept1"}},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			got := Components(tc.path)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Components(%q) = %#v, want %#v", tc.path, got, tc.want)
			}
		})
	}
}

func TestDecodeComponents(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []string
		wantErr error
	}{
		{
			name: "plain",
			in:   []string{"a", "b"},
			want: []string{"a", "b"},
		},
		{
			name: "empty",
			in:   nil,
			want: nil,
		},
		{
			name: "encoded space",
			in:   []string{"hello%20world", "test"},
			want: []string{"hello world", "test"},
		},
		{
			name:    "encoded slash",
			in:      []string{"a%2Fb"},
			wantErr: ErrEncodedSlashInSegment,
		},
		{
			name:    "invalid escape",
			in:      []string{"%GG"},
			wantErr: ErrInvalidPercentEscape,
		},
		{
			name:    "encoded dot",
			in:      []string{"blog", "%2e"},
			wantErr: ErrInvalidPath,
		},
		{
			name:    "encoded dot dot",
			in:      []string{"%2E%2e"},
			wantErr: ErrInvalidPath,
		},
		{
			name: "encoded dots inside a name",
			in:   []string{"a%2E%2Eb"},
			want: []string{"a..b"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeComponents(tc.in)
			if err != tc.wantErr {
				t.Fatalf("DecodeComponents(%q) error = %v, want %v", tc.in, err, tc.wantErr)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("DecodeComponents(%q) = %#v, want %#v", tc.in, got, tc.want)
			}
		})
	}
}

func TestDecodeComponentsDoesNotMutateInput(t *testing.T) {
	in := []string{"caf%C3%A9"}
	got, err := DecodeComponents(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != "café" {
		t.Errorf("decoded = %q, want %q", got[0], "café")
	}
	if in[0] != "caf%C3%A9" {
		t.Errorf("input mutated to %q", in[0])
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		raw     string
		want    []string
		wantErr error
	}{
		{raw: "/", want: nil},
		{raw: "/blog/hello%20world?x=1", want: []string{"blog", "hello world"}},
		{raw: "/docs/./a/../b/", want: []string{"docs", "b"}},
		{raw: "/../etc", wantErr: ErrPathEscapesRoot},
		{raw: "/files/a%2Fb", wantErr: ErrEncodedSlashInSegment},
		{raw: "/blog/%2e%2e", wantErr: ErrInvalidPath},
		{raw: "/blog/.%2e/x", wantErr: ErrInvalidPath},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := Parse(tc.raw)
			if err != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, want %v", tc.raw, err, tc.wantErr)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Parse(%q) = %#v, want %#v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestSplitPathAndQuery(t *testing.T) {
	tests := []struct {
		input     string
		wantPath  string
		wantQuery string
	}{
		{"/path?query=value", "/path", "query=value"},
		{"/path", "/path", ""},
		{"/path?", "/path", ""},
		{"/path?a=1&b=2", "/path", "a=1&b=2"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			gotPath, gotQuery := SplitPathAndQuery(tc.input)
			if gotPath != tc.wantPath || gotQuery != tc.wantQuery {
				t.Errorf("SplitPathAndQuery(%q) = (%q, %q), want (%q, %q)",
					tc.input, gotPath, gotQuery, tc.wantPath, tc.wantQuery)
			}
		})
	}
}
