package router

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

// ErrMultiplePageFiles is returned when one directory holds more than one
// page file.
var ErrMultiplePageFiles = errors.New("multiple page files in one directory")

// DefaultPageFiles are the file names that mark a directory as a route.
var DefaultPageFiles = []string{"page.go", "index.go"}

// Scanner discovers route declarations from a directory tree:
//
//	app/routes/
//	├── page.go                          → /
//	├── dashboard/
//	│   ├── page.go                      → /dashboard
//	│   └── settings/page.go             → /dashboard/settings
//	├── blog/[slug]/page.go              → /blog/[slug]
//	├── docs/[[...slug]]/page.go         → /docs/[[...slug]]
//	├── (marketing)/pricing/page.go      → /pricing
//	└── _components/                     (private, skipped)
type Scanner struct {
	fsys      fs.FS
	root      string
	pageFiles map[string]bool
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithPageFiles replaces the file names that mark a route directory.
func WithPageFiles(names ...string) ScannerOption {
	return func(s *Scanner) {
		s.pageFiles = make(map[string]bool, len(names))
		for _, n := range names {
			s.pageFiles[n] = true
		}
	}
}

// NewScanner creates a scanner over the directory rootDir.
func NewScanner(rootDir string, opts ...ScannerOption) *Scanner {
	return NewFSScanner(os.DirFS(rootDir), rootDir, opts...)
}

// NewFSScanner creates a scanner over fsys. root is only used to build
// each declaration's Source.
func NewFSScanner(fsys fs.FS, root string, opts ...ScannerOption) *Scanner {
	s := &Scanner{fsys: fsys, root: root}
	WithPageFiles(DefaultPageFiles...)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks the tree and returns one declaration per page file, sorted
// by ID. Declarations are not validated; pass them to Build.
func (s *Scanner) Scan(ctx context.Context) ([]Declaration, error) {
	var decls []Declaration
	pages := make(map[string]string)

	err := fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if p != "." && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return fs.SkipDir
			}
			return nil
		}

		if strings.HasSuffix(name, "_test.go") || !s.pageFiles[name] {
			return nil
		}

		dir := path.Dir(p)
		if first, ok := pages[dir]; ok {
			return fmt.Errorf("%w: %s has both %s and %s",
				ErrMultiplePageFiles, path.Join(strings.ReplaceAll(s.root, "\\", "/"), dir), first, name)
		}
		pages[dir] = name

		decl, err := s.declare(dir)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", p, err)
		}
		decl.Source = path.Join(strings.ReplaceAll(s.root, "\\", "/"), p)
		decls = append(decls, decl)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(decls, func(i, j int) bool {
		return decls[i].ID < decls[j].ID
	})
	return decls, nil
}

// declare converts a slash-separated directory into a declaration.
func (s *Scanner) declare(dir string) (Declaration, error) {
	if dir == "." {
		return Declaration{ID: "/"}, nil
	}

	var segments []Segment
	for _, part := range strings.Split(dir, "/") {
		if IsRouteGroup(part) {
			continue
		}
		seg, err := ParseSegment(part)
		if err != nil {
			return Declaration{}, err
		}
		segments = append(segments, seg)
	}
	return Declaration{ID: "/" + dir, Segments: segments}, nil
}
