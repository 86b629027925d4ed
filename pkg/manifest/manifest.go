// Package manifest persists a scanned route set so it can be built into a
// table without walking the routes directory.
//
// A manifest is a small JSON document:
//
//	{
//	  "version": 1,
//	  "routes": [
//	    {"id": "/blog/[slug]", "pattern": "/blog/[slug]", "source": "app/routes/blog/[slug]/page.go"}
//	  ]
//	}
//
// Stores read and write manifests to a local file or an S3 object.
package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vango-dev/fsroute/pkg/router"
)

// Version is the manifest format written by this package.
const Version = 1

// ErrUnsupportedVersion is returned when decoding a manifest written by a
// newer format.
var ErrUnsupportedVersion = errors.New("unsupported manifest version")

// Manifest is a serializable route set.
type Manifest struct {
	Version int     `json:"version"`
	Routes  []Entry `json:"routes"`
}

// Entry is one declared route.
type Entry struct {
	ID      string `json:"id"`
	Pattern string `json:"pattern"`
	Source  string `json:"source,omitempty"`
}

// Store loads and saves manifests.
type Store interface {
	Load(ctx context.Context) (*Manifest, error)
	Save(ctx context.Context, m *Manifest) error
}

// FromDeclarations creates a manifest listing decls in order.
func FromDeclarations(decls []router.Declaration) *Manifest {
	m := &Manifest{Version: Version, Routes: make([]Entry, 0, len(decls))}
	for _, d := range decls {
		m.Routes = append(m.Routes, Entry{ID: d.ID, Pattern: d.Pattern(), Source: d.Source})
	}
	return m
}

// FromTable creates a manifest listing t's routes in precedence order.
func FromTable(t *router.Table) *Manifest {
	routes := t.SortedRoutes()
	m := &Manifest{Version: Version, Routes: make([]Entry, 0, len(routes))}
	for _, r := range routes {
		m.Routes = append(m.Routes, Entry{ID: r.ID, Pattern: r.Pattern, Source: r.Source})
	}
	return m
}

// Declarations parses every entry back into a declaration.
func (m *Manifest) Declarations() ([]router.Declaration, error) {
	decls := make([]router.Declaration, 0, len(m.Routes))
	for i, e := range m.Routes {
		d, err := router.Declare(e.ID, e.Pattern)
		if err != nil {
			return nil, fmt.Errorf("manifest entry %d: %w", i, err)
		}
		d.Source = e.Source
		decls = append(decls, d)
	}
	return decls, nil
}

// Build parses the manifest and compiles it into a table.
func (m *Manifest) Build(opts ...router.BuildOption) (*router.Table, error) {
	decls, err := m.Declarations()
	if err != nil {
		return nil, err
	}
	return router.Build(decls, opts...)
}

// Decode reads a manifest from r.
func Decode(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	if m.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, m.Version)
	}
	if m.Version == 0 {
		m.Version = Version
	}
	return &m, nil
}

// Encode writes m to w as indented JSON.
func Encode(w io.Writer, m *Manifest) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(m)
}

// Open returns the store for location: an S3Store for
// "s3://bucket/key", a FileStore otherwise.
func Open(ctx context.Context, location string) (Store, error) {
	if rest, ok := strings.CutPrefix(location, "s3://"); ok {
		bucket, key, ok := strings.Cut(rest, "/")
		if !ok || bucket == "" || key == "" {
			return nil, fmt.Errorf("invalid S3 location %q: want s3://bucket/key", location)
		}
		client, err := NewS3Client(ctx, "")
		if err != nil {
			return nil, err
		}
		return NewS3Store(client, bucket, key), nil
	}
	if location == "" {
		return nil, errors.New("manifest location is empty")
	}
	return NewFileStore(location), nil
}
