// Package dispatch serves HTTP requests from a live route table.
//
// Handlers are registered by route ID. The dispatcher canonicalizes and
// decodes the request path, matches it, and hands the request to the
// route's handler with the match in the request context:
//
//	d := dispatch.New(live)
//	d.HandleFunc("/blog/[slug]", func(w http.ResponseWriter, r *http.Request) {
//	    fmt.Fprintf(w, "post %s", dispatch.Param(r, "slug"))
//	})
//	http.ListenAndServe(":3000", d)
package dispatch

import (
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/vango-dev/fsroute/pkg/routepath"
	"github.com/vango-dev/fsroute/pkg/router"
)

// Dispatcher is an http.Handler that routes through a router.Live.
type Dispatcher struct {
	live     *router.Live
	notFound http.Handler
	fallback http.Handler
	logger   *slog.Logger

	mu       sync.RWMutex
	handlers map[string]http.Handler
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithNotFound sets the handler for requests no route matches.
func WithNotFound(h http.Handler) Option {
	return func(d *Dispatcher) {
		d.notFound = h
	}
}

// WithFallback sets the handler for matched routes that have no handler
// registered. The default responds 501 Not Implemented.
func WithFallback(h http.Handler) Option {
	return func(d *Dispatcher) {
		d.fallback = h
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// New creates a dispatcher serving live.
func New(live *router.Live, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		live:     live,
		notFound: http.NotFoundHandler(),
		fallback: http.HandlerFunc(notImplemented),
		logger:   slog.Default().With("component", "dispatch"),
		handlers: make(map[string]http.Handler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func notImplemented(w http.ResponseWriter, r *http.Request) {
	http.Error(w, http.StatusText(http.StatusNotImplemented), http.StatusNotImplemented)
}

// Handle registers h for the route with the given ID. IDs missing from the
// current table are accepted so handlers can be registered before a
// rebuild adds the route.
func (d *Dispatcher) Handle(id string, h http.Handler) {
	if h == nil {
		panic("dispatch: nil handler for " + id)
	}
	if t := d.live.Load(); t != nil {
		if _, ok := t.Lookup(id); !ok {
			d.logger.Warn("handler registered for unknown route", "route", id)
		}
	}

	d.mu.Lock()
	d.handlers[id] = h
	d.mu.Unlock()
}

// HandleFunc registers f for the route with the given ID.
func (d *Dispatcher) HandleFunc(id string, f func(http.ResponseWriter, *http.Request)) {
	d.Handle(id, http.HandlerFunc(f))
}

// Unbound returns the IDs of routes in the current table that have no
// handler, sorted.
func (d *Dispatcher) Unbound() []string {
	t := d.live.Load()
	if t == nil {
		return nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	var ids []string
	for _, route := range t.Routes() {
		if _, ok := d.handlers[route.ID]; !ok {
			ids = append(ids, route.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

// Match resolves a raw request path against the current table.
func (d *Dispatcher) Match(rawPath string) (router.MatchResult, error) {
	components, err := routepath.Parse(rawPath)
	if err != nil {
		return router.MatchResult{}, err
	}
	return d.live.Match(components), nil
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	info := RouteInfoFromContext(r.Context())

	result, err := d.Match(r.URL.EscapedPath())
	if err != nil {
		d.logger.Debug("rejected request path", "path", r.URL.EscapedPath(), "error", err)
		if info != nil {
			info.Rejected = true
		}
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if !result.Matched() {
		d.notFound.ServeHTTP(w, r)
		return
	}
	if info != nil {
		info.ID = result.Route.ID
		info.Pattern = result.Route.Pattern
		info.Matched = true
	}

	d.mu.RLock()
	h, ok := d.handlers[result.Route.ID]
	d.mu.RUnlock()
	if !ok {
		h = d.fallback
	}

	h.ServeHTTP(w, r.WithContext(WithMatch(r.Context(), result)))
}
