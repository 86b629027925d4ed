package dispatch

import (
	"context"
	"net/http"

	"github.com/vango-dev/fsroute/pkg/router"
)

type contextKey int

const (
	matchKey contextKey = iota
	routeInfoKey
)

// WithMatch returns a copy of ctx carrying result.
func WithMatch(ctx context.Context, result router.MatchResult) context.Context {
	return context.WithValue(ctx, matchKey, result)
}

// FromContext returns the match stored by the dispatcher.
func FromContext(ctx context.Context) (router.MatchResult, bool) {
	result, ok := ctx.Value(matchKey).(router.MatchResult)
	return result, ok
}

// Params returns the parameter bindings of the request's matched route,
// or nil outside a dispatched handler.
func Params(r *http.Request) router.Params {
	result, _ := FromContext(r.Context())
	return result.Params
}

// Param returns a single binding as a string. Catch-all values are joined
// with "/".
func Param(r *http.Request, name string) string {
	v, _ := Params(r).Get(name)
	return v
}

// RouteInfo lets middleware wrapping the dispatcher learn which route
// served a request. The dispatcher fills it before calling the handler.
type RouteInfo struct {
	// ID is the matched route's ID; empty on a miss.
	ID string

	// Pattern is the matched route's template.
	Pattern string

	// Matched reports whether any route matched.
	Matched bool

	// Rejected reports that the request path was invalid and never
	// reached the table.
	Rejected bool
}

// WithRouteInfo plants an empty RouteInfo in ctx and returns it.
//
//	ctx, info := dispatch.WithRouteInfo(r.Context())
//	next.ServeHTTP(w, r.WithContext(ctx))
//	log.Println(info.ID)
func WithRouteInfo(ctx context.Context) (context.Context, *RouteInfo) {
	if info := RouteInfoFromContext(ctx); info != nil {
		return ctx, info
	}
	info := &RouteInfo{}
	return context.WithValue(ctx, routeInfoKey, info), info
}

// RouteInfoFromContext returns the RouteInfo planted by WithRouteInfo.
func RouteInfoFromContext(ctx context.Context) *RouteInfo {
	info, _ := ctx.Value(routeInfoKey).(*RouteInfo)
	return info
}

// Label returns a bounded label for metrics and span names: the route ID,
// "rejected" for an invalid path, or "unmatched".
func (i *RouteInfo) Label() string {
	switch {
	case i == nil:
		return "unmatched"
	case i.Rejected:
		return "rejected"
	case !i.Matched:
		return "unmatched"
	}
	return i.ID
}

// Missed reports whether a valid path matched no route.
func (i *RouteInfo) Missed() bool {
	return i != nil && !i.Matched && !i.Rejected
}
