// Package middleware provides observability middleware for route tables
// served by package dispatch.
//
// Both middlewares plant a dispatch.RouteInfo in the request context, so
// they must wrap the dispatcher (directly or through a chi router). After
// the dispatcher runs they know the matched route ID and label their
// output with it instead of the raw path.
//
// # Prometheus Metrics
//
//	r := chi.NewRouter()
//	r.Use(middleware.Prometheus())
//	r.Handle("/metrics", promhttp.Handler())
//	r.Handle("/*", dispatcher)
//
// Collected:
//   - fsroute_requests_total{route,status}
//   - fsroute_request_duration_seconds{route}
//   - fsroute_route_misses_total
//   - fsroute_table_rebuilds_total{result} and fsroute_routes, via
//     Metrics.RecordRebuild
//
// # OpenTelemetry
//
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithTracerName("my-app"),
//	))
//
// Spans are named "fsroute <route id>" and carry fsroute.route,
// fsroute.pattern, fsroute.path and http.status_code. Incoming W3C trace
// context is honored when a propagator is configured.
package middleware
