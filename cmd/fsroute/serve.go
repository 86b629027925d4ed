package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroute/internal/dev"
	"github.com/vango-dev/fsroute/internal/errors"
	"github.com/vango-dev/fsroute/pkg/dispatch"
	"github.com/vango-dev/fsroute/pkg/manifest"
	"github.com/vango-dev/fsroute/pkg/middleware"
	"github.com/vango-dev/fsroute/pkg/router"
)

const (
	routesEndpoint = "/_fsroute/routes"
	reloadEndpoint = "/_fsroute/reload"
)

func serveCmd(c *cli) *cobra.Command {
	var (
		src   source
		port  int
		host  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the route table over HTTP",
		Long: `Start an HTTP server that resolves every request against the route
table and answers with the matched route and its parameters as JSON.

Endpoints:
  /*                  matched route as JSON, 404 on a miss, 400 on a bad path
  /metrics            Prometheus metrics (path from fsroute.json)
  /_fsroute/routes    the live table as a manifest
  /_fsroute/reload    WebSocket stream of table updates

With --watch the routes directory is polled and the table is rebuilt on
change. A rebuild that fails validation keeps the previous table.

Examples:
  fsroute serve
  fsroute serve --port=8080 --watch
  fsroute serve --manifest=s3://my-bucket/routes.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if src.dir != "" {
				dir, err := filepath.Abs(src.dir)
				if err != nil {
					return err
				}
				c.cfg.Routes = dir
			}
			if port > 0 {
				c.cfg.Server.Port = port
			}
			if host != "" {
				c.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("watch") {
				c.cfg.Server.Watch = watch
			}
			if c.cfg.Server.Watch && src.manifest != "" {
				c.warn("--watch has no effect when serving a manifest")
				c.cfg.Server.Watch = false
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := c.newServer(ctx, src)
			if err != nil {
				return err
			}
			return srv.run(ctx)
		},
	}

	src.register(cmd)
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from fsroute.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from fsroute.json)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Rebuild the table when the routes directory changes")

	return cmd
}

// server is a running fsroute serve instance.
type server struct {
	c          *cli
	handler    http.Handler
	rebuilder  *dev.Rebuilder
	reload     *dev.ReloadServer
	dispatcher *dispatch.Dispatcher
	registry   *prometheus.Registry
	shutdown   func(context.Context) error
}

// manifestScanner serves declarations from a stored manifest.
type manifestScanner struct {
	c        *cli
	location string
}

func (s manifestScanner) Scan(ctx context.Context) ([]router.Declaration, error) {
	return s.c.declarations(ctx, source{manifest: s.location})
}

// dirScanner scans the configured routes directory.
type dirScanner struct {
	c *cli
}

func (s dirScanner) Scan(ctx context.Context) ([]router.Declaration, error) {
	return s.c.declarations(ctx, source{})
}

// newServer builds the table and the handler stack without listening.
func (c *cli) newServer(ctx context.Context, src source) (*server, error) {
	cfg := c.cfg
	logger := c.logger

	live := router.NewLive(nil)
	s := &server{c: c, registry: prometheus.NewRegistry()}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var metrics *middleware.Metrics
	if !cfg.Metrics.Disabled {
		metrics = middleware.NewMetrics(
			middleware.WithNamespace(cfg.Metrics.Namespace),
			middleware.WithRegistry(s.registry),
		)
	}

	tp, shutdown, err := newTracing(cfg.Tracing, c.errOut)
	if err != nil {
		return nil, errors.New("R050").Wrap(err)
	}
	s.shutdown = shutdown

	s.reload = dev.NewReloadServer(logger, func() dev.ReloadMessage {
		return dev.RoutesMessage(live.Load())
	})

	var scanner dev.Scanner = dirScanner{c: c}
	if src.manifest != "" {
		scanner = manifestScanner{c: c, location: src.manifest}
	}

	opts := dev.RebuilderOptions{
		Scanner:      scanner,
		Live:         live,
		BuildOptions: cfg.BuildOptions(),
		Reload:       s.reload,
		Logger:       logger,
	}
	if metrics != nil {
		opts.Recorder = metrics
	}
	if cfg.Server.Watch {
		opts.Watcher = dev.NewProjectWatcher(cfg)
	}
	s.rebuilder = dev.NewRebuilder(opts)

	if _, err := s.rebuilder.Rebuild(ctx); err != nil {
		if serr := shutdown(ctx); serr != nil {
			logger.Warn("tracer shutdown failed", "error", serr)
		}
		return nil, err
	}

	s.dispatcher = dispatch.New(live,
		dispatch.WithLogger(logger.With("component", "dispatch")),
		dispatch.WithFallback(http.HandlerFunc(s.echoMatch)),
	)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	if metrics != nil {
		r.Handle(cfg.Metrics.Path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	r.Get(routesEndpoint, func(w http.ResponseWriter, r *http.Request) {
		table := live.Load()
		if table == nil {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := manifest.Encode(w, manifest.FromTable(table)); err != nil {
			logger.Warn("writing routes response failed", "error", err)
		}
	})
	r.Get(reloadEndpoint, s.reload.HandleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.OpenTelemetry(
			middleware.WithTracerProvider(tp),
			middleware.WithTracerName(cfg.Tracing.TracerName),
		))
		if metrics != nil {
			r.Use(metrics.Middleware)
		}
		r.Handle("/*", s.dispatcher)
	})

	s.handler = r
	return s, nil
}

// run listens until ctx is done, then drains connections.
func (s *server) run(ctx context.Context) error {
	cfg := s.c.cfg

	if cfg.Server.Watch {
		go s.rebuilder.Run(ctx)
	}

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	s.c.success("Serving %d routes at %s", s.rebuilder.Live().Load().Len(), cfg.URL())
	if cfg.Server.Watch {
		s.c.info("Watching %s", cfg.RoutesPath())
	}

	select {
	case <-ctx.Done():
		s.c.info("Shutting down...")
	case err := <-errCh:
		if err != nil {
			s.close(context.Background())
			return errors.New("R050").Wrap(err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := httpServer.Shutdown(shutdownCtx)
	s.close(shutdownCtx)
	return err
}

func (s *server) close(ctx context.Context) {
	s.reload.Close()
	if err := s.shutdown(ctx); err != nil {
		s.c.logger.Warn("tracer shutdown failed", "error", err)
	}
}

// echoMatch answers with the matched route and its bindings.
func (s *server) echoMatch(w http.ResponseWriter, r *http.Request) {
	result, _ := dispatch.FromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	err := enc.Encode(matchOutput{
		ID:      result.ID(),
		Pattern: result.Route.Pattern,
		Params:  result.Params.Map(),
	})
	if err != nil {
		s.c.logger.Warn("writing match response failed", "route", result.ID(), "error", err)
	}
}
