package dev

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/vango-dev/fsroute/internal/errors"
	"github.com/vango-dev/fsroute/pkg/router"
)

// Scanner produces route declarations. *router.Scanner implements it.
type Scanner interface {
	Scan(ctx context.Context) ([]router.Declaration, error)
}

// RebuildRecorder observes rebuild outcomes. *middleware.Metrics
// implements it.
type RebuildRecorder interface {
	RecordRebuild(routes int, err error)
}

// RebuilderOptions configures a Rebuilder.
type RebuilderOptions struct {
	// Scanner discovers declarations on every rebuild.
	Scanner Scanner

	// Live receives each successfully built table.
	Live *router.Live

	// BuildOptions are passed to every build.
	BuildOptions []router.BuildOption

	// Watcher triggers rebuilds in Run. Nil disables watching.
	Watcher *Watcher

	// Reload is notified after every rebuild. Optional.
	Reload *ReloadServer

	// Recorder is told about every rebuild. Optional.
	Recorder RebuildRecorder

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Rebuilder rescans the routes tree and swaps the live table. A failed
// rebuild leaves the previous table serving.
type Rebuilder struct {
	opts     RebuilderOptions
	logger   *slog.Logger
	changeCh chan []Change
	mu       sync.Mutex
	running  bool
	lastErr  error
}

// NewRebuilder creates a Rebuilder.
func NewRebuilder(opts RebuilderOptions) *Rebuilder {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Live == nil {
		opts.Live = router.NewLive(nil)
	}
	return &Rebuilder{
		opts:     opts,
		logger:   logger.With("component", "rebuild"),
		changeCh: make(chan []Change, 16),
	}
}

// Live returns the table holder the rebuilder writes to.
func (r *Rebuilder) Live() *router.Live {
	return r.opts.Live
}

// Rebuild scans, builds and installs a new table.
func (r *Rebuilder) Rebuild(ctx context.Context) (*router.Table, error) {
	start := time.Now()

	table, err := r.rebuild(ctx)
	if r.opts.Recorder != nil {
		routes := 0
		if table != nil {
			routes = table.Len()
		}
		r.opts.Recorder.RecordRebuild(routes, err)
	}

	r.mu.Lock()
	hadErr := r.lastErr != nil
	r.lastErr = err
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("rebuild failed", "error", err)
		if r.opts.Reload != nil {
			r.opts.Reload.NotifyError(Describe(err))
		}
		return nil, err
	}

	r.logger.Info("routes rebuilt",
		"routes", table.Len(),
		"duration", time.Since(start).Round(time.Microsecond),
	)
	if r.opts.Reload != nil {
		if hadErr {
			r.opts.Reload.ClearError()
		}
		r.opts.Reload.NotifyRoutes(table)
	}
	return table, nil
}

func (r *Rebuilder) rebuild(ctx context.Context) (*router.Table, error) {
	decls, err := r.opts.Scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return r.opts.Live.Rebuild(decls, r.opts.BuildOptions...)
}

// LastError returns the error of the most recent rebuild, if any.
func (r *Rebuilder) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Run starts the watcher and rebuilds on every batch of changes until
// ctx is done. Bursts of changes arriving during a rebuild are
// coalesced into a single rebuild.
func (r *Rebuilder) Run(ctx context.Context) error {
	if r.opts.Watcher == nil {
		<-ctx.Done()
		return nil
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	r.opts.Watcher.OnChange(func(changes []Change) {
		select {
		case r.changeCh <- changes:
		default:
		}
	})
	go r.opts.Watcher.Start(ctx)
	defer r.opts.Watcher.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case changes := <-r.changeCh:
			draining := true
			for draining {
				select {
				case next := <-r.changeCh:
					changes = append(changes, next...)
				default:
					draining = false
				}
			}
			for _, c := range changes {
				r.logger.Debug("changed", "path", c.Path, "type", c.Type.String())
			}
			r.Rebuild(ctx)
		}
	}
}

// Describe renders err as plain text, one line per route violation.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	lines := make([]string, 0, 1)
	for _, re := range errors.FromBuild(err) {
		lines = append(lines, re.FormatCompact())
	}
	return strings.Join(lines, "\n")
}
