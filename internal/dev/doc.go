// Package dev keeps a served route table in step with the routes
// directory.
//
// This package implements:
//   - Polling of the routes tree for added, modified and removed files
//   - Rescanning and rebuilding the table on change
//   - WebSocket notification of route table updates
//
// # Architecture
//
//   - Watcher: polls the file system and reports batches of changes
//   - Rebuilder: rescans, builds, and swaps the router.Live table
//   - ReloadServer: pushes the new table (or the build error) to clients
//
// A failed rebuild never replaces the live table; requests keep matching
// against the last good one.
//
// # Usage
//
//	live := router.NewLive(nil)
//	rb := dev.NewRebuilder(dev.RebuilderOptions{
//	    Scanner: router.NewScanner(cfg.RoutesPath()),
//	    Live:    live,
//	    Watcher: dev.NewProjectWatcher(cfg),
//	    Reload:  reload,
//	})
//	if _, err := rb.Rebuild(ctx); err != nil {
//	    return err
//	}
//	go rb.Run(ctx)
//
// # Reload Protocol
//
// Clients connect to /_fsroute/reload via WebSocket and receive the
// current table on connect. Messages are JSON-encoded:
//
//	{"type": "routes", "routes": [{"id": "...", "pattern": "..."}]}
//	{"type": "error", "error": "..."}   // rebuild failed, old table kept
//	{"type": "clear"}                   // a later rebuild succeeded
package dev
