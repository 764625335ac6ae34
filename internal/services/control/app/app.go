// Package app assembles the control server: engine, audit store, and
// WebSocket service.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/louisbranch/sceneforge/internal/engine/headless"
	"github.com/louisbranch/sceneforge/internal/services/control/service"
	"github.com/louisbranch/sceneforge/internal/services/control/storage"
	"github.com/louisbranch/sceneforge/internal/services/control/storage/memory"
	"github.com/louisbranch/sceneforge/internal/services/control/storage/sqlite"
)

// Options configures the assembled server.
type Options struct {
	// Addr is the WebSocket listen address.
	Addr string

	// DBPath selects the SQLite audit store. Empty keeps audit records
	// in memory.
	DBPath string

	// RenderDir is where the headless engine writes render output.
	RenderDir string

	// AllowedIPs and JWTSecret mirror service.Options.
	AllowedIPs []string
	JWTSecret  string

	// Version is reported by get_server_status.
	Version string
}

// Run assembles and runs the control server until ctx is canceled.
func Run(ctx context.Context, opts Options) error {
	eng, err := headless.New(headless.WithRenderDir(opts.RenderDir))
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	var store storage.Store
	if opts.DBPath != "" {
		sqlStore, err := sqlite.Open(opts.DBPath)
		if err != nil {
			return fmt.Errorf("open audit store: %w", err)
		}
		store = sqlStore
		log.Printf("audit store: sqlite %s", opts.DBPath)
	} else {
		store = memory.New()
		log.Printf("audit store: in-memory")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close audit store: %v", err)
		}
	}()

	srv := service.New(eng, store, service.Options{
		Addr:       opts.Addr,
		AllowedIPs: opts.AllowedIPs,
		JWTSecret:  opts.JWTSecret,
		Version:    opts.Version,
	})
	return srv.Run(ctx)
}
