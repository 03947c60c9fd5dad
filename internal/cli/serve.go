package cli

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/runnerr0/lookback/internal/config"
	"github.com/runnerr0/lookback/internal/server"
)

// Execute implements the go-flags Commander interface for ServeCommand.
func (c *ServeCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	c.applyOverrides(cfg)

	dbPath, err := databasePath(c.DB, cfg)
	if err != nil {
		return err
	}

	src, db, err := openSource(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	defer src.Close()

	if c.globals != nil && c.globals.Verbose {
		log.Printf("lookback %s serving %s", c.version, dbPath)
	}

	srv := server.New(cfg.Endpoint.Host, cfg.Endpoint.Port, src, cfg.History.PageSize)
	return runServer(srv)
}

// applyOverrides folds command line flags into the loaded config.
func (c *ServeCommand) applyOverrides(cfg *config.Config) {
	if c.Port > 0 {
		cfg.Endpoint.Port = c.Port
	}
	if c.PageSize > 0 {
		cfg.History.PageSize = c.PageSize
	}
}

// runServer serves until SIGINT/SIGTERM, then shuts down gracefully.
func runServer(srv *server.Server) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
