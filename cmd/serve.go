package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/choirbook/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the catalog JSON API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.cfg().Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}

	service, err := r.catalog()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := server.NewCatalogRouter(service, cfg, r.logger)
	r.logger.Debug("routes registered", "routes", router.Routes())
	return server.New(cfg.Addr(), router, r.logger).Run(ctx)
}
