package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/songbook/internal/server"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the JSON API over the catalog until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}

	cat, err := r.loadCatalog(ctx, cmd.String("source"))
	if err != nil {
		return err
	}
	r.logger.Info("serving catalog", "songs", cat.Len(), "rate_limit", cfg.RateLimit)

	srv := server.New(cfg, cat, shared.WithLogger(r.logger, "component", "server"))

	if cmd.Bool("open") {
		url := fmt.Sprintf("http://%s/songs", srv.Addr())
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("failed to open browser", "url", url, "error", err)
		}
	}

	return srv.Run(ctx)
}
