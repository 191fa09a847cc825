package cli

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/dotring/internal/server"
	"github.com/matzehuels/dotring/pkg/config"
	"github.com/matzehuels/dotring/pkg/errors"
)

// serveCommand hosts widgets over HTTP until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, basePath string
	var maxWidgets int
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host widgets over HTTP",
		Long: `Serve hosts widgets over HTTP. The index page shows one widget, and the
JSON API under the base path creates, drives and draws further widgets.
Widgets live in memory only and are lost when the server stops.

With --watch, edits to the [widget] table of the configuration file apply to
widgets created afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			if basePath == "" {
				basePath = cfg.Server.BasePath
			}

			srv := server.New(
				server.WithLogger(c.Logger),
				server.WithDefaults(cfg.Widget),
				server.WithBasePath(basePath),
				server.WithMaxWidgets(maxWidgets),
				server.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
			)

			w := cmd.OutOrStdout()
			printInfo(w, "Serving %s", StyleLink.Render("http://"+addr+"/"))
			printDetail(w, "API under %s, press Ctrl+C to stop", basePath)

			var watchPath string
			if watch {
				if watchPath, err = c.resolvedConfigPath(); err != nil {
					return err
				}
				printDetail(w, "Watching %s", watchPath)
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return srv.ListenAndServe(ctx, addr) })
			if watch {
				g.Go(func() error { return c.watchDefaults(ctx, watchPath, srv) })
			}
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config: 127.0.0.1:8080)")
	cmd.Flags().StringVar(&basePath, "base-path", "", "mount point of the widget API (default from config: /api/widgets)")
	cmd.Flags().IntVar(&maxWidgets, "max-widgets", server.DefaultMaxWidgets, "widgets kept before the oldest is dropped")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload widget defaults when the config file changes")
	return cmd
}

// watchDefaults feeds the [widget] table of the file at path into srv on
// every change. Invalid files are logged and the previous defaults stay.
func (c *CLI) watchDefaults(ctx context.Context, path string, srv *server.Server) error {
	return config.Watch(ctx, path, config.DefaultDebounce, func(cfg config.Config, err error) {
		if err != nil {
			c.Logger.Warn("Config reload failed", "path", path, "err", errors.UserMessage(err))
			return
		}
		srv.SetDefaults(cfg.Widget)
		c.Logger.Info("Config reloaded", "path", path, "variant", cfg.Widget.Variant)
	})
}
