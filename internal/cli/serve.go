package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphscope/pkg/api"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string
	engine  string
	noCache bool
}

// serveCommand creates the serve command exposing the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout/parse/export pipeline over HTTP",
		Long: `Serve starts an HTTP server with three endpoints, each taking DOT
text as the request body:

  POST /layout  laid-out SVG markup
  POST /graph   parsed graph model as JSON
  POST /export  PNG at export scale (add ?fancy=1 for settled force geometry)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "layout engine: dot (default), neato, fdp, ...")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	cfg := c.loadConfig()
	engineName := opts.engine
	if engineName == "" {
		engineName = cfg.Viewer.Engine
	}

	cch := c.newCache(ctx, cfg, opts.noCache)
	defer cch.Close()

	srv := api.NewServer(api.Options{
		LayoutEngine: engineName,
		Cache:        cch,
		Logger:       logger,
	})

	httpSrv := &http.Server{
		Addr:              opts.addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Shut down cleanly on context cancellation (SIGINT from main).
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Infof("Listening on %s", opts.addr)
	err := httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
