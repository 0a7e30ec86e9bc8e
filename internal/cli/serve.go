package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lifelines/internal/server"
)

const (
	defaultAddr     = "localhost:8080"
	shutdownTimeout = 10 * time.Second
)

// serveCommand creates the serve command, which runs the HTTP layout API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr  string
		cache cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP layout API",
		Long: `Run the HTTP layout API.

Routes:
  POST /v1/layout   lay out a tree, respond with the layout JSON
  POST /v1/render   lay out and draw a tree (?format=svg|png|pdf|json|dot)
  GET  /healthz     build information

Results are cached in the backend chosen with --cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, cache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cache.register(cmd, backendNone)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, cf cacheFlags) error {
	runner, err := c.newRunnerWithBackend(ctx, cf)
	if err != nil {
		return fmt.Errorf("initialize %s cache: %w", cf.backend, err)
	}
	defer runner.Close()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           server.New(runner, server.WithLogger(loggerFromContext(ctx))),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	printSuccess("Serving on http://%s", ln.Addr())
	printKeyValue("Cache", cf.backend)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	loggerFromContext(ctx).Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return ctx.Err()
}
