package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fittrack/fittrack/cleanup"
	"github.com/fittrack/fittrack/internal/config"
	"github.com/fittrack/fittrack/internal/httpapi"
	"github.com/fittrack/fittrack/internal/logging"
	"github.com/fittrack/fittrack/internal/metrics"
)

const serviceName = "fittrack"

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API. Configuration is read from the config file, then
FITTRACK_* and MAIL_* environment variables, then flags.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd)
		},
	}

	cmd.Flags().String("listen", "", "HTTP listen address (default :8080)")
	cmd.Flags().String("public-url", "", "externally reachable base URL used in verification links")
	cmd.Flags().String("log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().String("log-format", "", "log format (json or text)")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.Setup(serviceName, version, cfg.Log.Format, cfg.Log.Level, cmd.ErrOrStderr())

	reg := metrics.NewRegistry()
	m := metrics.NewMetrics(reg)

	app, err := cfg.NewApp(logger, m)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}

	if cfg.Cleanup.UnverifiedMaxAge > 0 {
		worker := cleanup.NewWorker(&cleanup.Config{
			Store:    app.Users(),
			MaxAge:   cfg.Cleanup.UnverifiedMaxAge,
			Interval: cfg.Cleanup.Interval,
			Logger:   logger.With("component", "cleanup"),
			Pruned:   m.AccountsPrunedTotal,
		})
		worker.Start()
		defer worker.Stop()
	}

	ln, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.Listen, err)
	}

	srv := &http.Server{
		Handler: httpapi.NewRouter(app, httpapi.Options{
			Logger:   logger,
			Metrics:  m,
			Registry: reg,
		}),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	logger.Info("server listening",
		"addr", ln.Addr().String(),
		"public_url", cfg.PublicURL,
		"smtp", cfg.Mail.Server != "",
	)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
