package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/cli"
	httpAdapter "github.com/aretw0/turing/pkg/adapters/http"
	"github.com/aretw0/turing/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes the machine library and stateful runs as a JSON API over HTTP.
Runs are kept in the configured store (memory, file, redis or sqlite).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}

		env, err := setup(cmd, turing.WithLifecycleHooks(metrics.Hooks()))
		if err != nil {
			return err
		}
		defer env.Close()
		cfg := env.Config
		logger := env.Logger

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		runs, err := env.Sessions(ctx)
		if err != nil {
			return err
		}

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(logger),
			httpAdapter.WithEngineOptions(env.Library.EngineOptions()...),
			httpAdapter.WithLimits(cfg.Limits.MaxSteps, cfg.Limits.MaxGenerations),
		}
		if cfg.Server.Metrics {
			opts = append(opts, httpAdapter.WithMetrics(reg))
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           httpAdapter.NewHandler(env.Library.Loader(), runs, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting turing server", "address", srv.Addr, "library", env.Library.Name, "store", cfg.Store.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("Start shutdown", "signal", ctx.Signal())

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "err", err)
				return srv.Close()
			}
			logger.Info("Turing server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (default from config)")
	serveCmd.Flags().String("store", "", "Run store: memory, file, redis or sqlite (default from config)")
	serveCmd.Flags().String("store-path", "", "Directory (file) or database file (sqlite) of the run store")
}
