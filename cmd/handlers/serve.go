package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"seosuite/internal/config"
	"seosuite/internal/logger"
	"seosuite/internal/metrics"
	"seosuite/internal/server"
	"seosuite/internal/services"
)

const shutdownTimeout = 15 * time.Second

// NewServeCmd creates the serve command for starting the HTTP API
func NewServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the seosuite HTTP API.

The server provides:
  • Link generation, clustering and URL conversion endpoints
  • Keyword extraction with the shared page cache
  • Project, state and master keyword management
  • Health check and Prometheus metrics endpoints

Examples:
  # Start server on default port 8080
  seosuite serve

  # Start on custom port
  seosuite serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: localhost)")

	return cmd
}

func runServe(ctx context.Context, port int, host string) error {
	log := logger.Get()
	cfg := config.Get()

	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	st, err := services.OpenStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open project store: %w", err)
	}
	defer closeStore(st)

	if err := st.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("Database connection successful", "driver", cfg.Database.Driver)

	if ttl := cfg.Fetch.CacheTTLDuration(); ttl > 0 {
		if removed, err := st.CleanupPageCache(ctx, ttl); err != nil {
			log.Warn("Page cache cleanup failed", "error", err)
		} else if removed > 0 {
			log.Info("Removed expired cached pages", "count", removed)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	srv := server.New(serverCfg, server.Deps{
		Store:     st,
		Linker:    services.NewLinker(cfg.Linking, m),
		Extractor: services.NewBatchExtractor(cfg.Fetch, st, m),
		Metrics:   m,
		Keywords:  cfg.Keywords,
	})

	serverErrors := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("Server listening on http://%s", serverCfg.Addr()))
		log.Info("Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case sig := <-shutdown:
		log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed, forcing close", "error", err)
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		log.Info("Server stopped successfully")
	}

	return nil
}
