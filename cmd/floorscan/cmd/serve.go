package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/floorscan/internal/server"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the floor-plan analysis HTTP server",
	Long: `Start an HTTP server exposing the analysis pipeline.

The server provides the following endpoints:
  POST /analyze      - Analyze an uploaded floor-plan image
  GET  /ws/analyze   - WebSocket analysis with stage progress
  GET  /health       - Health check endpoint
  GET  /service-info - Service capabilities
  GET  /metrics      - Prometheus metrics

Examples:
  floorscan serve
  floorscan serve --port 3000
  floorscan serve --host 127.0.0.1 --cors-origins "https://app.example"`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", cfg.Server.Port)
		}

		serverCfg := server.Config{
			Host:        cfg.Server.Host,
			Port:        cfg.Server.Port,
			CORSOrigins: cfg.Server.CORSOrigins,
			TimeoutSec:  cfg.Server.TimeoutSec,
			RateLimit: server.RateLimitConfig{
				Enabled:           cfg.Server.RateLimitEnabled,
				RequestsPerMinute: cfg.Server.RateLimitPerMinute,
				Burst:             cfg.Server.RateLimitBurst,
			},
			Pipeline:        cfg.Pipeline,
			RoomsConfigPath: cfg.RoomsConfig,
		}

		srv, err := server.NewServer(serverCfg, slog.Default())
		if err != nil {
			return fmt.Errorf("failed to initialize server: %w", err)
		}
		defer func() { _ = srv.Close() }()

		mux := http.NewServeMux()
		srv.SetupRoutes(mux)

		httpServer := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       time.Duration(cfg.Server.TimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(cfg.Server.TimeoutSec) * time.Second,
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		go func() {
			slog.Info("starting analysis server", "host", cfg.Server.Host, "port", cfg.Server.Port)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("server error", "error", err)
				cancel()
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

		select {
		case sig := <-sigChan:
			slog.Info("received shutdown signal", "signal", sig.String())
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
		defer shutdownCancel()

		slog.Info("shutting down", "timeout_sec", cfg.Server.ShutdownTimeoutSec)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		if err := srv.Close(); err != nil {
			slog.Error("pipeline cleanup error", "error", err)
		}
		slog.Info("shutdown complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("host", "H", "0.0.0.0", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origins", "*", "comma-separated CORS allowed origins")
	serveCmd.Flags().Int("timeout", 120, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	serveCmd.Flags().Bool("rate-limit", true, "enable per-client rate limiting")
	serveCmd.Flags().Int("rate-limit-per-minute", 30, "sustained requests per minute per client")
	serveCmd.Flags().Int("rate-limit-burst", 10, "burst allowance per client")

	bindings := []struct {
		key  string
		flag string
	}{
		{"server.host", "host"},
		{"server.port", "port"},
		{"server.cors_origins", "cors-origins"},
		{"server.timeout_sec", "timeout"},
		{"server.shutdown_timeout_sec", "shutdown-timeout"},
		{"server.rate_limit_enabled", "rate-limit"},
		{"server.rate_limit_per_minute", "rate-limit-per-minute"},
		{"server.rate_limit_burst", "rate-limit-burst"},
	}
	for _, b := range bindings {
		if err := viper.BindPFlag(b.key, serveCmd.Flags().Lookup(b.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", b.flag, err))
		}
	}
}

// GetServeCommand returns the serve command for testing purposes.
func GetServeCommand() *cobra.Command {
	return serveCmd
}
