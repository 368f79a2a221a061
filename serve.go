package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"image-steganography/config"
	"image-steganography/handlers"
	"image-steganography/logging"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Endpoints:
  GET  /api/v1/health         - Health check
  POST /api/v1/planes         - Bit-planes of one channel (JSON, base64 PNGs)
  POST /api/v1/stego/embed    - Hide a secret image (returns stego PNG, PSNR in X-Stego-PSNR)
  POST /api/v1/stego/extract  - Recover secret and cover (JSON, base64 PNGs)

The PORT environment variable overrides the configured address unless --addr is given.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", config.DefaultAddr, "Listen address")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port := os.Getenv("PORT"); port != "" && !cmd.Flags().Changed("addr") {
		cfg.Addr = ":" + port
	}

	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Addr, "channel", cfg.Channel, "resample", cfg.Resample)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// NewRouter builds the gin engine with recovery, request logging, CORS and
// the API routes.
func NewRouter(cfg *config.Config, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logging.GinMiddleware(logger))
	router.Use(cors.New(corsConfig(cfg)))

	handlers.NewStegoHandler(cfg, logger).RegisterRoutes(router)
	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	corsCfg.ExposeHeaders = []string{
		"X-Stego-PSNR", "X-Stego-Channel-PSNR", "X-Stego-Channel",
		"X-Stego-Width", "X-Stego-Height", "Content-Disposition",
	}

	if slices.Contains(cfg.AllowOrigins, "*") {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}
	corsCfg.AllowOrigins = cfg.AllowOrigins
	corsCfg.AllowCredentials = true
	return corsCfg
}
