package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"summarysnap/internal/auth"
	"summarysnap/internal/config"
	"summarysnap/internal/logger"
	"summarysnap/internal/telemetry"
	"summarysnap/middleware"
	"summarysnap/routes"
	"summarysnap/services"
	"summarysnap/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const sessionTokenTTL = 24 * time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(v)
		if err != nil {
			return err
		}
		return serve(cfg)
	},
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (default from PORT or 8080)")
}

func serve(cfg *config.Config) error {
	logger.InitLogger(cfg)

	if cfg.SessionSecret == "" && cfg.GinMode == "debug" {
		secret, err := utils.GenerateSecureRandomString(32)
		if err != nil {
			return err
		}
		cfg.SessionSecret = secret
		logger.Warn("SESSION_SECRET not set, using a random secret; tokens will not survive a restart")
	}
	if err := cfg.RequireSessionSecret(); err != nil {
		return err
	}

	ctx := context.Background()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.OTLPEndpoint, cfg.TraceSampleRatio)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
		shutdownTracer = func() {}
	}
	defer shutdownTracer()

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		logger.Warn("metrics disabled", "error", err)
	}

	eng, err := newEngine(ctx, cfg, metrics)
	if err != nil {
		return err
	}
	defer eng.Close()

	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("rate limiting disabled", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	store := services.NewSessionStore(cfg.SessionTTL)
	sweeper := services.NewSessionSweeper(store, cfg.SessionSweepInterval)
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer sweeper.Stop()

	issuer, err := auth.NewTokenIssuer(cfg.SessionSecret, sessionTokenTTL)
	if err != nil {
		return err
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.EnrichTrace())
	router.Use(middleware.MetricsMiddleware(metrics))
	if rdb != nil {
		router.Use(middleware.RateLimitMiddleware(rdb, cfg))
	}

	routes.SetupHealthRoutes(router, store)
	routes.SetupSessionRoutes(router, cfg, store, eng.pipeline, issuer)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "provider", cfg.Provider)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server exited")
	return nil
}
