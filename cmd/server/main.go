package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/plotsight/api/internal/assets"
	"github.com/stwalsh4118/plotsight/api/internal/config"
	"github.com/stwalsh4118/plotsight/api/internal/handlers"
	"github.com/stwalsh4118/plotsight/api/internal/logger"
	"github.com/stwalsh4118/plotsight/api/internal/metrics"
	"github.com/stwalsh4118/plotsight/api/internal/middleware"
	"github.com/stwalsh4118/plotsight/api/internal/repository"
	"github.com/stwalsh4118/plotsight/api/internal/services"
	"github.com/stwalsh4118/plotsight/api/internal/view"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables and the dataset file
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting Plotsight API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
		"datasets":    len(cfg.Datasets),
	})

	// Wire the sheet repository, image store and dashboard service
	sheetRepo := repository.NewSheetRepository(
		cfg.Sheets.BaseURL, cfg.Sheets.Timeout, cfg.Sheets.Retries, log)
	imageStore := assets.NewImageStore(cfg.Assets.ImageDir)
	dashboardService := services.NewDashboardService(
		sheetRepo, imageStore, cfg.Datasets, view.SqrtSizer{}, cfg.Cache, log)

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check and metrics routes
	healthHandler := handlers.NewHealthHandler(sheetRepo, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)
	router.GET("/metrics", metrics.Handler())

	// Serve the layout images the frontend draws behind the markers
	router.Static("/images", cfg.Assets.ImageDir)

	// Initialize handlers
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		datasets := v1.Group("/datasets")
		{
			datasets.GET("", dashboardHandler.List)
			datasets.GET("/:id/view", dashboardHandler.View)
			datasets.GET("/:id/summary", dashboardHandler.Summary)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
