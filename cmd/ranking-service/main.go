package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-stock-ranking/internal/ranking/config"
	delivery "golang-stock-ranking/internal/ranking/delivery/http"
	_ "golang-stock-ranking/internal/ranking/docs"
	"golang-stock-ranking/internal/ranking/repository"
	"golang-stock-ranking/internal/ranking/service"
	"golang-stock-ranking/pkg/common"
	"golang-stock-ranking/pkg/logger"
	"golang-stock-ranking/pkg/metrics"
	"golang-stock-ranking/pkg/postgres"
	"golang-stock-ranking/pkg/redis"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the ranking service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Ranking Service", logger.Field("name", cfg.App.Name))

	// Decimals are written as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	db, err := postgres.NewDB(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	metricsRegistry := metrics.NewRegistry(common.MetricsNamespace)

	// The detail cache is optional; without Redis every detail is computed from the store.
	var detailCache repository.StockDetailCacheRepository
	redisClient, err := redis.NewClient(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		appLogger.Warn("Redis unavailable, detail cache disabled", logger.ErrorField(err))
	} else {
		defer redisClient.Close()
		detailCache = repository.NewStockDetailCacheRepository(redisClient.Client, cfg.Ranking.DetailCacheTTL, cfg.Ranking.CacheBreakerTimeout)
	}

	resultRepo := repository.NewStockAnalysisResultRepository(db.DB)
	analysisSvc := service.NewStockAnalysisService(resultRepo, detailCache, metricsRegistry, appLogger, cfg.Ranking.LatestDateCacheTTL)

	e := echo.New()
	e.HideBanner = true
	e.Validator = delivery.NewRequestValidator()
	e.Use(middleware.Recover())
	e.Use(metricsRegistry.Middleware())

	var writeMiddleware []echo.MiddlewareFunc
	if cfg.Ranking.RateLimitPerSecond > 0 {
		writeMiddleware = append(writeMiddleware,
			middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.Ranking.RateLimitPerSecond))))
	}

	analysisHandler := delivery.NewStockAnalysisHandler(analysisSvc, cfg.Ranking.AmountDisplayUnit, appLogger)
	apiV1 := e.Group("/api/v1")
	analysisHandler.RegisterRoutes(apiV1.Group("/stock-analysis"), writeMiddleware...)

	e.GET("/metrics", echo.WrapHandler(metricsRegistry.Handler()))
	e.GET("/swagger/*", swagger.WrapHandler)

	go func() {
		addr := cfg.API.Address()
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title Stock Ranking API
// @version 1.0
// @description Stores daily stock analysis results and serves ranking searches with trend metrics.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "ranking-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-ranking.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing ranking-service CLI: %s\n", err)
		os.Exit(1)
	}
}
