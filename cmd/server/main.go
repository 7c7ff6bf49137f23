package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/clubbill/backend/internal/application/billing"
	clubapp "github.com/clubbill/backend/internal/application/club"
	"github.com/clubbill/backend/internal/infrastructure/config"
	"github.com/clubbill/backend/internal/infrastructure/logger"
	"github.com/clubbill/backend/internal/infrastructure/persistence"
	"github.com/clubbill/backend/internal/interfaces/http/handler"
	"github.com/clubbill/backend/internal/interfaces/http/middleware"
	"github.com/clubbill/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Club Billing Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with zap-backed GORM logging
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	clubRepo := persistence.NewGormClubRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	clock := billingapp.NewRealClock()
	allocator := billingapp.NewPaymentAllocator(log)
	paymentService := billingapp.NewPaymentService(txScope, clubRepo, allocator, clock, log)
	feeService := billingapp.NewFeeService(txScope, clock, log)
	clubService := clubapp.NewService(clubRepo, log)

	// HTTP engine
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		logger.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
	)

	// Routes
	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithScopedMiddleware(middleware.ClubScope(middleware.ClubMiddlewareConfig{
			Logger: log,
		})),
	)
	r.Register(handler.NewSystemHandler(db))
	r.Register(handler.NewClubHandler(clubService))
	r.RegisterScoped(handler.NewPaymentHandler(paymentService))
	r.RegisterScoped(handler.NewFeeHandler(feeService))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
