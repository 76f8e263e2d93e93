package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"droneview/internal/core/domain"
	"droneview/internal/core/services"
	httphandlers "droneview/internal/handlers/http"
	"droneview/internal/infrastructure/middleware"
	"droneview/internal/infrastructure/repositories"
	"droneview/pkg/config"
	"droneview/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/namsral/flag"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Seed accounts for development runs. Register new ones over the API.
var seedUsers = []struct {
	user     domain.User
	password string
}{
	{domain.User{ID: "u-admin", Username: "admin", Role: domain.RoleAdmin}, "admin123"},
	{domain.User{ID: "u-operator", Username: "operator", Role: domain.RoleUser}, "operator123"},
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		panic(err)
	}

	zapLogger, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		panic(err)
	}
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}
	defer repoFactory.Close()

	users := repoFactory.CreateUserRepository()
	drones := repoFactory.CreateDroneRepository()
	history := repoFactory.CreateHistoryRepository()

	for _, seed := range seedUsers {
		u := seed.user
		if err := users.Create(context.Background(), &u, seed.password); err != nil {
			log.Warnw("failed to seed user", "username", u.Username, "error", err)
		}
	}

	tokens := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLoggingMiddleware(logger.NewContextLogger(zapLogger)))
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))

	httphandlers.NewAuthHandler(users, tokens).SetupRoutes(router)
	httphandlers.NewDroneHandler(drones, users, history, nil).SetupRoutes(router, middleware.AuthMiddleware(tokens))
	httphandlers.NewInferenceHandler(history, nil).SetupRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "timestamp": time.Now()})
	})
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := repoFactory.HealthCheck(ctx); err != nil {
			c.JSON(503, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})

	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		zapLogger.Info("dev server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		zapLogger.Fatal("server failed", zap.Error(err))
	case sig := <-sigChan:
		zapLogger.Info("received shutdown signal", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("error during server shutdown", zap.Error(err))
	}

	zapLogger.Info("dev server stopped")
}
