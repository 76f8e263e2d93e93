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
	"droneview/internal/infrastructure/api"
	"droneview/internal/infrastructure/middleware"
	"droneview/internal/infrastructure/monitoring"
	"droneview/internal/infrastructure/repositories/file"
	"droneview/pkg/config"
	"droneview/pkg/frameres"
	"droneview/pkg/logger"
	"droneview/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/namsral/flag"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

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

	tp, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		JaegerURL:   cfg.Tracing.JaegerURL,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		zapLogger.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		tp.Shutdown(ctx)
	}()

	metrics := monitoring.NewPrometheusCollector(prometheus.DefaultRegisterer)

	credRepo, err := file.NewFileCredentialRepository(cfg.Console.CredentialFile)
	if err != nil {
		zapLogger.Fatal("failed to open credential file", zap.Error(err))
	}

	frames := frameres.NewRegistry()

	// The credential store and the transport depend on each other: the
	// client reads the token from the store, the store logs in through
	// the client. Break the cycle with a late-bound token source.
	var credentials *services.CredentialService
	tokenSource := tokenSourceFunc(func() string {
		if credentials == nil {
			return ""
		}
		return credentials.Token()
	})

	client := api.NewClient(api.Config{
		ControlBaseURL:   cfg.Console.ControlBaseURL,
		InferenceBaseURL: cfg.Console.InferenceBaseURL,
		Timeout:          cfg.Console.RequestTimeout,
	}, tokenSource, metrics, zapLogger)

	credentials = services.NewCredentialService(client, credRepo, zapLogger)
	sessions := services.NewSessionService(credentials)
	guard := services.NewGuardService()
	navigator := services.NewNavigator(guard, sessions, domain.DefaultRoutes(), zapLogger)
	commands := services.NewCommandService(client, metrics, zapLogger)
	stream := services.NewStreamService(client, frames, metrics, commands, zapLogger)

	// Global 401 handler: any unauthorized response tears the session
	// down and lands the console back on the root route.
	client.OnUnauthorized(func() {
		stream.Reset()
		credentials.Logout()
		navigator.ForceHome()
		zapLogger.Warn("session expired, forced logout")
	})

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLoggingMiddleware(logger.NewContextLogger(zapLogger)))

	console := httphandlers.NewConsoleHandler(
		credentials,
		sessions,
		navigator,
		stream,
		commands,
		frames,
		cfg.Console.StreamInterval,
	)
	console.SetupRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	srv := &http.Server{
		Addr:    cfg.Console.ViewerAddress,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		zapLogger.Info("console viewer listening", zap.String("address", cfg.Console.ViewerAddress))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		zapLogger.Fatal("viewer server failed", zap.Error(err))
	case sig := <-sigChan:
		zapLogger.Info("received shutdown signal", zap.String("signal", sig.String()))
	}

	// Stop polling before the server so no tick outlives the process.
	stream.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Console.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("error during server shutdown", zap.Error(err))
	}

	zapLogger.Info("console stopped")
}

type tokenSourceFunc func() string

func (f tokenSourceFunc) Token() string { return f() }
