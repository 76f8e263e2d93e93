package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"droneview/internal/agent"
	"droneview/internal/core/domain"
	"droneview/internal/core/services"
	"droneview/internal/infrastructure/api"
	"droneview/internal/infrastructure/monitoring"
	"droneview/internal/infrastructure/repositories/memory"
	"droneview/pkg/config"
	"droneview/pkg/logger"

	"github.com/namsral/flag"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath string
		username   string
		password   string
		droneID    string
		sourceDir  string
	)
	flag.StringVar(&configPath, "config", "configs/config.yaml", "path to configuration file")
	flag.StringVar(&username, "username", "", "account to fly under (overrides config)")
	flag.StringVar(&password, "password", "", "account password (overrides config)")
	flag.StringVar(&droneID, "drone", "", "drone identifier (overrides config)")
	flag.StringVar(&sourceDir, "frames", "", "directory of JPEG frames (overrides config)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		panic(err)
	}

	if username != "" {
		cfg.Agent.Username = username
	}
	if password != "" {
		cfg.Agent.Password = password
	}
	if droneID != "" {
		cfg.Agent.DroneID = droneID
	}
	if sourceDir != "" {
		cfg.Agent.SourceDir = sourceDir
	}

	zapLogger, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		panic(err)
	}
	defer zapLogger.Sync()

	if cfg.Agent.Username == "" || cfg.Agent.Password == "" {
		zapLogger.Fatal("agent credentials missing: set agent.username and agent.password")
	}

	source, err := agent.NewDirSource(cfg.Agent.SourceDir)
	if err != nil {
		zapLogger.Fatal("failed to open frame source",
			zap.String("dir", cfg.Agent.SourceDir),
			zap.Error(err),
		)
	}

	metrics := monitoring.NewPrometheusCollector(prometheus.DefaultRegisterer)

	// The agent's session lives and dies with the process; a memory
	// credential repository is all it needs.
	var store *services.CredentialService
	tokenSource := tokenSourceFunc(func() string {
		if store == nil {
			return ""
		}
		return store.Token()
	})

	client := api.NewClient(api.Config{
		ControlBaseURL:   cfg.Console.ControlBaseURL,
		InferenceBaseURL: cfg.Console.InferenceBaseURL,
		Timeout:          cfg.Console.RequestTimeout,
	}, tokenSource, metrics, zapLogger)

	store = services.NewCredentialService(client, memory.NewMemoryCredentialRepository(), zapLogger)

	a := agent.New(agent.Config{
		Username:     cfg.Agent.Username,
		Password:     cfg.Agent.Password,
		DroneID:      domain.DroneID(cfg.Agent.DroneID),
		SendInterval: cfg.Agent.SendInterval,
		MaxRetries:   cfg.Agent.MaxRetries,
		RetryDelay:   cfg.Agent.RetryDelay,
	}, store, client, source, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		zapLogger.Error("agent stopped with error", zap.Error(err))
		os.Exit(1)
	}
	zapLogger.Info("agent stopped")
}

type tokenSourceFunc func() string

func (f tokenSourceFunc) Token() string { return f() }
