package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Console struct {
		ControlBaseURL   string        `yaml:"control_base_url"`
		InferenceBaseURL string        `yaml:"inference_base_url"`
		ViewerAddress    string        `yaml:"viewer_address"`
		RequestTimeout   time.Duration `yaml:"request_timeout"`
		StreamInterval   time.Duration `yaml:"stream_interval"`
		CredentialFile   string        `yaml:"credential_file"`
		ShutdownTimeout  time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"console"`

	Agent struct {
		Username     string        `yaml:"username"`
		Password     string        `yaml:"password"`
		DroneID      string        `yaml:"drone_id"`
		SourceDir    string        `yaml:"source_dir"`
		SendInterval time.Duration `yaml:"send_interval"`
		MaxRetries   int           `yaml:"max_retries"`
		RetryDelay   time.Duration `yaml:"retry_delay"`
	} `yaml:"agent"`

	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Auth struct {
		JWTSecret string        `yaml:"jwt_secret"`
		TokenTTL  time.Duration `yaml:"token_ttl"`
	} `yaml:"auth"`

	Storage struct {
		Backend      string `yaml:"backend"` // "memory" or "redis"
		HistoryLimit int    `yaml:"history_limit"`

		Redis struct {
			Address  string `yaml:"address"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			PoolSize int    `yaml:"pool_size"`
		} `yaml:"redis"`
	} `yaml:"storage"`

	RateLimiting struct {
		Enabled           bool    `yaml:"enabled"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rate_limiting"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
	} `yaml:"monitoring"`

	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		ServiceName string  `yaml:"service_name"`
		JaegerURL   string  `yaml:"jaeger_url"`
		SampleRate  float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	// Console
	if c.Console.ControlBaseURL == "" {
		return fmt.Errorf("console.control_base_url must not be empty")
	}
	if c.Console.InferenceBaseURL == "" {
		return fmt.Errorf("console.inference_base_url must not be empty")
	}
	if c.Console.RequestTimeout <= 0 {
		return fmt.Errorf("console.request_timeout must be > 0")
	}
	if c.Console.StreamInterval <= 0 {
		return fmt.Errorf("console.stream_interval must be > 0")
	}

	// Agent
	if c.Agent.SendInterval <= 0 {
		return fmt.Errorf("agent.send_interval must be > 0")
	}
	if c.Agent.MaxRetries < 1 {
		return fmt.Errorf("agent.max_retries must be >= 1")
	}
	if c.Agent.RetryDelay < 0 {
		return fmt.Errorf("agent.retry_delay must be >= 0")
	}

	// Server
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	// Auth
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be > 0")
	}

	// Storage
	switch c.Storage.Backend {
	case "memory":
	case "redis":
		if c.Storage.Redis.Address == "" {
			return fmt.Errorf("storage.redis.address must not be empty when storage.backend=redis")
		}
		if c.Storage.Redis.PoolSize <= 0 {
			return fmt.Errorf("storage.redis.pool_size must be > 0 when storage.backend=redis")
		}
	default:
		return fmt.Errorf("storage.backend must be \"memory\" or \"redis\", got %q", c.Storage.Backend)
	}
	if c.Storage.HistoryLimit <= 0 {
		return fmt.Errorf("storage.history_limit must be > 0")
	}

	// Rate limiting
	if c.RateLimiting.Enabled {
		if c.RateLimiting.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.Burst <= 0 {
			return fmt.Errorf("rate_limiting.burst must be > 0 when rate limiting is enabled")
		}
	}

	// Tracing
	if c.Tracing.Enabled {
		if c.Tracing.ServiceName == "" {
			return fmt.Errorf("tracing.service_name must not be empty when tracing is enabled")
		}
		if c.Tracing.JaegerURL == "" {
			return fmt.Errorf("tracing.jaeger_url must not be empty when tracing is enabled")
		}
		if c.Tracing.SampleRate <= 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be in (0, 1]")
		}
	}

	// Logging
	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	return nil
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	// If file does not exist, fall back to defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Console.ControlBaseURL = "http://localhost:8080"
	cfg.Console.InferenceBaseURL = "http://localhost:5001"
	cfg.Console.ViewerAddress = ":9100"
	cfg.Console.RequestTimeout = 10 * time.Second
	cfg.Console.StreamInterval = 50 * time.Millisecond
	cfg.Console.CredentialFile = ".droneview/credential.json"
	cfg.Console.ShutdownTimeout = 10 * time.Second

	cfg.Agent.DroneID = "drone-1"
	cfg.Agent.SourceDir = "frames"
	cfg.Agent.SendInterval = 500 * time.Millisecond
	cfg.Agent.MaxRetries = 3
	cfg.Agent.RetryDelay = time.Second

	cfg.Server.Address = ":8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second

	cfg.Auth.JWTSecret = "change-me-in-production"
	cfg.Auth.TokenTTL = 12 * time.Hour

	cfg.Storage.Backend = "memory"
	cfg.Storage.HistoryLimit = 100
	cfg.Storage.Redis.Address = "localhost:6379"
	cfg.Storage.Redis.DB = 0
	cfg.Storage.Redis.PoolSize = 10

	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 50
	cfg.RateLimiting.Burst = 100

	cfg.Monitoring.PrometheusEnabled = true

	cfg.Tracing.Enabled = false
	cfg.Tracing.ServiceName = "droneview"
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.SampleRate = 1.0

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	return cfg
}

func (c *Config) applyEnvOverrides() {
	// Apply environment variable overrides
	if addr := os.Getenv("DRONEVIEW_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if base := os.Getenv("DRONEVIEW_CONTROL_BASE_URL"); base != "" {
		c.Console.ControlBaseURL = base
	}
	if base := os.Getenv("DRONEVIEW_INFERENCE_BASE_URL"); base != "" {
		c.Console.InferenceBaseURL = base
	}
	if level := os.Getenv("DRONEVIEW_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if secret := os.Getenv("DRONEVIEW_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if pass := os.Getenv("DRONEVIEW_AGENT_PASSWORD"); pass != "" {
		c.Agent.Password = pass
	}
}
