package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/llm-chat-server/internal/domain"
)

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	// Set configuration file name and paths
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/llm-chat-server/")

	// Set environment variable prefix and enable automatic env binding
	viper.SetEnvPrefix("LLM_CHAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	m.setDefaults()

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using defaults and environment variables
	}

	// Unmarshal configuration into struct
	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "0s") // load-test responses can take minutes
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.static_dir", "client/build")

	// Upstream LLM endpoint defaults
	viper.SetDefault("llm.endpoint_url", "")
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.timeout", "30s")
	viper.SetDefault("llm.rate_limit", 20)
	viper.SetDefault("llm.cache_size", 256)

	// Load-test harness defaults
	viper.SetDefault("loadtest.target_url", "")
	viper.SetDefault("loadtest.request_timeout", "10s")
	viper.SetDefault("loadtest.max_users", 1000)
	viper.SetDefault("loadtest.max_test_time", "10m")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetLLMConfig returns upstream LLM endpoint configuration
func (m *Manager) GetLLMConfig() *domain.LLMConfig {
	return &m.config.LLM
}

// GetLoadTestConfig returns load-test harness configuration
func (m *Manager) GetLoadTestConfig() *domain.LoadTestConfig {
	return &m.config.LoadTest
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	// Validate server configuration
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	// Validate load-test configuration
	if config.LoadTest.RequestTimeout <= 0 {
		return fmt.Errorf("load-test request timeout must be positive")
	}
	if config.LoadTest.MaxUsers <= 0 {
		return fmt.Errorf("load-test max users must be positive")
	}
	if config.LoadTest.MaxTestTime <= 0 {
		return fmt.Errorf("load-test max test time must be positive")
	}

	// Validate upstream configuration
	if config.LLM.Timeout <= 0 {
		return fmt.Errorf("llm timeout must be positive")
	}
	if config.LLM.RateLimit < 0 {
		return fmt.Errorf("llm rate limit must not be negative")
	}

	// Validate logging configuration
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(viper.GetString("environment")) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(viper.GetString("environment"))
	return env == "development" || env == "dev" || env == ""
}
