package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	LLM      LLMConfig      `mapstructure:"llm"`
	LoadTest LoadTestConfig `mapstructure:"loadtest"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	StaticDir    string        `mapstructure:"static_dir"`
}

// LLMConfig represents the upstream chat-completions endpoint configuration
type LLMConfig struct {
	EndpointURL string        `mapstructure:"endpoint_url"`
	APIKey      string        `mapstructure:"api_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RateLimit   int           `mapstructure:"rate_limit"` // requests per second
	CacheSize   int           `mapstructure:"cache_size"` // LRU entries; 0 disables caching
}

// LoadTestConfig represents defaults and ceilings for the load-test harness
type LoadTestConfig struct {
	// TargetURL is the chat endpoint virtual users hit. Empty means
	// this server's own /api/chat endpoint.
	TargetURL      string        `mapstructure:"target_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxUsers       int           `mapstructure:"max_users"`
	MaxTestTime    time.Duration `mapstructure:"max_test_time"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
