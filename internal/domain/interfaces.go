package domain

import (
	"context"
)

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetLLMConfig() *LLMConfig
	GetLoadTestConfig() *LoadTestConfig
	Reload() error
	Validate() error
	IsProduction() bool
	IsDevelopment() bool
}

// ChatService produces a completion for a user message. The HTTP layer
// depends on this rather than on a concrete upstream client.
type ChatService interface {
	Complete(ctx context.Context, message string) (string, error)
}
