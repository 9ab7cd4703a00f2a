package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/llm-chat-server/internal/api"
	"github.com/llm-chat-server/internal/config"
	"github.com/llm-chat-server/internal/llm"
	"github.com/llm-chat-server/internal/logging"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := logging.New(cfg.Logging)
	logger.Infof("Starting LLM Chat Server on %s:%d", cfg.Server.Host, cfg.Server.Port)

	// Create the upstream chat client
	chatClient, err := llm.NewClient(cfg.LLM, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create upstream chat client")
	}

	// Create server
	server := api.NewServer(configManager, chatClient, logger)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Start server
	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}
