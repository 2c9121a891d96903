package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/medreport-assistant-server/internal/ai"
	"github.com/medreport-assistant-server/internal/api"
	"github.com/medreport-assistant-server/internal/chat"
	"github.com/medreport-assistant-server/internal/config"
	"github.com/medreport-assistant-server/internal/reports"
	"github.com/medreport-assistant-server/internal/service"
	"github.com/medreport-assistant-server/pkg/external"
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
	logger := config.NewLogger(&cfg.Logging)

	store, err := reports.Open(configManager.GetStorageConfig())
	if err != nil {
		log.Fatalf("Failed to open report store: %v", err)
	}
	defer store.Close()

	gateway := ai.NewClient(configManager.GetAIConfig(), logger)
	analyzer := service.NewAnalyzer(store, gateway, logger)

	lookup, err := external.NewLookupFromConfig(configManager.GetLookupConfig(), configManager.GetCacheConfig(), logger)
	if err != nil {
		log.Fatalf("Failed to build lookup client: %v", err)
	}
	defer lookup.Close()

	chatStore, err := chat.NewStore(filepath.Join(cfg.Storage.DataDir, "chat_store.json"))
	if err != nil {
		log.Fatalf("Failed to open chat store: %v", err)
	}
	responder := chat.NewResponder(chatStore, lookup, logger)

	logger.WithFields(logrus.Fields{
		"host":    cfg.Server.Host,
		"port":    cfg.Server.Port,
		"backend": cfg.Storage.Backend,
	}).Info("Starting medical report assistant server")

	server := api.NewServer(configManager, analyzer, store, chatStore, responder, logger)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}

	logger.Info("Server stopped")
}
