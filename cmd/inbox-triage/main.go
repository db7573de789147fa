package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/di"
	"github.com/mikey/inbox-triage/internal/ports"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	ingestor ports.EmailIngestor,
	drafter core.DraftProvider,
	cacheRepo core.CacheRepository,
) error {
	defer logger.Sync()

	if err := ingestor.Start(); err != nil {
		logger.Fatal("Failed to start ingestor", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	if err := ingestor.Stop(); err != nil {
		logger.Error("Failed to stop ingestor", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := drafter.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close draft provider", zap.Error(err))
		}
	}

	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	} else if stopper, ok := cacheRepo.(interface{ Stop() error }); ok {
		if err := stopper.Stop(); err != nil {
			logger.Error("Failed to stop cache", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
