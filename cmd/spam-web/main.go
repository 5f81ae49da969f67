package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/sms-spam-detector/internal/core"
	"github.com/mikey/sms-spam-detector/internal/di"
	"github.com/mikey/sms-spam-detector/internal/ports"
	"go.uber.org/zap"
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
	frontend ports.Frontend,
	service *core.PredictionService,
	cacheRepo core.CacheRepository,
) error {
	defer logger.Sync()

	if !service.Ready() {
		logger.Warn("Serving without a model, predictions will be refused", zap.Error(service.LoadError()))
	}

	// Start the front end
	if err := frontend.Start(); err != nil {
		logger.Error("Failed to start front end", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the front end
	if err := frontend.Stop(); err != nil {
		logger.Error("Failed to stop front end", zap.Error(err))
	}

	// Stop the cache if needed
	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
