package di

import (
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/sms-spam-detector/internal/config"
	"github.com/mikey/sms-spam-detector/internal/core"
	"github.com/mikey/sms-spam-detector/internal/factory"
	"github.com/mikey/sms-spam-detector/internal/logging"
	"github.com/mikey/sms-spam-detector/internal/ports"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideCommon(container); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register cache TTL and enabled flag
	if err := container.Provide(func(f *factory.CacheFactory) (time.Duration, error) {
		return f.GetCacheTTL()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) bool {
		return f.IsCacheEnabled()
	}); err != nil {
		return nil, err
	}

	// Register prediction service
	if err := container.Provide(core.NewPredictionService); err != nil {
		return nil, err
	}

	// Register front end
	if err := container.Provide(func(f *factory.FrontendFactory) (ports.Frontend, error) {
		return f.CreateFrontend()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideCommon registers the factories, the normalizer and the loaded
// artifacts shared by both binaries
func provideCommon(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewNormalizerFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewArtifactFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return err
	}

	// Register normalizer
	if err := container.Provide(func(f *factory.NormalizerFactory) (core.TextNormalizer, error) {
		return f.CreateNormalizer()
	}); err != nil {
		return err
	}

	// Register artifacts, loaded once at startup
	if err := container.Provide(func(f *factory.ArtifactFactory, logger *zap.Logger) (core.LoadResult, error) {
		result, err := f.LoadArtifacts()
		if err == nil && result.Ready() {
			logger.Info("Model ready", zap.String("model", result.Artifacts.Name()))
		}
		return result, err
	}); err != nil {
		return err
	}

	return nil
}
