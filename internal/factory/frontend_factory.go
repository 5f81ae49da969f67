package factory

import (
	"fmt"

	"github.com/mikey/sms-spam-detector/internal/adapters/frontend"
	"github.com/mikey/sms-spam-detector/internal/config"
	"github.com/mikey/sms-spam-detector/internal/core"
	"github.com/mikey/sms-spam-detector/internal/ports"
	"go.uber.org/zap"
)

// FrontendFactory creates front ends based on configuration
type FrontendFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.PredictionService
}

// NewFrontendFactory creates a new front end factory
func NewFrontendFactory(cfg *config.Config, logger *zap.Logger, service *core.PredictionService) *FrontendFactory {
	return &FrontendFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateFrontend creates a front end based on the configuration
func (f *FrontendFactory) CreateFrontend() (ports.Frontend, error) {
	serverCfg, err := f.cfg.GetServer()
	if err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	switch serverCfg.FrontendType {
	case "web":
		return frontend.NewWebFrontend(f.service, f.logger, serverCfg), nil
	case "cli":
		return frontend.NewCliFrontend(f.service, f.logger, f.cfg.GetBool("cli.verbose")), nil
	default:
		return nil, fmt.Errorf("unsupported frontend type: %s", serverCfg.FrontendType)
	}
}
