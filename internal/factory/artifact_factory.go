package factory

import (
	"context"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mikey/sms-spam-detector/internal/adapters/artifact"
	"github.com/mikey/sms-spam-detector/internal/config"
	"github.com/mikey/sms-spam-detector/internal/core"
	"github.com/mikey/sms-spam-detector/internal/ports"
	"go.uber.org/zap"
)

// ArtifactFactory creates the artifact loader and loads the model at startup
type ArtifactFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewArtifactFactory creates a new artifact factory
func NewArtifactFactory(cfg *config.Config, logger *zap.Logger) *ArtifactFactory {
	return &ArtifactFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLoader creates a loader for the configured locations. The S3
// source is only set up when one of the locations needs it.
func (f *ArtifactFactory) CreateLoader(ctx context.Context) (*artifact.Loader, error) {
	modelCfg, err := f.cfg.GetModel()
	if err != nil {
		return nil, err
	}

	sources := []ports.ArtifactSource{artifact.FileSource{}}
	if isS3(modelCfg.VectorizerPath) || isS3(modelCfg.ClassifierPath) {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(modelCfg.S3Region),
		)
		if err != nil {
			f.logger.Error("Failed to load AWS configuration", zap.Error(err))
		} else {
			sources = append([]ports.ArtifactSource{artifact.NewS3Source(s3.NewFromConfig(awsCfg))}, sources...)
		}
	}

	return artifact.NewLoader(
		modelCfg.VectorizerPath,
		modelCfg.ClassifierPath,
		modelCfg.SpamLabel,
		modelCfg.LoadTimeout,
		f.logger,
		sources...,
	), nil
}

// LoadArtifacts loads the model once. Load failures are carried in the
// result rather than returned, so the front end can still report them.
func (f *ArtifactFactory) LoadArtifacts() (core.LoadResult, error) {
	ctx := context.Background()
	loader, err := f.CreateLoader(ctx)
	if err != nil {
		return core.LoadResult{}, err
	}
	return loader.LoadResult(ctx), nil
}

func isS3(location string) bool {
	return strings.HasPrefix(location, "s3://")
}
