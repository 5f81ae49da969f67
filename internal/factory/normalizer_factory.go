package factory

import (
	"fmt"

	"github.com/mikey/sms-spam-detector/internal/config"
	"github.com/mikey/sms-spam-detector/internal/textproc"
	"go.uber.org/zap"
)

// NormalizerFactory creates text normalizers
type NormalizerFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewNormalizerFactory creates a new NormalizerFactory
func NewNormalizerFactory(cfg *config.Config, logger *zap.Logger) *NormalizerFactory {
	return &NormalizerFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateNormalizer creates a normalizer, reading a custom stop-word list
// when text.stop_words_file is set
func (f *NormalizerFactory) CreateNormalizer() (*textproc.Normalizer, error) {
	path := f.cfg.GetString("text.stop_words_file")
	if path == "" {
		return textproc.NewNormalizer(nil, f.logger), nil
	}

	stopWords, err := textproc.LoadStopWords(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load stop words: %w", err)
	}
	f.logger.Info("Loaded stop words", zap.String("file", path), zap.Int("count", len(stopWords)))

	return textproc.NewNormalizer(stopWords, f.logger), nil
}
