package artifact

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mikey/sms-spam-detector/internal/core"
	"github.com/mikey/sms-spam-detector/internal/model"
	"github.com/mikey/sms-spam-detector/internal/ports"
	"go.uber.org/zap"
)

// Loader reads the vectorizer and classifier artifacts once at startup
type Loader struct {
	sources        []ports.ArtifactSource
	vectorizerPath string
	classifierPath string
	spamLabel      int
	timeout        time.Duration
	logger         *zap.Logger
}

// NewLoader creates a new artifact loader. Sources are tried in order.
func NewLoader(
	vectorizerPath string,
	classifierPath string,
	spamLabel int,
	timeout time.Duration,
	logger *zap.Logger,
	sources ...ports.ArtifactSource,
) *Loader {
	return &Loader{
		sources:        sources,
		vectorizerPath: vectorizerPath,
		classifierPath: classifierPath,
		spamLabel:      spamLabel,
		timeout:        timeout,
		logger:         logger,
	}
}

// Load returns ready artifacts or an *core.ArtifactLoadError
func (l *Loader) Load(ctx context.Context) (*core.Artifacts, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()

	var vectorizer *model.TermVectorizer
	err := l.read(ctx, l.vectorizerPath, func(r io.Reader) (err error) {
		vectorizer, err = model.DecodeVectorizer(r, l.vectorizerPath)
		return err
	})
	if err != nil {
		return nil, &core.ArtifactLoadError{Artifact: "vectorizer", Location: l.vectorizerPath, Err: err}
	}

	var classifier *model.Model
	err = l.read(ctx, l.classifierPath, func(r io.Reader) (err error) {
		classifier, err = model.DecodeClassifier(r, l.classifierPath)
		return err
	})
	if err != nil {
		return nil, &core.ArtifactLoadError{Artifact: "classifier", Location: l.classifierPath, Err: err}
	}

	artifacts, err := core.NewArtifacts(vectorizer, classifier, l.spamLabel, classifier.Name())
	if err != nil {
		return nil, &core.ArtifactLoadError{Artifact: "model", Location: l.classifierPath, Err: err}
	}

	l.logger.Info("Loaded model artifacts",
		zap.String("vectorizer", l.vectorizerPath),
		zap.String("classifier", l.classifierPath),
		zap.String("model", classifier.Name()),
		zap.Int("vocabulary_size", vectorizer.Dim()),
		zap.Int("n_features", classifier.NFeatures()),
		zap.Int("spam_label", l.spamLabel),
		zap.Duration("elapsed", time.Since(start)))

	return artifacts, nil
}

// LoadResult loads the artifacts and reports a failure once, keeping the
// error for the prediction service instead of aborting the process
func (l *Loader) LoadResult(ctx context.Context) core.LoadResult {
	artifacts, err := l.Load(ctx)
	if err != nil {
		l.logger.Error("Model artifacts unavailable, predictions disabled", zap.Error(err))
		return core.LoadResult{Err: err}
	}
	return core.LoadResult{Artifacts: artifacts}
}

func (l *Loader) read(ctx context.Context, location string, decode func(io.Reader) error) error {
	if location == "" {
		return fmt.Errorf("no location configured")
	}

	source, err := l.sourceFor(location)
	if err != nil {
		return err
	}

	rc, err := source.Open(ctx, location)
	if err != nil {
		return err
	}
	defer rc.Close()

	return decode(rc)
}

func (l *Loader) sourceFor(location string) (ports.ArtifactSource, error) {
	for _, s := range l.sources {
		if s.Supports(location) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("no artifact source supports %q", location)
}
