package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LoadResult is the outcome of loading the model artifacts at startup:
// either ready Artifacts or the load error, never both.
type LoadResult struct {
	Artifacts *Artifacts
	Err       error
}

// Ready reports whether predictions can be served
func (r LoadResult) Ready() bool {
	return r.Err == nil && r.Artifacts != nil
}

// PredictionService is the core service for spam prediction
type PredictionService struct {
	state        LoadResult
	normalizer   TextNormalizer
	cache        CacheRepository
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
	now          func() time.Time
}

// NewPredictionService creates a new prediction service
func NewPredictionService(
	state LoadResult,
	normalizer TextNormalizer,
	cache CacheRepository,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
) *PredictionService {
	if state.Err == nil && state.Artifacts == nil {
		state.Err = errors.New("no artifacts loaded")
	}
	return &PredictionService{
		state:        state,
		normalizer:   normalizer,
		cache:        cache,
		logger:       logger,
		cacheEnabled: cacheEnabled && cache != nil,
		cacheTTL:     cacheTTL,
		now:          time.Now,
	}
}

// Ready reports whether the artifacts loaded successfully
func (s *PredictionService) Ready() bool {
	return s.state.Ready()
}

// LoadError returns the artifact load error, if any
func (s *PredictionService) LoadError() error {
	return s.state.Err
}

// ModelName returns the name of the loaded model, or "" when unavailable
func (s *PredictionService) ModelName() string {
	if !s.Ready() {
		return ""
	}
	return s.state.Artifacts.Name()
}

// Predict classifies a raw message
func (s *PredictionService) Predict(ctx context.Context, raw string) (*Prediction, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyInput
	}
	if !s.Ready() {
		return nil, fmt.Errorf("%w: %w", ErrArtifactsUnavailable, s.state.Err)
	}

	normalized := s.normalizer.Normalize(raw)

	if s.cacheEnabled {
		artifacts := s.state.Artifacts
		entry, err := s.cache.Get(ctx, normalized)
		switch {
		case err != nil:
			// miss
		case entry.ModelUsed != artifacts.Name():
			s.logger.Debug("Ignoring cache entry from another model",
				zap.String("normalized", normalized),
				zap.String("cached_model", entry.ModelUsed),
				zap.String("model", artifacts.Name()))
		default:
			s.logger.Debug("Cache hit for message", zap.String("normalized", normalized))
			return &Prediction{
				Verdict:      artifacts.VerdictFor(entry.Label),
				Label:        entry.Label,
				Normalized:   normalized,
				ModelUsed:    entry.ModelUsed,
				AnalyzedAt:   s.now(),
				ProcessingID: uuid.NewString(),
				FromCache:    true,
			}, nil
		}
	}

	prediction, err := s.infer(normalized)
	if err != nil {
		return nil, err
	}

	if s.cacheEnabled {
		now := s.now()
		entry := &CacheEntry{
			Key:       normalized,
			Verdict:   prediction.Verdict,
			Label:     prediction.Label,
			ModelUsed: prediction.ModelUsed,
			LastSeen:  now,
			ExpiresAt: now.Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	return prediction, nil
}

// infer runs the vectorizer and classifier on a normalized document
func (s *PredictionService) infer(normalized string) (*Prediction, error) {
	artifacts := s.state.Artifacts

	vectors, err := artifacts.vectorizer.Transform([]string{normalized})
	if err != nil {
		return nil, &InferenceError{Stage: "vectorization", Err: err}
	}
	if len(vectors) != 1 {
		return nil, &InferenceError{
			Stage: "vectorization",
			Err:   fmt.Errorf("expected 1 vector, got %d", len(vectors)),
		}
	}

	labels, err := artifacts.classifier.Predict(vectors)
	if err != nil {
		return nil, &InferenceError{Stage: "classification", Err: err}
	}
	if len(labels) != 1 {
		return nil, &InferenceError{
			Stage: "classification",
			Err:   fmt.Errorf("expected 1 label, got %d", len(labels)),
		}
	}

	scores, err := artifacts.classifier.Scores(vectors[0])
	if err != nil {
		return nil, &InferenceError{Stage: "classification", Err: err}
	}

	label := labels[0]
	return &Prediction{
		Verdict:      artifacts.VerdictFor(label),
		Label:        label,
		Normalized:   normalized,
		Scores:       scores,
		ModelUsed:    artifacts.Name(),
		AnalyzedAt:   s.now(),
		ProcessingID: uuid.NewString(),
	}, nil
}
