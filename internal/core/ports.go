package core

import (
	"context"
)

// TextNormalizer maps raw message text to normalized token text
type TextNormalizer interface {
	Normalize(text string) string
}

// Vectorizer is a fitted transform from normalized documents to feature vectors
type Vectorizer interface {
	// Transform returns one vector per document
	Transform(docs []string) ([]FeatureVector, error)

	// Dim is the width of every vector Transform returns
	Dim() int
}

// Classifier is a fitted model mapping feature vectors to labels
type Classifier interface {
	// Predict returns one label per vector
	Predict(vectors []FeatureVector) ([]int, error)

	// Scores returns per-class scores for a single vector
	Scores(vector FeatureVector) (map[int]float64, error)
}

// CacheRepository defines the interface for caching predictions
type CacheRepository interface {
	// Get retrieves a live cached entry
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
