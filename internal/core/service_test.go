package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type upperNormalizer struct{}

func (upperNormalizer) Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// keywordVectorizer maps "spam" to column 0 and everything else to column 1
type keywordVectorizer struct {
	calls int
	err   error
}

func (v *keywordVectorizer) Transform(docs []string) ([]FeatureVector, error) {
	v.calls++
	if v.err != nil {
		return nil, v.err
	}
	out := make([]FeatureVector, len(docs))
	for i, doc := range docs {
		var spam, other float64
		for _, tok := range strings.Fields(doc) {
			if tok == "spam" {
				spam++
			} else {
				other++
			}
		}
		out[i] = FeatureVector{Dim: 2, Indices: []int{0, 1}, Values: []float64{spam, other}}
	}
	return out, nil
}

func (v *keywordVectorizer) Dim() int { return 2 }

// thresholdClassifier labels 1 when the spam column is positive
type thresholdClassifier struct {
	calls int
	dim   int
}

func (c *thresholdClassifier) Predict(vectors []FeatureVector) ([]int, error) {
	c.calls++
	labels := make([]int, len(vectors))
	for i, v := range vectors {
		if v.Dim != c.dim {
			return nil, errors.New("dimension mismatch")
		}
		if v.Values[0] > 0 {
			labels[i] = 1
		}
	}
	return labels, nil
}

func (c *thresholdClassifier) Scores(v FeatureVector) (map[int]float64, error) {
	return map[int]float64{0: v.Values[1], 1: v.Values[0]}, nil
}

// constantClassifier labels every vector the same way
type constantClassifier struct {
	label int
	calls int
}

func (c *constantClassifier) Predict(vectors []FeatureVector) ([]int, error) {
	c.calls++
	labels := make([]int, len(vectors))
	for i := range labels {
		labels[i] = c.label
	}
	return labels, nil
}

func (c *constantClassifier) Scores(FeatureVector) (map[int]float64, error) {
	return map[int]float64{c.label: 1}, nil
}

type mapCache struct {
	mu      sync.Mutex
	entries map[string]*CacheEntry
	setErr  error
}

func newMapCache() *mapCache { return &mapCache{entries: map[string]*CacheEntry{}} }

func (m *mapCache) Get(_ context.Context, key string) (*CacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return e, nil
}

func (m *mapCache) Set(_ context.Context, e *CacheEntry) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.Key] = e
	return nil
}

func (m *mapCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *mapCache) Cleanup(context.Context) error { return nil }

func newTestService(t *testing.T, cache CacheRepository) (*PredictionService, *keywordVectorizer, *thresholdClassifier) {
	t.Helper()

	vec := &keywordVectorizer{}
	clf := &thresholdClassifier{dim: 2}
	artifacts, err := NewArtifacts(vec, clf, DefaultSpamLabel, "test-model")
	if err != nil {
		t.Fatalf("NewArtifacts: %v", err)
	}
	svc := NewPredictionService(
		LoadResult{Artifacts: artifacts},
		upperNormalizer{},
		cache,
		zaptest.NewLogger(t),
		cache != nil,
		time.Hour,
	)
	return svc, vec, clf
}

func TestPredictVerdicts(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	p, err := svc.Predict(context.Background(), "This is SPAM")
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	if p.Verdict != Spam || !p.IsSpam() || p.Label != 1 {
		t.Fatalf("expected spam, got %+v", p)
	}
	if p.Normalized != "this is spam" {
		t.Fatalf("unexpected normalized text: %q", p.Normalized)
	}
	if p.ModelUsed != "test-model" || p.ProcessingID == "" {
		t.Fatalf("missing metadata: %+v", p)
	}

	p, err = svc.Predict(context.Background(), "see you at lunch")
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	if p.Verdict != NotSpam || p.Label != 0 {
		t.Fatalf("expected not spam, got %+v", p)
	}
}

func TestPredictEmptyInputSkipsModel(t *testing.T) {
	svc, vec, clf := newTestService(t, nil)

	for _, in := range []string{"", "   ", "\n\t "} {
		_, err := svc.Predict(context.Background(), in)
		if !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("Predict(%q) error = %v, want ErrEmptyInput", in, err)
		}
	}
	if vec.calls != 0 || clf.calls != 0 {
		t.Fatalf("model must not be called for blank input: vectorizer=%d classifier=%d", vec.calls, clf.calls)
	}
}

func TestPredictUnavailableArtifacts(t *testing.T) {
	loadErr := &ArtifactLoadError{Artifact: "classifier", Location: "/missing.json", Err: errors.New("no such file")}
	svc := NewPredictionService(LoadResult{Err: loadErr}, upperNormalizer{}, nil, zaptest.NewLogger(t), false, 0)

	if svc.Ready() {
		t.Fatalf("service must not be ready")
	}

	_, err := svc.Predict(context.Background(), "hello")
	if !errors.Is(err, ErrArtifactsUnavailable) {
		t.Fatalf("expected ErrArtifactsUnavailable, got %v", err)
	}
	var le *ArtifactLoadError
	if !errors.As(err, &le) || le.Artifact != "classifier" {
		t.Fatalf("expected wrapped ArtifactLoadError, got %v", err)
	}
	if svc.ModelName() != "" {
		t.Fatalf("unexpected model name %q", svc.ModelName())
	}
}

func TestPredictZeroLoadResultIsUnavailable(t *testing.T) {
	svc := NewPredictionService(LoadResult{}, upperNormalizer{}, nil, zaptest.NewLogger(t), false, 0)
	if svc.Ready() || svc.LoadError() == nil {
		t.Fatalf("empty load result must be reported as a load failure")
	}
}

func TestPredictInferenceError(t *testing.T) {
	svc, vec, _ := newTestService(t, nil)
	vec.err = errors.New("boom")

	_, err := svc.Predict(context.Background(), "spam")
	var ie *InferenceError
	if !errors.As(err, &ie) || ie.Stage != "vectorization" {
		t.Fatalf("expected vectorization InferenceError, got %v", err)
	}

	vec.err = nil
	svc2, _, clf := newTestService(t, nil)
	clf.dim = 3
	_, err = svc2.Predict(context.Background(), "spam")
	if !errors.As(err, &ie) || ie.Stage != "classification" {
		t.Fatalf("expected classification InferenceError, got %v", err)
	}
}

func TestPredictDeterministic(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	first, err := svc.Predict(context.Background(), "spam spam lunch")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		p, err := svc.Predict(context.Background(), "spam spam lunch")
		if err != nil {
			t.Fatal(err)
		}
		if p.Verdict != first.Verdict || p.Label != first.Label || p.Normalized != first.Normalized {
			t.Fatalf("run %d differs: %+v vs %+v", i, p, first)
		}
	}
}

func TestPredictUsesCache(t *testing.T) {
	cache := newMapCache()
	svc, vec, _ := newTestService(t, cache)

	p, err := svc.Predict(context.Background(), "Spam offer")
	if err != nil {
		t.Fatal(err)
	}
	if p.FromCache {
		t.Fatalf("first prediction must not come from cache")
	}

	// Same normalized text, different raw spelling
	p, err = svc.Predict(context.Background(), "  SPAM   offer ")
	if err != nil {
		t.Fatal(err)
	}
	if !p.FromCache || p.Verdict != Spam {
		t.Fatalf("expected cached spam verdict, got %+v", p)
	}
	if vec.calls != 1 {
		t.Fatalf("vectorizer called %d times, want 1", vec.calls)
	}
}

func newConstantService(t *testing.T, cache CacheRepository, name string, label, spamLabel int) (*PredictionService, *constantClassifier) {
	t.Helper()

	clf := &constantClassifier{label: label}
	artifacts, err := NewArtifacts(&keywordVectorizer{}, clf, spamLabel, name)
	if err != nil {
		t.Fatalf("NewArtifacts: %v", err)
	}
	svc := NewPredictionService(LoadResult{Artifacts: artifacts}, upperNormalizer{}, cache, zaptest.NewLogger(t), true, time.Hour)
	return svc, clf
}

func TestPredictIgnoresCacheFromOtherModel(t *testing.T) {
	cache := newMapCache()
	v1, _ := newConstantService(t, cache, "model-v1", 1, DefaultSpamLabel)
	v2, clf2 := newConstantService(t, cache, "model-v2", 0, DefaultSpamLabel)

	p, err := v1.Predict(context.Background(), "hello there")
	if err != nil {
		t.Fatal(err)
	}
	if p.Verdict != Spam || p.ModelUsed != "model-v1" {
		t.Fatalf("unexpected v1 prediction %+v", p)
	}

	p, err = v2.Predict(context.Background(), "hello there")
	if err != nil {
		t.Fatal(err)
	}
	if p.FromCache || p.Verdict != NotSpam || p.ModelUsed != "model-v2" {
		t.Fatalf("v2 must not reuse the v1 verdict, got %+v", p)
	}
	if clf2.calls != 1 {
		t.Fatalf("v2 classifier called %d times, want 1", clf2.calls)
	}

	// v2 replaced the entry, so it now hits
	p, err = v2.Predict(context.Background(), "hello there")
	if err != nil {
		t.Fatal(err)
	}
	if !p.FromCache || p.ModelUsed != "model-v2" {
		t.Fatalf("expected a v2 cache hit, got %+v", p)
	}
}

func TestPredictCacheHitUsesCurrentSpamLabel(t *testing.T) {
	cache := newMapCache()
	first, _ := newConstantService(t, cache, "sms-model", 1, 1)
	second, clf := newConstantService(t, cache, "sms-model", 1, 0)

	if _, err := first.Predict(context.Background(), "win now"); err != nil {
		t.Fatal(err)
	}

	p, err := second.Predict(context.Background(), "win now")
	if err != nil {
		t.Fatal(err)
	}
	if !p.FromCache || clf.calls != 0 {
		t.Fatalf("expected a cache hit, got %+v (classifier calls %d)", p, clf.calls)
	}
	if p.Label != 1 || p.Verdict != NotSpam {
		t.Fatalf("verdict must follow the configured spam label, got %+v", p)
	}
}

func TestPredictCacheWriteFailureIsNotFatal(t *testing.T) {
	cache := newMapCache()
	cache.setErr = errors.New("disk full")
	svc, _, _ := newTestService(t, cache)
	obs, logs := observer.New(zap.ErrorLevel)
	svc.logger = zap.New(obs)

	if _, err := svc.Predict(context.Background(), "spam"); err != nil {
		t.Fatalf("cache failures must not fail predictions: %v", err)
	}
	if logs.FilterMessage("Failed to update cache").Len() != 1 {
		t.Fatalf("expected the cache failure to be logged, got %v", logs.All())
	}
}

func TestArtifactsVerdictFor(t *testing.T) {
	a, err := NewArtifacts(&keywordVectorizer{}, &thresholdClassifier{}, 4, "m")
	if err != nil {
		t.Fatal(err)
	}
	if a.VerdictFor(4) != Spam || a.VerdictFor(1) != NotSpam || a.VerdictFor(0) != NotSpam {
		t.Fatalf("label mapping must follow the configured spam label")
	}

	if _, err := NewArtifacts(nil, &thresholdClassifier{}, 1, "m"); err == nil {
		t.Fatalf("expected error for missing vectorizer")
	}
}

func TestVerdictString(t *testing.T) {
	if Spam.String() != "spam" || NotSpam.String() != "not_spam" {
		t.Fatalf("unexpected verdict names: %s %s", Spam, NotSpam)
	}
}
