package frontend

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/mikey/sms-spam-detector/internal/config"
	"github.com/mikey/sms-spam-detector/internal/core"
	"github.com/mikey/sms-spam-detector/internal/model"
	"github.com/mikey/sms-spam-detector/internal/textproc"
)

var testVocabulary = map[string]int{"free": 0, "monei": 1, "prize": 2, "lunch": 3}

// newService builds a prediction service around a small linear model that
// flags "free", "monei" and "prize" as spam
func newService(t *testing.T, nFeatures int) *core.PredictionService {
	t.Helper()
	logger := zaptest.NewLogger(t)

	vectorizer, err := model.NewVectorizer(model.VectorizerSpec{
		Kind:       model.KindCount,
		Vocabulary: testVocabulary,
	})
	if err != nil {
		t.Fatalf("NewVectorizer: %v", err)
	}

	coef := []float64{1, 1, 1, -2}[:nFeatures]
	classifier, err := model.NewClassifier(model.ClassifierSpec{
		Kind:      model.KindLinear,
		Name:      "sms-linear",
		Classes:   []int{0, 1},
		NFeatures: nFeatures,
		Coef:      [][]float64{coef},
		Intercept: []float64{-0.5},
	})
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}

	artifacts, err := core.NewArtifacts(vectorizer, classifier, core.DefaultSpamLabel, classifier.Name())
	if err != nil {
		t.Fatalf("NewArtifacts: %v", err)
	}

	return core.NewPredictionService(
		core.LoadResult{Artifacts: artifacts},
		textproc.NewNormalizer(nil, logger),
		nil, logger, false, 0,
	)
}

func newUnavailableService(t *testing.T) *core.PredictionService {
	t.Helper()
	logger := zaptest.NewLogger(t)
	loadErr := &core.ArtifactLoadError{
		Artifact: "classifier",
		Location: "./models/classifier.json",
		Err:      errors.New("file does not exist"),
	}
	return core.NewPredictionService(core.LoadResult{Err: loadErr}, textproc.NewNormalizer(nil, logger), nil, logger, false, 0)
}

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		FrontendType:  "web",
		ListenAddress: "127.0.0.1:0",
		ReadTimeout:   time.Second,
		WriteTimeout:  time.Second,
		BodyLimit:     "1K",
	}
}
