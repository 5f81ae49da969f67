package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/mikey/sms-spam-detector/internal/core"
)

// Classifier kinds
const (
	KindMultinomialNB = "multinomial_nb"
	KindBernoulliNB   = "bernoulli_nb"
	KindLinear        = "linear"
)

// ErrDimensionMismatch is returned when a vector does not match the
// classifier's feature count
var ErrDimensionMismatch = errors.New("feature dimension mismatch")

// ClassifierSpec is the exported state of a fitted naive Bayes or linear model
type ClassifierSpec struct {
	Kind           string      `json:"kind" yaml:"kind"`
	Name           string      `json:"name,omitempty" yaml:"name,omitempty"`
	Classes        []int       `json:"classes" yaml:"classes"`
	NFeatures      int         `json:"n_features" yaml:"n_features"`
	ClassLogPrior  []float64   `json:"class_log_prior,omitempty" yaml:"class_log_prior,omitempty"`
	FeatureLogProb [][]float64 `json:"feature_log_prob,omitempty" yaml:"feature_log_prob,omitempty"`
	Binarize       *float64    `json:"binarize,omitempty" yaml:"binarize,omitempty"`
	Coef           [][]float64 `json:"coef,omitempty" yaml:"coef,omitempty"`
	Intercept      []float64   `json:"intercept,omitempty" yaml:"intercept,omitempty"`
}

// scorer computes one decision value per row of the model
type scorer interface {
	decision(v core.FeatureVector) []float64
}

// Model is a fitted classifier. It is read-only after construction.
type Model struct {
	name      string
	classes   []int
	nFeatures int
	scorer    scorer
	// binaryLinear marks a single-row linear model whose decision value
	// selects classes[1] when positive
	binaryLinear bool
}

var _ core.Classifier = (*Model)(nil)

// NewClassifier validates a spec and builds the classifier
func NewClassifier(spec ClassifierSpec) (*Model, error) {
	if len(spec.Classes) < 2 {
		return nil, fmt.Errorf("need at least 2 classes, got %d", len(spec.Classes))
	}
	if spec.NFeatures <= 0 {
		return nil, fmt.Errorf("n_features must be positive")
	}

	m := &Model{
		name:      spec.Name,
		classes:   spec.Classes,
		nFeatures: spec.NFeatures,
	}
	if m.name == "" {
		m.name = spec.Kind
	}

	var err error
	switch spec.Kind {
	case KindMultinomialNB:
		m.scorer, err = newMultinomialNB(spec)
	case KindBernoulliNB:
		m.scorer, err = newBernoulliNB(spec)
	case KindLinear:
		m.scorer, err = newLinear(spec)
		m.binaryLinear = len(spec.Coef) == 1
	default:
		err = fmt.Errorf("unsupported classifier kind: %q", spec.Kind)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Name identifies the model
func (m *Model) Name() string {
	return m.name
}

// NFeatures is the vector width the model was trained on
func (m *Model) NFeatures() int {
	return m.nFeatures
}

// Predict returns the label with the highest score for each vector
func (m *Model) Predict(vectors []core.FeatureVector) ([]int, error) {
	labels := make([]int, len(vectors))
	for i, v := range vectors {
		if err := m.check(v); err != nil {
			return nil, err
		}
		labels[i] = m.label(m.scorer.decision(v))
	}
	return labels, nil
}

// Scores returns the raw decision values keyed by class label: joint log
// likelihoods for naive Bayes, decision function values for linear models
func (m *Model) Scores(v core.FeatureVector) (map[int]float64, error) {
	if err := m.check(v); err != nil {
		return nil, err
	}
	d := m.scorer.decision(v)
	scores := make(map[int]float64, len(m.classes))
	if m.binaryLinear {
		scores[m.classes[0]] = -d[0]
		scores[m.classes[1]] = d[0]
		return scores, nil
	}
	for i, c := range m.classes {
		scores[c] = d[i]
	}
	return scores, nil
}

func (m *Model) check(v core.FeatureVector) error {
	if v.Dim != m.nFeatures {
		return fmt.Errorf("%w: vector has %d features, model expects %d", ErrDimensionMismatch, v.Dim, m.nFeatures)
	}
	if len(v.Indices) != len(v.Values) {
		return fmt.Errorf("malformed vector: %d indices, %d values", len(v.Indices), len(v.Values))
	}
	for _, idx := range v.Indices {
		if idx < 0 || idx >= m.nFeatures {
			return fmt.Errorf("%w: index %d out of range", ErrDimensionMismatch, idx)
		}
	}
	return nil
}

func (m *Model) label(d []float64) int {
	if m.binaryLinear {
		if d[0] > 0 {
			return m.classes[1]
		}
		return m.classes[0]
	}
	return m.classes[argmax(d)]
}

// argmax returns the first index of the maximum value
func argmax(xs []float64) int {
	best := 0
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[best] {
			best = i
		}
	}
	return best
}

func checkMatrix(name string, rows [][]float64, nRows, nCols int) error {
	if len(rows) != nRows {
		return fmt.Errorf("%s has %d rows, want %d", name, len(rows), nRows)
	}
	for i, row := range rows {
		if len(row) != nCols {
			return fmt.Errorf("%s row %d has %d columns, want %d", name, i, len(row), nCols)
		}
	}
	return nil
}

// multinomialNB scores log P(c) + sum_j x_j log P(j|c)
type multinomialNB struct {
	classLogPrior  []float64
	featureLogProb [][]float64
}

func newMultinomialNB(spec ClassifierSpec) (*multinomialNB, error) {
	if len(spec.ClassLogPrior) != len(spec.Classes) {
		return nil, fmt.Errorf("class_log_prior has %d entries for %d classes", len(spec.ClassLogPrior), len(spec.Classes))
	}
	if err := checkMatrix("feature_log_prob", spec.FeatureLogProb, len(spec.Classes), spec.NFeatures); err != nil {
		return nil, err
	}
	return &multinomialNB{
		classLogPrior:  spec.ClassLogPrior,
		featureLogProb: spec.FeatureLogProb,
	}, nil
}

func (nb *multinomialNB) decision(v core.FeatureVector) []float64 {
	jll := make([]float64, len(nb.classLogPrior))
	for c, prior := range nb.classLogPrior {
		sum := prior
		for k, idx := range v.Indices {
			sum += v.Values[k] * nb.featureLogProb[c][idx]
		}
		jll[c] = sum
	}
	return jll
}

// bernoulliNB scores features through log P(j|c) and counts absent
// features through log(1 - P(j|c)). A nil threshold scores the raw values.
type bernoulliNB struct {
	threshold     *float64
	classLogPrior []float64
	// delta is log P(j|c) - log(1 - P(j|c))
	delta  [][]float64
	negSum []float64
}

func newBernoulliNB(spec ClassifierSpec) (*bernoulliNB, error) {
	if len(spec.ClassLogPrior) != len(spec.Classes) {
		return nil, fmt.Errorf("class_log_prior has %d entries for %d classes", len(spec.ClassLogPrior), len(spec.Classes))
	}
	if err := checkMatrix("feature_log_prob", spec.FeatureLogProb, len(spec.Classes), spec.NFeatures); err != nil {
		return nil, err
	}

	nb := &bernoulliNB{
		classLogPrior: spec.ClassLogPrior,
		delta:         make([][]float64, len(spec.Classes)),
		negSum:        make([]float64, len(spec.Classes)),
	}
	if spec.Binarize != nil {
		t := *spec.Binarize
		nb.threshold = &t
	}
	for c, row := range spec.FeatureLogProb {
		nb.delta[c] = make([]float64, len(row))
		for j, lp := range row {
			neg := math.Log1p(-math.Exp(lp))
			nb.negSum[c] += neg
			nb.delta[c][j] = lp - neg
		}
	}
	return nb, nil
}

func (nb *bernoulliNB) decision(v core.FeatureVector) []float64 {
	jll := make([]float64, len(nb.classLogPrior))
	for c, prior := range nb.classLogPrior {
		sum := prior + nb.negSum[c]
		for k, idx := range v.Indices {
			x := v.Values[k]
			if nb.threshold != nil {
				x = 0
				if v.Values[k] > *nb.threshold {
					x = 1
				}
			}
			sum += x * nb.delta[c][idx]
		}
		jll[c] = sum
	}
	return jll
}

// linear scores w_k . x + b_k per row
type linear struct {
	coef      [][]float64
	intercept []float64
}

func newLinear(spec ClassifierSpec) (*linear, error) {
	rows := len(spec.Classes)
	if len(spec.Classes) == 2 {
		rows = 1
	}
	if err := checkMatrix("coef", spec.Coef, rows, spec.NFeatures); err != nil {
		return nil, err
	}
	if len(spec.Intercept) != rows {
		return nil, fmt.Errorf("intercept has %d entries, want %d", len(spec.Intercept), rows)
	}
	return &linear{coef: spec.Coef, intercept: spec.Intercept}, nil
}

func (l *linear) decision(v core.FeatureVector) []float64 {
	out := make([]float64, len(l.coef))
	for r, w := range l.coef {
		sum := l.intercept[r]
		for k, idx := range v.Indices {
			sum += v.Values[k] * w[idx]
		}
		out[r] = sum
	}
	return out
}
