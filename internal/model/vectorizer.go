package model

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mikey/sms-spam-detector/internal/core"
)

// Vectorizer kinds
const (
	KindCount = "count"
	KindTfidf = "tfidf"
)

// Row normalizations
const (
	NormNone = "none"
	NormL1   = "l1"
	NormL2   = "l2"
)

// VectorizerSpec is the exported state of a fitted CountVectorizer or
// TfidfVectorizer
type VectorizerSpec struct {
	Kind           string         `json:"kind" yaml:"kind"`
	Vocabulary     map[string]int `json:"vocabulary" yaml:"vocabulary"`
	IDF            []float64      `json:"idf,omitempty" yaml:"idf,omitempty"`
	NgramRange     []int          `json:"ngram_range,omitempty" yaml:"ngram_range,omitempty"`
	MinTokenLength int            `json:"min_token_length,omitempty" yaml:"min_token_length,omitempty"`
	Binary         bool           `json:"binary,omitempty" yaml:"binary,omitempty"`
	SublinearTF    bool           `json:"sublinear_tf,omitempty" yaml:"sublinear_tf,omitempty"`
	Norm           string         `json:"norm,omitempty" yaml:"norm,omitempty"`
}

// TermVectorizer reproduces the transform of a fitted term-frequency
// vectorizer. It is read-only after construction.
type TermVectorizer struct {
	kind        string
	vocabulary  map[string]int
	idf         []float64
	minN, maxN  int
	minTokenLen int
	binary      bool
	sublinearTF bool
	norm        string
}

var _ core.Vectorizer = (*TermVectorizer)(nil)

// NewVectorizer validates a spec and builds the vectorizer
func NewVectorizer(spec VectorizerSpec) (*TermVectorizer, error) {
	v := &TermVectorizer{
		kind:        spec.Kind,
		vocabulary:  spec.Vocabulary,
		idf:         spec.IDF,
		minN:        1,
		maxN:        1,
		minTokenLen: spec.MinTokenLength,
		binary:      spec.Binary,
		sublinearTF: spec.SublinearTF,
		norm:        spec.Norm,
	}

	switch spec.Kind {
	case KindCount:
		if len(spec.IDF) > 0 {
			return nil, fmt.Errorf("count vectorizer must not carry idf weights")
		}
		if v.norm == "" {
			v.norm = NormNone
		}
	case KindTfidf:
		// no idf weights means use_idf was off
		if len(spec.IDF) > 0 && len(spec.IDF) != len(spec.Vocabulary) {
			return nil, fmt.Errorf("idf has %d weights for %d terms", len(spec.IDF), len(spec.Vocabulary))
		}
		if v.norm == "" {
			v.norm = NormL2
		}
	default:
		return nil, fmt.Errorf("unsupported vectorizer kind: %q", spec.Kind)
	}

	if len(spec.Vocabulary) == 0 {
		return nil, fmt.Errorf("vocabulary is empty")
	}
	seen := make([]bool, len(spec.Vocabulary))
	for term, col := range spec.Vocabulary {
		if col < 0 || col >= len(seen) || seen[col] {
			return nil, fmt.Errorf("invalid column %d for term %q", col, term)
		}
		seen[col] = true
	}

	switch v.norm {
	case NormNone, NormL1, NormL2:
	default:
		return nil, fmt.Errorf("unsupported norm: %q", v.norm)
	}

	if len(spec.NgramRange) > 0 {
		if len(spec.NgramRange) != 2 || spec.NgramRange[0] < 1 || spec.NgramRange[1] < spec.NgramRange[0] {
			return nil, fmt.Errorf("invalid ngram_range %v", spec.NgramRange)
		}
		v.minN, v.maxN = spec.NgramRange[0], spec.NgramRange[1]
	}
	if v.minTokenLen <= 0 {
		v.minTokenLen = 2
	}

	return v, nil
}

// Dim returns the vocabulary size
func (v *TermVectorizer) Dim() int {
	return len(v.vocabulary)
}

// Transform converts normalized documents into feature vectors.
// Out-of-vocabulary terms are ignored.
func (v *TermVectorizer) Transform(docs []string) ([]core.FeatureVector, error) {
	out := make([]core.FeatureVector, len(docs))
	for i, doc := range docs {
		out[i] = v.transformOne(doc)
	}
	return out, nil
}

func (v *TermVectorizer) transformOne(doc string) core.FeatureVector {
	counts := make(map[int]float64)
	for _, term := range v.terms(doc) {
		if col, ok := v.vocabulary[term]; ok {
			counts[col]++
		}
	}

	indices := make([]int, 0, len(counts))
	for col := range counts {
		indices = append(indices, col)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	for i, col := range indices {
		tf := counts[col]
		if v.binary {
			tf = 1
		}
		if v.kind == KindTfidf {
			if v.sublinearTF {
				tf = 1 + math.Log(tf)
			}
			if len(v.idf) > 0 {
				tf *= v.idf[col]
			}
		}
		values[i] = tf
	}
	normalize(values, v.norm)

	return core.FeatureVector{Dim: v.Dim(), Indices: indices, Values: values}
}

// terms splits a document into tokens and joins them into n-grams
func (v *TermVectorizer) terms(doc string) []string {
	var tokens []string
	for _, tok := range strings.Fields(doc) {
		if utf8.RuneCountInString(tok) >= v.minTokenLen {
			tokens = append(tokens, tok)
		}
	}
	if v.minN == 1 && v.maxN == 1 {
		return tokens
	}

	var terms []string
	for n := v.minN; n <= v.maxN && n <= len(tokens); n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

func normalize(values []float64, norm string) {
	var total float64
	switch norm {
	case NormL1:
		for _, x := range values {
			total += math.Abs(x)
		}
	case NormL2:
		for _, x := range values {
			total += x * x
		}
		total = math.Sqrt(total)
	default:
		return
	}
	if total == 0 {
		return
	}
	for i := range values {
		values[i] /= total
	}
}
