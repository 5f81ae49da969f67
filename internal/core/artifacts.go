package core

import (
	"errors"
)

// DefaultSpamLabel is the classifier label the training pipeline uses for spam
const DefaultSpamLabel = 1

// Artifacts is the immutable, process-wide model state: a fitted vectorizer
// and classifier plus the label that means spam.
type Artifacts struct {
	vectorizer Vectorizer
	classifier Classifier
	spamLabel  int
	name       string
}

// NewArtifacts bundles loaded artifacts. Dimensional compatibility between
// the two is established by the training pipeline and not checked here.
func NewArtifacts(vectorizer Vectorizer, classifier Classifier, spamLabel int, name string) (*Artifacts, error) {
	if vectorizer == nil {
		return nil, errors.New("vectorizer is required")
	}
	if classifier == nil {
		return nil, errors.New("classifier is required")
	}
	return &Artifacts{
		vectorizer: vectorizer,
		classifier: classifier,
		spamLabel:  spamLabel,
		name:       name,
	}, nil
}

// Name identifies the loaded model
func (a *Artifacts) Name() string {
	return a.name
}

// SpamLabel is the label mapped to Spam
func (a *Artifacts) SpamLabel() int {
	return a.spamLabel
}

// VerdictFor maps a classifier label to a verdict
func (a *Artifacts) VerdictFor(label int) Verdict {
	if label == a.spamLabel {
		return Spam
	}
	return NotSpam
}
