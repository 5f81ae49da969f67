package core

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when the message is blank
	ErrEmptyInput = errors.New("no input provided")
	// ErrArtifactsUnavailable is returned by Predict when the artifacts failed to load
	ErrArtifactsUnavailable = errors.New("model artifacts unavailable")
)

// ArtifactLoadError reports a vectorizer or classifier that could not be loaded
type ArtifactLoadError struct {
	Artifact string
	Location string
	Err      error
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("failed to load %s from %s: %v", e.Artifact, e.Location, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error {
	return e.Err
}

// InferenceError wraps a failure during vectorization or classification
type InferenceError struct {
	Stage string
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed during %s: %v", e.Stage, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}
