package model

import (
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"
)

// Format is an artifact document encoding
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// DetectFormat picks the encoding from the artifact name. A trailing .gz
// marks gzip compression.
func DetectFormat(name string) (format Format, compressed bool, err error) {
	name = strings.ToLower(name)
	if strings.HasSuffix(name, ".gz") {
		compressed = true
		name = strings.TrimSuffix(name, ".gz")
	}

	switch path.Ext(name) {
	case ".json":
		return FormatJSON, compressed, nil
	case ".yaml", ".yml":
		return FormatYAML, compressed, nil
	default:
		return 0, false, fmt.Errorf("unsupported artifact extension: %q", path.Ext(name))
	}
}

// Decode reads an artifact document into v, choosing the codec from name
func Decode(r io.Reader, name string, v any) error {
	format, compressed, err := DetectFormat(name)
	if err != nil {
		return err
	}

	if compressed {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(v); err != nil {
			return fmt.Errorf("failed to decode YAML artifact: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(v); err != nil {
			return fmt.Errorf("failed to decode JSON artifact: %w", err)
		}
	}
	return nil
}

// DecodeVectorizer reads and validates a vectorizer artifact
func DecodeVectorizer(r io.Reader, name string) (*TermVectorizer, error) {
	var spec VectorizerSpec
	if err := Decode(r, name, &spec); err != nil {
		return nil, err
	}
	return NewVectorizer(spec)
}

// DecodeClassifier reads and validates a classifier artifact
func DecodeClassifier(r io.Reader, name string) (*Model, error) {
	var spec ClassifierSpec
	if err := Decode(r, name, &spec); err != nil {
		return nil, err
	}
	return NewClassifier(spec)
}
