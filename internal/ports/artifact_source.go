package ports

import (
	"context"
	"io"
)

// ArtifactSource opens serialized model artifacts by location
type ArtifactSource interface {
	// Supports reports whether the source can open the location
	Supports(location string) bool

	// Open returns a reader for the artifact at location
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}
