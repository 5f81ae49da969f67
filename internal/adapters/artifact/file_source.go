package artifact

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mikey/sms-spam-detector/internal/ports"
)

// FileSource opens artifacts from the local filesystem
type FileSource struct{}

var _ ports.ArtifactSource = FileSource{}

// Supports accepts plain paths and file:// URIs
func (FileSource) Supports(location string) bool {
	return !strings.Contains(location, "://") || strings.HasPrefix(location, "file://")
}

// Open opens the artifact file
func (FileSource) Open(_ context.Context, location string) (io.ReadCloser, error) {
	f, err := os.Open(strings.TrimPrefix(location, "file://"))
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact file: %w", err)
	}
	return f, nil
}
