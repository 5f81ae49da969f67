package frontend

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/mikey/sms-spam-detector/internal/core"
	"github.com/mikey/sms-spam-detector/internal/ports"
	"go.uber.org/zap"
)

// previewRunes caps the message echo in verbose mode
const previewRunes = 160

// CliFrontend implements a command-line interface for spam detection
type CliFrontend struct {
	service *core.PredictionService
	logger  *zap.Logger
	verbose bool
	out     io.Writer
}

var _ ports.Frontend = (*CliFrontend)(nil)

// NewCliFrontend creates a new CLI front end writing to stdout
func NewCliFrontend(service *core.PredictionService, logger *zap.Logger, verbose bool) *CliFrontend {
	return &CliFrontend{
		service: service,
		logger:  logger,
		verbose: verbose,
		out:     os.Stdout,
	}
}

// SetOutput redirects the report, mainly for tests
func (f *CliFrontend) SetOutput(w io.Writer) {
	f.out = w
}

// ProcessMessage classifies a message and prints the results
func (f *CliFrontend) ProcessMessage(ctx context.Context, message string) (*core.Prediction, error) {
	f.logger.Debug("Processing message", zap.Int("length", len(message)))

	fmt.Fprintf(f.out, "\n=== Message Summary ===\n")
	fmt.Fprintf(f.out, "Length: %d bytes\n", len(message))
	if f.verbose {
		fmt.Fprintf(f.out, "Text: %s\n", preview(message, previewRunes))
	}

	fmt.Fprintf(f.out, "\n=== Analysis ===\n")
	if name := f.service.ModelName(); name != "" {
		fmt.Fprintf(f.out, "Model: %s\n", name)
	}

	startTime := time.Now()
	result, err := f.service.Predict(ctx, message)
	if err != nil {
		f.logger.Error("Failed to classify message", zap.Error(err))
		fmt.Fprintf(f.out, "Error: %v\n", err)
		return nil, err
	}
	duration := time.Since(startTime)

	fmt.Fprintf(f.out, "\n=== Results ===\n")
	if result.IsSpam() {
		fmt.Fprintf(f.out, "Verdict: Spam\n")
	} else {
		fmt.Fprintf(f.out, "Verdict: Not Spam\n")
	}
	fmt.Fprintf(f.out, "Label: %d\n", result.Label)
	fmt.Fprintf(f.out, "Normalized: %q\n", result.Normalized)
	if f.verbose {
		for _, label := range slices.Sorted(maps.Keys(result.Scores)) {
			fmt.Fprintf(f.out, "Score[%d]: %.4f\n", label, result.Scores[label])
		}
	}
	fmt.Fprintf(f.out, "Processing time: %v\n", duration)

	return result, nil
}

// preview cuts s to at most n runes, never inside a multi-byte sequence
func preview(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + "..."
		}
		i++
	}
	return s
}

// Start is a no-op for the CLI front end
func (f *CliFrontend) Start() error {
	return nil
}

// Stop is a no-op for the CLI front end
func (f *CliFrontend) Stop() error {
	return nil
}
