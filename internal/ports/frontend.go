package ports

import (
	"context"

	"github.com/mikey/sms-spam-detector/internal/core"
)

// Frontend defines the interface for the presentation layer
type Frontend interface {
	// ProcessMessage classifies a message and presents the result
	ProcessMessage(ctx context.Context, message string) (*core.Prediction, error)

	// Start starts the front end
	Start() error

	// Stop stops the front end
	Stop() error
}
