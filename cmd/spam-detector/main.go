package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mikey/sms-spam-detector/internal/core"
	"github.com/mikey/sms-spam-detector/internal/di"
	"github.com/mikey/sms-spam-detector/internal/ports"
	"go.uber.org/zap"
)

const (
	exitOK          = 0
	exitUnavailable = 1
	exitEmptyInput  = 2
)

func main() {
	flags := di.ParseFlags()

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(exitUnavailable)
	}

	code := exitOK
	err = container.Invoke(func(logger *zap.Logger, frontend ports.Frontend) error {
		defer logger.Sync()
		code = run(flags, logger, frontend, os.Stdin)
		return nil
	})
	if err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(exitUnavailable)
	}
	os.Exit(code)
}

// run classifies one message and maps the outcome to an exit code
func run(flags *di.CLIFlags, logger *zap.Logger, frontend ports.Frontend, stdin io.Reader) int {
	message, err := readMessage(flags, logger, stdin)
	if err != nil {
		logger.Error("Failed to read message", zap.Error(err))
		return exitUnavailable
	}

	if _, err := frontend.ProcessMessage(context.Background(), message); err != nil {
		if errors.Is(err, core.ErrEmptyInput) {
			return exitEmptyInput
		}
		return exitUnavailable
	}
	return exitOK
}

// readMessage takes the message from -message, then -file, then stdin
func readMessage(flags *di.CLIFlags, logger *zap.Logger, stdin io.Reader) (string, error) {
	if flags.Message != "" {
		return flags.Message, nil
	}

	var reader io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return "", fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		reader = file
		logger.Info("Reading message from file", zap.String("file", flags.InputFile))
	} else {
		reader = stdin
		logger.Info("Reading message from stdin")
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
