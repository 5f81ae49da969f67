package di

import (
	"flag"
	"os"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/sms-spam-detector/internal/config"
	"github.com/mikey/sms-spam-detector/internal/core"
	"github.com/mikey/sms-spam-detector/internal/factory"
	"github.com/mikey/sms-spam-detector/internal/logging"
	"github.com/mikey/sms-spam-detector/internal/ports"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Model flags
	VectorizerPath string
	ClassifierPath string
	SpamLabel      int
	S3Region       string
	StopWordsFile  string

	// Input flags
	Message    string
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	return parseFlags(flag.CommandLine, os.Args[1:])
}

func parseFlags(fs *flag.FlagSet, args []string) *CLIFlags {
	flags := &CLIFlags{}

	// Model flags
	fs.StringVar(&flags.VectorizerPath, "vectorizer", "./models/vectorizer.json", "Vectorizer artifact (path, file:// or s3:// URI)")
	fs.StringVar(&flags.ClassifierPath, "classifier", "./models/classifier.json", "Classifier artifact (path, file:// or s3:// URI)")
	fs.IntVar(&flags.SpamLabel, "spam-label", core.DefaultSpamLabel, "Classifier label that means spam")
	fs.StringVar(&flags.S3Region, "s3-region", "us-east-1", "AWS region for s3:// artifacts")
	fs.StringVar(&flags.StopWordsFile, "stop-words", "", "Custom stop-word list, one word per line")

	// Input flags
	fs.StringVar(&flags.Message, "message", "", "Message to classify")
	fs.StringVar(&flags.InputFile, "file", "", "Input message file (use stdin if neither -message nor -file is given)")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	_ = fs.Parse(args)
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.Load(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			// the CLI always reports on stdout
			cfg.GetViper().Set("server.frontend_type", "cli")
			cfg.GetViper().Set("cli.verbose", flags.Verbose)
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	if err := provideCommon(container); err != nil {
		return nil, err
	}

	// Register prediction service with no cache
	if err := container.Provide(func(
		state core.LoadResult,
		normalizer core.TextNormalizer,
		logger *zap.Logger,
	) *core.PredictionService {
		return core.NewPredictionService(
			state,
			normalizer,
			nil, // No cache for CLI
			logger,
			false,            // Cache disabled
			time.Duration(0), // No TTL
		)
	}); err != nil {
		return nil, err
	}

	// Register front end
	if err := container.Provide(func(f *factory.FrontendFactory) (ports.Frontend, error) {
		return f.CreateFrontend()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set some cli specific settings
	v.Set("server.frontend_type", "cli")
	v.Set("cli.verbose", flags.Verbose)
	v.Set("cache.enabled", false)

	v.Set("model.vectorizer_path", flags.VectorizerPath)
	v.Set("model.classifier_path", flags.ClassifierPath)
	v.Set("model.spam_label", flags.SpamLabel)
	v.Set("model.s3_region", flags.S3Region)
	v.Set("text.stop_words_file", flags.StopWordsFile)

	return config.NewFromViper(v)
}
