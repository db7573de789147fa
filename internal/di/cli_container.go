package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/factory"
	"github.com/mikey/inbox-triage/internal/logging"
	"github.com/mikey/inbox-triage/internal/ports"
	"github.com/mikey/inbox-triage/internal/triage"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Draft provider flags
	Provider    string
	MaxTokens   int
	Temperature float64
	TopP        float64
	MaxBodySize int

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIModelName string

	// Triage flags
	TopN     int
	DND      bool
	MaxBatch int

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Draft provider flags
	flag.StringVar(&flags.Provider, "provider", "none", "Draft provider (none, bedrock, gemini, openai)")
	flag.IntVar(&flags.MaxTokens, "max-tokens", 1000, "Maximum tokens for draft generation")
	flag.Float64Var(&flags.Temperature, "temperature", 0.1, "Temperature for draft generation")
	flag.Float64Var(&flags.TopP, "top-p", 0.9, "Top-p for draft generation")
	flag.IntVar(&flags.MaxBodySize, "max-body-size", 4096, "Maximum email body size to send to the provider")

	// Bedrock flags
	flag.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	flag.StringVar(&flags.BedrockModelID, "bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	flag.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	flag.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	flag.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	flag.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4", "OpenAI model name")

	// Triage flags
	flag.IntVar(&flags.TopN, "top-n", 10, "Number of items in the top queue")
	flag.BoolVar(&flags.DND, "dnd", false, "Enable Do-Not-Disturb deferral")
	flag.IntVar(&flags.MaxBatch, "max-batch", 100, "Maximum batch size")

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "", "Input email file (use stdin if not specified)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container
// for the CLI application
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
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}
		return createConfigFromFlags(flags)
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewDraftFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTriageFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewIngestFactory); err != nil {
		return nil, err
	}

	// Register draft provider
	if err := container.Provide(func(f *factory.DraftFactory) (core.DraftProvider, error) {
		return f.CreateDraftProvider()
	}); err != nil {
		return nil, err
	}

	// Register triage service with no sender cache
	if err := container.Provide(func(
		f *factory.TriageFactory,
		drafter core.DraftProvider,
	) (*triage.TriageService, error) {
		return f.CreateTriageService(drafter, nil)
	}); err != nil {
		return nil, err
	}

	// Register email ingestor
	if err := container.Provide(func(f *factory.IngestFactory) (ports.EmailIngestor, error) {
		return f.CreateEmailIngestor()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) (*config.Config, error) {
	v := config.NewEmptyViper()

	v.Set("server.ingest_type", "cli")
	v.Set("cli.verbose", flags.Verbose)
	v.Set("cache.enabled", false)

	v.Set("draft.provider", flags.Provider)

	switch flags.Provider {
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
		v.Set("bedrock.top_p", flags.TopP)
		v.Set("bedrock.max_body_size", flags.MaxBodySize)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModelName)
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
		v.Set("gemini.top_p", flags.TopP)
		v.Set("gemini.max_body_size", flags.MaxBodySize)
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.model_name", flags.OpenAIModelName)
		v.Set("openai.max_tokens", flags.MaxTokens)
		v.Set("openai.temperature", flags.Temperature)
		v.Set("openai.top_p", flags.TopP)
		v.Set("openai.max_body_size", flags.MaxBodySize)
	}

	v.Set("triage.top_n", flags.TopN)
	v.Set("triage.max_batch_size", flags.MaxBatch)
	v.Set("dnd.enabled", flags.DND)

	cfg := config.NewFromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
