package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"horse.fit/mtbridge/internal/cli"
	"horse.fit/mtbridge/internal/config"
	"horse.fit/mtbridge/internal/deepl"
	"horse.fit/mtbridge/internal/logging"
	"horse.fit/mtbridge/internal/provider"
)

// bootstrap loads the env file, configuration and logger shared by every
// command. A missing env file is a warning; most settings have defaults.
func bootstrap(envLoader *cli.EnvLoader) (*config.Config, zerolog.Logger, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("initialize logger: %w", err)
	}

	return cfg, logger, nil
}

func newTranslator(cfg *config.Config, logger zerolog.Logger) *deepl.Translator {
	return deepl.New(provider.Config{
		APIKey:   cfg.DeepLAPIKey,
		Timeout:  cfg.TranslateTimeout(),
		Endpoint: cfg.DeepLEndpoint,
	}, deepl.Options{
		Logger: logger,
		RateLimit: deepl.RateLimitConfig{
			Enabled:   cfg.RateLimitEnabled,
			RefillTPS: cfg.RateLimitRefillTPS,
			Burst:     cfg.RateLimitBurst,
		},
	})
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
