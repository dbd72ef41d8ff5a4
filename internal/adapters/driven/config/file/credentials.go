package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/clipbrd-labs/clipbrd-cli/internal/adapters/driven/model"
)

// credentialsEnv maps provider API keys from environment variables.
type credentialsEnv struct {
	OpenAIKey    string `env:"OPENAI_API_KEY"`
	AnthropicKey string `env:"ANTHROPIC_API_KEY"`
}

// LoadCredentials reads provider API keys from the environment.
// If a .env file exists in configDir (or ~/.clipbrd when configDir is
// empty), it seeds any variables not already set before reading.
// Keys are never written to the config file.
func LoadCredentials(configDir string) (model.Credentials, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return model.Credentials{}, err
		}
		configDir = filepath.Join(home, ".clipbrd")
	}

	// godotenv.Load never overwrites variables already in the environment
	envFile := filepath.Join(configDir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return model.Credentials{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg credentialsEnv
	if err := env.Parse(&cfg); err != nil {
		return model.Credentials{}, fmt.Errorf("parse credentials from environment: %w", err)
	}

	return model.Credentials{
		OpenAIKey:    cfg.OpenAIKey,
		AnthropicKey: cfg.AnthropicKey,
	}, nil
}
