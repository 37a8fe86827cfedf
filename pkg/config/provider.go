package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/entrhq/quizpilot/pkg/llm/openai"
)

// BuildProvider creates an LLM provider based on configuration precedence:
// CLI flags > Environment variables > Config file > Defaults
func BuildProvider(cliModel, cliBaseURL, cliAPIKey, defaultModel string) (*openai.Provider, error) {
	finalModel := cliModel
	finalBaseURL := cliBaseURL
	finalAPIKey := cliAPIKey

	if finalAPIKey == "" {
		finalAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if finalBaseURL == "" {
		finalBaseURL = os.Getenv("OPENAI_BASE_URL")
	}

	if fileConfig := GetLLM(); fileConfig != nil {
		// A CLI model equal to the default is treated as unset.
		if cliModel == "" || cliModel == defaultModel {
			if model := fileConfig.GetModel(); model != "" {
				finalModel = model
			}
		}
		if finalBaseURL == "" {
			finalBaseURL = fileConfig.GetBaseURL()
		}
		if finalAPIKey == "" {
			finalAPIKey = fileConfig.GetAPIKey()
		}
	}

	if finalModel == "" {
		finalModel = defaultModel
	}

	if finalAPIKey == "" {
		return nil, errors.New("API key is required. Set OPENAI_API_KEY environment variable, use -api-key flag, or configure in ~/.quizpilot/config.json")
	}

	opts := []openai.ProviderOption{
		openai.WithModel(finalModel),
		openai.WithTemperature(0),
	}
	if finalBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(finalBaseURL))
	}

	provider, err := openai.NewProvider(finalAPIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}
	return provider, nil
}
