package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/streamsynth-io/streamsynth-engine/pkg/config"
)

// NewClient creates the text-generation client selected by configuration.
// Returns the Client interface to enable dependency injection of mocks.
func NewClient(cfg *config.Config, logger *zap.Logger) (Client, error) {
	switch cfg.AIProvider() {
	case config.ProviderOpenAI:
		return NewOpenAIClient(&OpenAIConfig{
			BaseURL: cfg.AI.BaseURL,
			Model:   cfg.AI.Model,
			APIKey:  cfg.AI.APIKey,
		}, logger)

	case config.ProviderAnthropic:
		return NewAnthropicClient(&AnthropicConfig{
			Model:  cfg.AI.AnthropicModel,
			APIKey: cfg.AI.AnthropicAPIKey,
		}, logger)

	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AI.Provider)
	}
}
