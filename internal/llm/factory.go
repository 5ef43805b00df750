package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/docquiz/internal/store"
)

// NewProvider builds the configured provider wrapped with request logging.
// The credential is checked first so a missing key fails before any client
// is constructed.
func NewProvider(ctx context.Context, cfg Config, repo store.EventRepo, logger *zap.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini, cfg.Timeout)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI, cfg.Timeout)
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic, cfg.Timeout)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithLogging(base, cfg.Provider, repo, logger), nil
}
