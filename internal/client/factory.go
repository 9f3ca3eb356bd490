package client

import (
	"context"
	"fmt"

	"gozen/internal/config"
)

// New creates the client selected by the model configuration.
func New(ctx context.Context, cfg config.ModelConfig) (Client, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiClient(ctx, cfg)
	case "ollama":
		return NewOllamaClient(cfg)
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}
