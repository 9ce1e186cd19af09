package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/simonyos/lfm/internal/config"
)

// Provider names accepted by NewProvider
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Provider is the interface for LLM backends
type Provider interface {
	// Generate produces a response given messages
	Generate(ctx context.Context, messages []Message, opts Options) (string, error)

	// Name identifies the backend in logs and spans
	Name() string

	// ModelName returns the model being used
	ModelName() string
}

// NewProvider builds a provider by name, reading endpoints and keys from config
func NewProvider(name, model string) (Provider, error) {
	switch strings.ToLower(name) {
	case "", ProviderOllama:
		return NewOllama(config.GetOllamaURL(), model), nil
	case ProviderOpenAI:
		return NewOpenAI(config.GetOpenAIBaseURL(), config.GetOpenAIKey(), model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (available: %s, %s)", name, ProviderOllama, ProviderOpenAI)
	}
}
