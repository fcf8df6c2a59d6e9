// Package llm is the uniform text generation capability used by every lesson
// stage. Providers are interchangeable and chosen once at process start.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/neurobots-backend/internal/platform/logger"
	"github.com/yungbote/neurobots-backend/internal/platform/retry"
)

// Client generates text for a prompt under an optional system instruction.
// Implementations must be safe for concurrent use.
type Client interface {
	GenerateText(ctx context.Context, prompt, systemInstruction string) (string, error)
}

type Provider string

const (
	ProviderMock      Provider = "mock"
	ProviderOpenAI    Provider = "openai"
	ProviderGemini    Provider = "gemini"
	ProviderAnthropic Provider = "anthropic"
	ProviderOllama    Provider = "ollama"
)

func ParseProvider(raw string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return ProviderMock, nil
	case ProviderMock, ProviderOpenAI, ProviderGemini, ProviderAnthropic, ProviderOllama:
		return p, nil
	default:
		return "", fmt.Errorf("unknown LLM_PROVIDER %q", raw)
	}
}

type Config struct {
	Provider Provider
	Model    string

	OpenAIAPIKey    string
	OpenAIBaseURL   string
	GoogleAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string

	Timeout time.Duration
	Retry   retry.Policy
}

func defaultModel(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderGemini:
		return "gemini-2.0-flash"
	case ProviderAnthropic:
		return "claude-3-5-haiku-latest"
	case ProviderOllama:
		return "llama3.1"
	default:
		return ""
	}
}

// New resolves the configured provider and wraps it with the rate-limit retry
// policy.
func New(ctx context.Context, log *logger.Logger, cfg Config) (Client, error) {
	if cfg.Model == "" {
		cfg.Model = defaultModel(cfg.Provider)
	}
	var (
		base Client
		err  error
	)
	switch cfg.Provider {
	case ProviderMock, "":
		base = NewSimulated()
	case ProviderOpenAI:
		base, err = NewOpenAI(cfg)
	case ProviderGemini:
		base, err = NewGemini(ctx, cfg)
	case ProviderAnthropic:
		base, err = NewAnthropic(cfg)
	case ProviderOllama:
		base, err = NewOllama(cfg)
	default:
		err = fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s client: %w", cfg.Provider, err)
	}
	provider := string(cfg.Provider)
	if provider == "" {
		provider = string(ProviderMock)
	}
	if log != nil {
		log.Info("generation backend selected", "provider", provider, "model", cfg.Model)
	}
	return WithRetry(base, provider, cfg.Retry, log), nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
