package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAIClient struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAI(cfg Config) (Client, error) {
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		return nil, errors.New("missing OPENAI_API_KEY")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAIAPIKey),
		// WithRetry owns backoff.
		option.WithMaxRetries(0),
	}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}
	return &openAIClient{client: openai.NewClient(opts...), model: cfg.Model, timeout: cfg.Timeout}, nil
}

func (c *openAIClient) GenerateText(ctx context.Context, prompt, systemInstruction string) (string, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	var msgs []openai.ChatCompletionMessageParamUnion
	if strings.TrimSpace(systemInstruction) != "" {
		msgs = append(msgs, openai.SystemMessage(systemInstruction))
	}
	msgs = append(msgs, openai.UserMessage(prompt))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: msgs,
	})
	if err != nil {
		status := 0
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return "", classify(string(ProviderOpenAI), status, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", emptyResponse(string(ProviderOpenAI))
	}
	return resp.Choices[0].Message.Content, nil
}
