package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"
)

type geminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGemini(ctx context.Context, cfg Config) (Client, error) {
	if strings.TrimSpace(cfg.GoogleAPIKey) == "" {
		return nil, errors.New("missing GOOGLE_API_KEY")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GoogleAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &geminiClient{client: client, model: cfg.Model, timeout: cfg.Timeout}, nil
}

func (c *geminiClient) GenerateText(ctx context.Context, prompt, systemInstruction string) (string, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}
	var config *genai.GenerateContentConfig
	if strings.TrimSpace(systemInstruction) != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		}
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", classify(string(ProviderGemini), geminiStatus(err), err)
	}
	text := result.Text()
	if text == "" {
		return "", emptyResponse(string(ProviderGemini))
	}
	return text, nil
}

func geminiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == "RESOURCE_EXHAUSTED" {
			return 429
		}
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		if apiErrPtr.Status == "RESOURCE_EXHAUSTED" {
			return 429
		}
		return apiErrPtr.Code
	}
	return 0
}
