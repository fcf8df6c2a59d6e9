package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

type ollamaClient struct {
	client  *api.Client
	model   string
	timeout time.Duration
}

func NewOllama(cfg Config) (Client, error) {
	host := strings.TrimSpace(cfg.OllamaHost)
	if host == "" {
		host = "http://localhost:11434"
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse OLLAMA_HOST: %w", err)
	}
	return &ollamaClient{
		client:  api.NewClient(base, http.DefaultClient),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

func (c *ollamaClient) GenerateText(ctx context.Context, prompt, systemInstruction string) (string, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	var msgs []api.Message
	if strings.TrimSpace(systemInstruction) != "" {
		msgs = append(msgs, api.Message{Role: "system", Content: systemInstruction})
	}
	msgs = append(msgs, api.Message{Role: "user", Content: prompt})

	stream := false
	var b strings.Builder
	err := c.client.Chat(ctx, &api.ChatRequest{
		Model:    c.model,
		Messages: msgs,
		Stream:   &stream,
	}, func(resp api.ChatResponse) error {
		b.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		status := 0
		var se api.StatusError
		if errors.As(err, &se) {
			status = se.StatusCode
		}
		return "", classify(string(ProviderOllama), status, err)
	}
	if b.Len() == 0 {
		return "", emptyResponse(string(ProviderOllama))
	}
	return b.String(), nil
}
