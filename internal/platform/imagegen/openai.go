package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAIImages struct {
	client openai.Client
	model  string
	size   string
	ready  bool
}

func NewOpenAI(cfg Config) Client {
	key := strings.TrimSpace(cfg.OpenAIAPIKey)
	opts := []option.RequestOption{option.WithAPIKey(key)}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	model := strings.TrimSpace(cfg.OpenAIModel)
	if model == "" {
		model = "dall-e-3"
	}
	size := strings.TrimSpace(cfg.OpenAISize)
	if size == "" {
		size = "1024x1024"
	}
	return &openAIImages{client: openai.NewClient(opts...), model: model, size: size, ready: key != ""}
}

func (o *openAIImages) Generate(ctx context.Context, prompt string) (Image, error) {
	if !o.ready {
		return Image{}, ErrMissingCredential
	}
	resp, err := o.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(o.model),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize(o.size),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	})
	if err != nil {
		return Image{}, fmt.Errorf("openai images: %w", err)
	}
	if resp == nil || len(resp.Data) == 0 || strings.TrimSpace(resp.Data[0].B64JSON) == "" {
		return Image{}, ErrEmptyImage
	}
	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return Image{}, fmt.Errorf("decode image base64: %w", err)
	}
	return Image{Bytes: raw, MimeType: "image/png"}, nil
}
