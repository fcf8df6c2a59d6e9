// Package imagegen reaches image generation backends. Callers treat every
// failure as "no image"; nothing here is fatal to a lesson.
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/neurobots-backend/internal/platform/logger"
)

var (
	ErrMissingCredential = errors.New("image backend credential not configured")
	ErrDisabled          = errors.New("image generation disabled")
	ErrEmptyImage        = errors.New("image backend returned no bytes")
)

type Image struct {
	Bytes    []byte
	MimeType string
}

// Client generates one image for a prompt. Implementations must be safe for
// concurrent use.
type Client interface {
	Generate(ctx context.Context, prompt string) (Image, error)
}

type Provider string

const (
	ProviderHuggingFace Provider = "huggingface"
	ProviderOpenAI      Provider = "openai"
	ProviderTitleCard   Provider = "titlecard"
	ProviderNone        Provider = "none"
)

type Config struct {
	Provider Provider

	HuggingFaceAPIKey string
	HuggingFaceModel  string
	HuggingFaceURL    string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	OpenAISize    string

	Timeout time.Duration
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(string(cfg.Provider))))
	var (
		c   Client
		err error
	)
	switch p {
	case "", ProviderHuggingFace:
		p = ProviderHuggingFace
		c = NewHuggingFace(cfg)
	case ProviderOpenAI:
		c = NewOpenAI(cfg)
	case ProviderTitleCard:
		c, err = NewTitleCard()
	case ProviderNone:
		c = Disabled{}
	default:
		return nil, fmt.Errorf("unknown IMAGE_PROVIDER %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	if log != nil {
		log.Info("image backend selected", "provider", string(p))
	}
	return c, nil
}

// Disabled never produces an image.
type Disabled struct{}

func (Disabled) Generate(context.Context, string) (Image, error) {
	return Image{}, ErrDisabled
}

// Extension maps a mime type to a file extension.
func Extension(mime string) string {
	switch strings.ToLower(strings.TrimSpace(strings.Split(mime, ";")[0])) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
