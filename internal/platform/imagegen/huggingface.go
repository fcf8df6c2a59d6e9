package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/neurobots-backend/internal/platform/httpx"
)

const (
	defaultHuggingFaceURL   = "https://api-inference.huggingface.co/models"
	defaultHuggingFaceModel = "stabilityai/stable-diffusion-xl-base-1.0"
	maxImageBytes           = 20 << 20
)

type huggingFace struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

func NewHuggingFace(cfg Config) Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.HuggingFaceURL), "/")
	if base == "" {
		base = defaultHuggingFaceURL
	}
	model := strings.TrimSpace(cfg.HuggingFaceModel)
	if model == "" {
		model = defaultHuggingFaceModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &huggingFace{
		apiKey:     strings.TrimSpace(cfg.HuggingFaceAPIKey),
		endpoint:   base + "/" + model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (h *huggingFace) Generate(ctx context.Context, prompt string) (Image, error) {
	if h.apiKey == "" {
		return Image{}, ErrMissingCredential
	}
	body, err := json.Marshal(map[string]string{"inputs": prompt})
	if err != nil {
		return Image{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return Image{}, err
	}
	req.Header.Set("Authorization", "Bearer "+h.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/*")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("huggingface request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return Image{}, fmt.Errorf("huggingface read: %w", err)
	}
	if err := httpx.CheckResponse(resp, raw, time.Minute); err != nil {
		return Image{}, err
	}
	if len(raw) == 0 {
		return Image{}, ErrEmptyImage
	}
	mime := strings.TrimSpace(strings.Split(resp.Header.Get("Content-Type"), ";")[0])
	if !strings.HasPrefix(mime, "image/") {
		mime = http.DetectContentType(raw)
	}
	return Image{Bytes: raw, MimeType: mime}, nil
}
