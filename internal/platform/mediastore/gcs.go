package mediastore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/neurobots-backend/internal/platform/logger"
)

type GCSConfig struct {
	Bucket    string
	Prefix    string
	CDNDomain string
	// CredentialsJSON is inline JSON or a path to a key file. Empty uses ADC.
	CredentialsJSON string
	EmulatorHost    string
}

type GCS struct {
	client *storage.Client
	cfg    GCSConfig
	log    *logger.Logger
}

func NewGCS(ctx context.Context, log *logger.Logger, cfg GCSConfig) (*GCS, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("missing MEDIA_GCS_BUCKET")
	}
	client, err := storage.NewClient(ctx, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	serviceLog := log.With("service", "GCSMediaStore")
	serviceLog.Info("Object storage initialized", "bucket", cfg.Bucket, "cdn_domain", cfg.CDNDomain, "emulator_host", cfg.EmulatorHost)
	return &GCS{client: client, cfg: cfg, log: serviceLog}, nil
}

func clientOptions(cfg GCSConfig) []option.ClientOption {
	if host := strings.TrimSpace(cfg.EmulatorHost); host != "" {
		return []option.ClientOption{option.WithoutAuthentication(), option.WithEndpoint(strings.TrimRight(host, "/") + "/storage/v1/")}
	}
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	creds := strings.TrimSpace(cfg.CredentialsJSON)
	switch {
	case creds == "":
	case strings.HasPrefix(creds, "{"):
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	default:
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return opts
}

func (s *GCS) key(name string) string {
	prefix := strings.Trim(strings.TrimSpace(s.cfg.Prefix), "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func (s *GCS) Save(ctx context.Context, data []byte, mimeType, ext string) (string, error) {
	key := s.key(ObjectName(ext))
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	// DoesNotExist makes a name collision fail instead of overwriting.
	w := s.client.Bucket(s.cfg.Bucket).Object(key).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	if mimeType != "" {
		w.ContentType = mimeType
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return s.PublicURL(key), nil
}

func (s *GCS) PublicURL(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if cdn := strings.TrimSpace(s.cfg.CDNDomain); cdn != "" {
		return fmt.Sprintf("https://%s/%s", cdn, key)
	}
	if host := strings.TrimRight(strings.TrimSpace(s.cfg.EmulatorHost), "/"); host != "" {
		return fmt.Sprintf("%s/%s/%s", host, s.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.cfg.Bucket, key)
}

func (s *GCS) Close() error {
	return s.client.Close()
}
