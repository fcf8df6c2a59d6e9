package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/neurobots-backend/internal/data/db"
	"github.com/yungbote/neurobots-backend/internal/modules/lessongen"
	"github.com/yungbote/neurobots-backend/internal/observability"
	"github.com/yungbote/neurobots-backend/internal/platform/envutil"
	"github.com/yungbote/neurobots-backend/internal/platform/imagegen"
	"github.com/yungbote/neurobots-backend/internal/platform/llm"
	"github.com/yungbote/neurobots-backend/internal/platform/mediastore"
	"github.com/yungbote/neurobots-backend/internal/platform/retry"
	"github.com/yungbote/neurobots-backend/internal/realtime/bus"
)

type Config struct {
	LogMode     string
	Port        string
	Environment string

	LLM      llm.Config
	Images   imagegen.Config
	Pipeline lessongen.Config
	DB       db.Config

	MediaStore  string
	MediaDir    string
	MediaPrefix string
	GCS         mediastore.GCSConfig

	Redis bus.RedisConfig

	Otel           observability.OtelConfig
	MetricsEnabled bool

	JWTSecretKey string
	AuthRequired bool
	CORSOrigins  []string
}

// LoadConfig reads the environment once. Only malformed provider names are
// errors; everything else falls back to its default.
func LoadConfig() (Config, error) {
	provider, err := llm.ParseProvider(envutil.String("LLM_PROVIDER", "mock"))
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		LogMode:     envutil.String("LOG_MODE", "development"),
		Port:        envutil.String("PORT", "8080"),
		Environment: envutil.String("APP_ENV", "development"),

		LLM: llm.Config{
			Provider:        provider,
			Model:           envutil.String("LLM_MODEL", ""),
			OpenAIAPIKey:    envutil.String("OPENAI_API_KEY", ""),
			OpenAIBaseURL:   envutil.String("OPENAI_BASE_URL", ""),
			GoogleAPIKey:    envutil.String("GOOGLE_API_KEY", ""),
			AnthropicAPIKey: envutil.String("ANTHROPIC_API_KEY", ""),
			OllamaHost:      envutil.String("OLLAMA_HOST", ""),
			Timeout:         envutil.Duration("LLM_REQUEST_TIMEOUT", 2*time.Minute),
			Retry: retry.Policy{
				MaxAttempts: envutil.Int("LLM_RETRY_MAX_ATTEMPTS", 3),
				BaseDelay:   envutil.Duration("LLM_RETRY_BASE_DELAY", 2*time.Second),
				Multiplier:  envutil.Float("LLM_RETRY_MULTIPLIER", 2),
				MaxDelay:    envutil.Duration("LLM_RETRY_MAX_DELAY", 30*time.Second),
				Jitter:      envutil.Bool("LLM_RETRY_JITTER", false),
			},
		},

		Images: imagegen.Config{
			Provider:          imagegen.Provider(envutil.String("IMAGE_PROVIDER", string(imagegen.ProviderHuggingFace))),
			HuggingFaceAPIKey: envutil.String("HUGGING_FACE_API_KEY", ""),
			HuggingFaceModel:  envutil.String("HUGGING_FACE_MODEL", ""),
			HuggingFaceURL:    envutil.String("HUGGING_FACE_URL", ""),
			OpenAIAPIKey:      envutil.String("OPENAI_API_KEY", ""),
			OpenAIBaseURL:     envutil.String("OPENAI_BASE_URL", ""),
			OpenAIModel:       envutil.String("OPENAI_IMAGE_MODEL", ""),
			OpenAISize:        envutil.String("OPENAI_IMAGE_SIZE", ""),
			Timeout:           envutil.Duration("IMAGE_REQUEST_TIMEOUT", 90*time.Second),
		},

		Pipeline: lessongen.Config{
			MaxInflight:      envutil.Int("PIPELINE_MAX_INFLIGHT", 4),
			QueueTimeout:     envutil.Duration("PIPELINE_QUEUE_TIMEOUT", 30*time.Second),
			RequestTimeout:   envutil.Duration("PIPELINE_REQUEST_TIMEOUT", 5*time.Minute),
			ImageConcurrency: envutil.Int("STORYBOARD_IMAGE_CONCURRENCY", 4),
			BodyScenes:       envutil.Int("STORYBOARD_BODY_SCENES", 8),
		},

		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", "postgres"),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "neurobots"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:       envutil.String("SQLITE_PATH", "neurobots.db"),
		},

		MediaStore:  strings.ToLower(envutil.String("MEDIA_STORE", "local")),
		MediaDir:    envutil.String("MEDIA_LOCAL_DIR", "generated_images"),
		MediaPrefix: envutil.String("MEDIA_PUBLIC_PREFIX", mediastore.DefaultPublicPrefix),
		GCS: mediastore.GCSConfig{
			Bucket:          envutil.String("MEDIA_GCS_BUCKET", ""),
			Prefix:          envutil.String("MEDIA_GCS_PREFIX", "scenes"),
			CDNDomain:       envutil.String("MEDIA_CDN_DOMAIN", ""),
			CredentialsJSON: envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", ""),
			EmulatorHost:    envutil.String("STORAGE_EMULATOR_HOST", ""),
		},

		Redis: bus.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			Channel:  envutil.String("REDIS_CHANNEL", ""),
		},

		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "neurobots"),
			Environment: envutil.String("APP_ENV", "development"),
			Version:     envutil.String("APP_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			Headers:     envutil.List("OTEL_EXPORTER_OTLP_HEADERS", nil),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 0.1),
		},
		MetricsEnabled: envutil.Bool("METRICS_ENABLED", true),

		JWTSecretKey: envutil.String("JWT_SECRET_KEY", ""),
		AuthRequired: envutil.Bool("AUTH_REQUIRED", false),
		CORSOrigins:  envutil.List("CORS_ALLOWED_ORIGINS", nil),
	}
	switch cfg.MediaStore {
	case "local", "gcs":
	default:
		return Config{}, fmt.Errorf("unknown MEDIA_STORE %q", cfg.MediaStore)
	}
	if cfg.AuthRequired && cfg.JWTSecretKey == "" {
		return Config{}, fmt.Errorf("AUTH_REQUIRED needs JWT_SECRET_KEY")
	}
	return cfg, nil
}
