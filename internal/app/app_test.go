package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/yungbote/neurobots-backend/internal/platform/llm"
	"github.com/yungbote/neurobots-backend/internal/realtime"
	"github.com/yungbote/neurobots-backend/internal/services"
)

func setTestEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LOG_MODE", "development")
	t.Setenv("LLM_PROVIDER", "mock")
	t.Setenv("IMAGE_PROVIDER", "titlecard")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "test.db"))
	t.Setenv("MEDIA_STORE", "local")
	t.Setenv("MEDIA_LOCAL_DIR", filepath.Join(dir, "media"))
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("AUTH_REQUIRED", "false")
	t.Setenv("OTEL_ENABLED", "false")
}

func TestLoadConfigDefaults(t *testing.T) {
	setTestEnv(t)
	t.Setenv("LLM_RETRY_BASE_DELAY", "250ms")
	t.Setenv("PIPELINE_MAX_INFLIGHT", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LLM.Provider != llm.ProviderMock {
		t.Fatalf("provider=%q", cfg.LLM.Provider)
	}
	if cfg.LLM.Retry.MaxAttempts != 3 || cfg.LLM.Retry.BaseDelay != 250*time.Millisecond || cfg.LLM.Retry.MaxDelay != 30*time.Second {
		t.Fatalf("retry=%+v", cfg.LLM.Retry)
	}
	if cfg.Pipeline.MaxInflight != 2 || cfg.Pipeline.RequestTimeout != 5*time.Minute || cfg.Pipeline.BodyScenes != 8 {
		t.Fatalf("pipeline=%+v", cfg.Pipeline)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors=%v", cfg.CORSOrigins)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	setTestEnv(t)
	t.Setenv("LLM_PROVIDER", "watson")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected unknown provider error")
	}

	setTestEnv(t)
	t.Setenv("MEDIA_STORE", "ftp")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected unknown media store error")
	}

	setTestEnv(t)
	t.Setenv("AUTH_REQUIRED", "true")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected missing secret error")
	}
}

func TestAppGeneratesAndForwardsProgress(t *testing.T) {
	setTestEnv(t)
	ctx := context.Background()

	a, err := New(ctx)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close(ctx)
	if err := a.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	client := a.SSEHub.NewSSEClient()
	a.SSEHub.AddChannel(client, realtime.RunChannel("run-1"))
	defer a.SSEHub.CloseClient(client)

	res, err := a.Services.Lesson.Generate(ctx, services.GenerateInput{Topic: "Ohm's law", RunID: "run-1"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got := len(res.Record.Assets.Data().VideoStoryboard); got != 10 {
		t.Fatalf("scenes=%d", got)
	}
	if res.ImagesMissing != 0 {
		t.Fatalf("title cards should render every scene, missing=%d", res.ImagesMissing)
	}

	var events []realtime.SSEEvent
	timeout := time.After(2 * time.Second)
	for len(events) == 0 || events[len(events)-1] != realtime.SSEEventLessonReady {
		select {
		case msg := <-client.Outbound:
			events = append(events, msg.Event)
		case <-timeout:
			t.Fatalf("no lesson.ready event, got %v", events)
		}
	}
	if events[0] != realtime.SSEEventPipelineState {
		t.Fatalf("first event=%q", events[0])
	}
}
