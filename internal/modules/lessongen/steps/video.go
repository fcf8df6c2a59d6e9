package steps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/neurobots-backend/internal/domain/lesson"
	"github.com/yungbote/neurobots-backend/internal/observability"
	"github.com/yungbote/neurobots-backend/internal/platform/envutil"
	"github.com/yungbote/neurobots-backend/internal/platform/imagegen"
	"github.com/yungbote/neurobots-backend/internal/platform/llm"
	"github.com/yungbote/neurobots-backend/internal/platform/logger"
	"github.com/yungbote/neurobots-backend/internal/platform/mediastore"
)

const (
	outroVisualPrompt = "A beautiful educational summary screen with a gold trophy icon and text 'Lesson Complete'. Clean, modern, 3d render."
	outroNarration    = "Great job! You've completed this lesson. Check out the quiz next!"
)

type StoryboardBuildDeps struct {
	Log    *logger.Logger
	AI     llm.Client
	Images imagegen.Client
	Media  mediastore.Store

	// Concurrency bounds in-flight image calls. Zero reads
	// STORYBOARD_IMAGE_CONCURRENCY.
	Concurrency int
	// BodyScenes is the number of body scenes requested. Zero reads
	// STORYBOARD_BODY_SCENES.
	BodyScenes int
}

type StoryboardBuildInput struct {
	Topic      string
	Objectives []string
}

type StoryboardBuildOutput struct {
	Scenes []lesson.Scene
	// Fallback is set when body generation failed and only intro and outro remain.
	Fallback      bool
	ImagesOK      int
	ImagesMissing int
}

// StoryboardBuild assembles intro, body and outro scenes and then illustrates
// every scene concurrently. It never fails on backend trouble; only a
// cancelled ctx is returned as an error.
func StoryboardBuild(ctx context.Context, deps StoryboardBuildDeps, in StoryboardBuildInput) (StoryboardBuildOutput, error) {
	out := StoryboardBuildOutput{}
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("step", StageVideo, "topic", in.Topic)

	bodyCount := deps.BodyScenes
	if bodyCount <= 0 {
		bodyCount = envutil.Int("STORYBOARD_BODY_SCENES", 8)
	}
	if bodyCount < 1 {
		bodyCount = 1
	}

	body, err := storyboardBody(ctx, deps.AI, in, bodyCount)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, ctxErr
		}
		log.Warn("storyboard body unavailable, falling back", "error", fmt.Errorf("%w: %v", ErrStoryboardFallback, err))
		observability.Current().IncAssetDegraded("storyboard")
		out.Fallback = true
		body = nil
	}

	scenes := make([]lesson.Scene, 0, len(body)+2)
	scenes = append(scenes, introScene(in.Topic))
	for i, s := range body {
		s.ID = i + 2
		scenes = append(scenes, s)
	}
	scenes = append(scenes, lesson.Scene{
		ID:           len(body) + 2,
		VisualPrompt: outroVisualPrompt,
		Narration:    outroNarration,
	})

	ok, missing := illustrateScenes(ctx, deps, log, scenes)
	if err := ctx.Err(); err != nil {
		return out, err
	}

	out.Scenes = scenes
	out.ImagesOK = ok
	out.ImagesMissing = missing
	log.Info("storyboard built",
		"scenes", len(scenes),
		"fallback", out.Fallback,
		"images_ok", ok,
		"images_missing", missing,
	)
	return out, nil
}

func introScene(topic string) lesson.Scene {
	return lesson.Scene{
		ID:           1,
		VisualPrompt: fmt.Sprintf("High quality cinematic title card for a lesson on %q. Futuristic, glowing neon typography, dark background, 8k resolution, educational.", topic),
		Narration:    fmt.Sprintf("Welcome to this lesson on %s. Let's dive in!", topic),
	}
}

func storyboardBody(ctx context.Context, ai llm.Client, in StoryboardBuildInput, count int) ([]lesson.Scene, error) {
	if ai == nil {
		return nil, errors.New("missing generation backend")
	}
	prompt := fmt.Sprintf(`
Create %d distinct educational scenes for a lesson on %q to explain these objectives:
%s

Format as JSON array of objects: { "visual_prompt": "highly detailed visual description for image generation", "narration": "short explanation" }.
Keep narrations under 2 sentences. Ensure visual_prompts are descriptive.
`, count, in.Topic, bulletList(in.Objectives))

	raw, err := ai.GenerateText(ctx, prompt, "")
	if err != nil {
		return nil, err
	}
	return parseScenes(raw)
}

func parseScenes(raw string) ([]lesson.Scene, error) {
	clean := stripCodeFence(raw)
	if start, end := strings.Index(clean, "["), strings.LastIndex(clean, "]"); start >= 0 && end > start {
		clean = clean[start : end+1]
	}
	var items []struct {
		VisualPrompt string `json:"visual_prompt"`
		Narration    string `json:"narration"`
	}
	if err := json.Unmarshal([]byte(clean), &items); err != nil {
		return nil, fmt.Errorf("parse storyboard scenes: %w", err)
	}
	scenes := make([]lesson.Scene, 0, len(items))
	for _, it := range items {
		vp, nar := strings.TrimSpace(it.VisualPrompt), strings.TrimSpace(it.Narration)
		if vp == "" && nar == "" {
			continue
		}
		scenes = append(scenes, lesson.Scene{VisualPrompt: vp, Narration: nar})
	}
	if len(scenes) == 0 {
		return nil, errors.New("storyboard response had no scenes")
	}
	return scenes, nil
}

// illustrateScenes fills ImageURL in place. Each goroutine owns one index, so
// no locking is needed on scenes.
func illustrateScenes(ctx context.Context, deps StoryboardBuildDeps, log *logger.Logger, scenes []lesson.Scene) (int, int) {
	if deps.Images == nil || deps.Media == nil {
		observability.Current().IncImageResult("disabled")
		return 0, len(scenes)
	}

	maxConc := deps.Concurrency
	if maxConc <= 0 {
		maxConc = envutil.Int("STORYBOARD_IMAGE_CONCURRENCY", 4)
	}
	if maxConc < 1 {
		maxConc = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConc)

	var ok, missing int32
	for i := range scenes {
		i := i
		g.Go(func() error {
			url, err := illustrate(gctx, deps, scenes[i].VisualPrompt)
			if err != nil {
				atomic.AddInt32(&missing, 1)
				observability.Current().IncImageResult(imageOutcome(err))
				log.Warn("scene image missing", "scene_id", scenes[i].ID, "error", fmt.Errorf("%w: %v", ErrImageDegraded, err))
				return nil
			}
			scenes[i].ImageURL = url
			atomic.AddInt32(&ok, 1)
			observability.Current().IncImageResult("ok")
			return nil
		})
	}
	_ = g.Wait()
	return int(ok), int(missing)
}

func illustrate(ctx context.Context, deps StoryboardBuildDeps, prompt string) (string, error) {
	img, err := deps.Images.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if len(img.Bytes) == 0 {
		return "", imagegen.ErrEmptyImage
	}
	url, err := deps.Media.Save(ctx, img.Bytes, img.MimeType, imagegen.Extension(img.MimeType))
	if err != nil {
		return "", fmt.Errorf("save scene image: %w", err)
	}
	return url, nil
}

func imageOutcome(err error) string {
	switch {
	case errors.Is(err, imagegen.ErrMissingCredential):
		return "missing_credential"
	case errors.Is(err, imagegen.ErrDisabled):
		return "disabled"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "failed"
	}
}
