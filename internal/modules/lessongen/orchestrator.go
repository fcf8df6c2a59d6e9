// Package lessongen runs the lesson generation pipeline: planning, subject
// reasoning, drafting, verification and asset generation, ending in a
// persisted lesson record.
package lessongen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"github.com/yungbote/neurobots-backend/internal/domain/lesson"
	"github.com/yungbote/neurobots-backend/internal/modules/lessongen/steps"
	"github.com/yungbote/neurobots-backend/internal/observability"
	"github.com/yungbote/neurobots-backend/internal/platform/imagegen"
	"github.com/yungbote/neurobots-backend/internal/platform/llm"
	"github.com/yungbote/neurobots-backend/internal/platform/logger"
	"github.com/yungbote/neurobots-backend/internal/platform/mediastore"
	"github.com/yungbote/neurobots-backend/internal/realtime/bus"
)

// ErrBusy is returned when no pipeline slot frees up before the queue wait
// expires.
var ErrBusy = errors.New("lesson pipeline at capacity")

// LessonStore persists an assembled lesson. The coordinator does not retry it.
type LessonStore interface {
	SaveLesson(ctx context.Context, rec *lesson.Record) (*lesson.Record, error)
}

type Config struct {
	// MaxInflight bounds concurrently running pipelines.
	MaxInflight int
	// QueueTimeout bounds how long a request waits for a slot.
	QueueTimeout time.Duration
	// RequestTimeout is the deadline for one run, queue wait excluded.
	RequestTimeout time.Duration

	ImageConcurrency int
	BodyScenes       int
}

func (c Config) withDefaults() Config {
	if c.MaxInflight <= 0 {
		c.MaxInflight = 4
	}
	if c.QueueTimeout <= 0 {
		c.QueueTimeout = 30 * time.Second
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 5 * time.Minute
	}
	return c
}

type Deps struct {
	Log    *logger.Logger
	AI     llm.Client
	Images imagegen.Client
	Media  mediastore.Store
	Store  LessonStore
	// Bus is optional; progress is only logged without it.
	Bus bus.Bus

	Reasoning *steps.ReasoningTable
	Checks    []steps.DraftCheck
	Now       func() time.Time
}

type Orchestrator struct {
	log    *logger.Logger
	deps   Deps
	cfg    Config
	sem    *semaphore.Weighted
	tracer trace.Tracer
}

func New(deps Deps, cfg Config) (*Orchestrator, error) {
	if deps.Log == nil {
		return nil, errors.New("lessongen: logger required")
	}
	if deps.AI == nil {
		return nil, errors.New("lessongen: generation backend required")
	}
	if deps.Store == nil {
		return nil, errors.New("lessongen: lesson store required")
	}
	if deps.Images == nil {
		deps.Images = imagegen.Disabled{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	cfg = cfg.withDefaults()
	return &Orchestrator{
		log:    deps.Log.With("service", "LessonPipeline"),
		deps:   deps,
		cfg:    cfg,
		sem:    semaphore.NewWeighted(int64(cfg.MaxInflight)),
		tracer: observability.Tracer("lessongen"),
	}, nil
}

type Request struct {
	// RunID names the progress channel. Generated when empty.
	RunID string
	Topic string
	// Subject, when set, replaces the planner's subject tag.
	Subject     string
	OwnerUserID *uuid.UUID
}

type Result struct {
	RunID  string
	Record *lesson.Record
	// States lists every state the run entered, in order.
	States        []State
	ImagesMissing int
}

// Generate runs one request through the pipeline. Planning, drafting,
// verification and persistence failures abort the run; audio and video
// trouble degrades the assets instead.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	log := o.log.With("run_id", req.RunID)

	if err := o.acquire(ctx); err != nil {
		observability.Current().IncPipelineRun("busy")
		log.Warn("lesson pipeline rejected", "error", err)
		return nil, err
	}
	defer o.release()

	ctx, cancel := context.WithTimeout(ctx, o.cfg.RequestTimeout)
	defer cancel()

	ctx, span := o.tracer.Start(ctx, "lessongen.Generate", trace.WithAttributes(attribute.String("run_id", req.RunID)))
	defer span.End()

	r := &run{o: o, log: log, runID: req.RunID, state: StatePlanning}
	r.enter(ctx, StatePlanning, nil)

	res, err := r.execute(ctx, req)
	if err != nil {
		r.enter(ctx, StateFailed, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.Current().IncPipelineRun(failureOutcome(err))
		log.Warn("lesson pipeline failed", "state", r.failedIn, "error", err)
		return nil, err
	}
	observability.Current().IncPipelineRun("assembled")
	res.States = r.visited
	return res, nil
}

func (o *Orchestrator) acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, o.cfg.QueueTimeout)
	defer cancel()
	if err := o.sem.Acquire(waitCtx, 1); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return ErrBusy
	}
	observability.Current().PipelineInflightAdd(1)
	return nil
}

func (o *Orchestrator) release() {
	observability.Current().PipelineInflightAdd(-1)
	o.sem.Release(1)
}

type run struct {
	o        *Orchestrator
	log      *logger.Logger
	runID    string
	state    State
	failedIn State
	visited  []State
}

func (r *run) execute(ctx context.Context, req Request) (*Result, error) {
	o := r.o

	var plan lesson.Plan
	if err := r.stage(ctx, steps.StagePlanner, func(ctx context.Context) error {
		out, err := steps.LessonPlanBuild(ctx, steps.LessonPlanBuildDeps{Log: r.log, AI: o.deps.AI}, steps.LessonPlanBuildInput{Request: req.Topic})
		plan = out.Plan
		return err
	}); err != nil {
		return nil, err
	}
	if s := strings.TrimSpace(req.Subject); s != "" {
		plan.Subject = s
	}

	r.enter(ctx, StateReasoning, nil)
	var rc lesson.ReasoningContext
	_ = r.stage(ctx, steps.StageReasoning, func(context.Context) error {
		rc = steps.ReasoningBuild(steps.ReasoningBuildDeps{Log: r.log, Table: o.deps.Reasoning}, steps.ReasoningBuildInput{Plan: plan}).Context
		return nil
	})

	r.enter(ctx, StateDrafting, nil)
	var draft lesson.Draft
	if err := r.stage(ctx, steps.StageContent, func(ctx context.Context) error {
		out, err := steps.ContentDraft(ctx, steps.ContentDraftDeps{Log: r.log, AI: o.deps.AI}, steps.ContentDraftInput{Reasoning: rc})
		if err != nil {
			return fmt.Errorf("draft lesson content: %w", err)
		}
		draft = out.Draft
		return nil
	}); err != nil {
		return nil, err
	}

	r.enter(ctx, StateVerifying, nil)
	var verification lesson.VerificationResult
	if err := r.stage(ctx, steps.StageVerification, func(context.Context) error {
		verification = steps.DraftVerify(steps.DraftVerifyDeps{Log: r.log, Checks: o.deps.Checks}, steps.DraftVerifyInput{Draft: draft}).Result
		if !verification.Verified() {
			return &steps.VerificationFailure{Result: verification}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	r.enter(ctx, StateAssetGeneration, nil)
	assets, imagesMissing, err := r.generateAssets(ctx, plan, draft)
	if err != nil {
		return nil, err
	}

	rec := lesson.NewRecord(plan, draft, assets, verification, o.deps.Now())
	rec.OwnerUserID = req.OwnerUserID
	saved, err := o.deps.Store.SaveLesson(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("persist lesson: %w", err)
	}

	r.enter(ctx, StateAssembled, nil)
	r.publishReady(ctx, saved)
	return &Result{RunID: r.runID, Record: saved, ImagesMissing: imagesMissing}, nil
}

// generateAssets runs audio then video. Audio failure degrades to an empty
// script; only cancellation of ctx aborts.
func (r *run) generateAssets(ctx context.Context, plan lesson.Plan, draft lesson.Draft) (lesson.Assets, int, error) {
	o := r.o
	var assets lesson.Assets

	err := r.stage(ctx, steps.StageAudio, func(ctx context.Context) error {
		out, err := steps.AudioScript(ctx, steps.AudioScriptDeps{Log: r.log, AI: o.deps.AI}, steps.AudioScriptInput{Topic: plan.Topic, ContentText: draft.ContentText})
		if err != nil {
			return err
		}
		assets.AudioScript = out.Script
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return assets, 0, ctxErr
		}
		r.log.Warn("audio script unavailable, continuing without it", "error", err)
		observability.Current().IncAssetDegraded("audio")
		assets.AudioScript = ""
		assets.AudioDegraded = true
	}

	var missing int
	if err := r.stage(ctx, steps.StageVideo, func(ctx context.Context) error {
		out, err := steps.StoryboardBuild(ctx, steps.StoryboardBuildDeps{
			Log:         r.log,
			AI:          o.deps.AI,
			Images:      o.deps.Images,
			Media:       o.deps.Media,
			Concurrency: o.cfg.ImageConcurrency,
			BodyScenes:  o.cfg.BodyScenes,
		}, steps.StoryboardBuildInput{Topic: plan.Topic, Objectives: plan.Objectives})
		if err != nil {
			return err
		}
		assets.VideoStoryboard = out.Scenes
		assets.StoryboardFallback = out.Fallback
		missing = out.ImagesMissing
		return nil
	}); err != nil {
		return assets, 0, err
	}
	return assets, missing, nil
}

// stage wraps one step in a span and records its latency.
func (r *run) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := r.o.tracer.Start(ctx, "lessongen."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	observability.Current().ObserveStage(name, status, time.Since(start))
	return err
}

func failureOutcome(err error) string {
	var pe *steps.PlanningError
	var vf *steps.VerificationFailure
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.As(err, &vf):
		return "verification_failed"
	case errors.As(err, &pe):
		return "planning_failed"
	default:
		return "failed"
	}
}
