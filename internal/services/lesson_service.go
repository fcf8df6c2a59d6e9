package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/neurobots-backend/internal/data/repos/lessons"
	"github.com/yungbote/neurobots-backend/internal/domain/lesson"
	"github.com/yungbote/neurobots-backend/internal/modules/lessongen"
	"github.com/yungbote/neurobots-backend/internal/platform/ctxutil"
	"github.com/yungbote/neurobots-backend/internal/platform/dbctx"
	"github.com/yungbote/neurobots-backend/internal/platform/logger"
)

var (
	ErrLessonNotFound = errors.New("lesson not found")
	ErrEmptyMessage   = errors.New("message is required")
)

// Pipeline is the part of the lesson coordinator the service drives.
type Pipeline interface {
	Generate(ctx context.Context, req lessongen.Request) (*lessongen.Result, error)
	Chat(ctx context.Context, content, message string, history []lesson.ChatMessage) (string, error)
}

type GenerateInput struct {
	Topic   string
	Subject string
	RunID   string
}

type ChatInput struct {
	LessonID uuid.UUID
	Message  string
	History  []lesson.ChatMessage
}

type LessonService interface {
	Generate(ctx context.Context, in GenerateInput) (*lessongen.Result, error)
	Get(ctx context.Context, id uuid.UUID) (*lesson.Record, error)
	ListRecent(ctx context.Context, limit int) ([]*lesson.Record, error)
	Chat(ctx context.Context, in ChatInput) (string, error)
}

type lessonService struct {
	log      *logger.Logger
	repo     lessons.LessonRepo
	pipeline Pipeline
}

func NewLessonService(baseLog *logger.Logger, repo lessons.LessonRepo, pipeline Pipeline) LessonService {
	return &lessonService{
		log:      baseLog.With("service", "LessonService"),
		repo:     repo,
		pipeline: pipeline,
	}
}

// RepoStore adapts a LessonRepo to the coordinator's persistence contract.
func RepoStore(repo lessons.LessonRepo) lessongen.LessonStore {
	return repoStore{repo: repo}
}

type repoStore struct {
	repo lessons.LessonRepo
}

func (s repoStore) SaveLesson(ctx context.Context, rec *lesson.Record) (*lesson.Record, error) {
	return s.repo.Create(dbctx.Of(ctx), rec)
}

func (s *lessonService) Generate(ctx context.Context, in GenerateInput) (*lessongen.Result, error) {
	res, err := s.pipeline.Generate(ctx, lessongen.Request{
		RunID:       strings.TrimSpace(in.RunID),
		Topic:       in.Topic,
		Subject:     in.Subject,
		OwnerUserID: ctxutil.UserID(ctx),
	})
	if err != nil {
		return nil, err
	}
	fields := append(ctxutil.LogFields(ctx), "lesson_id", res.Record.ID.String(), "subject", res.Record.Subject, "images_missing", res.ImagesMissing)
	s.log.Info("lesson generated", fields...)
	return res, nil
}

// Get hides lessons owned by another user behind ErrLessonNotFound.
func (s *lessonService) Get(ctx context.Context, id uuid.UUID) (*lesson.Record, error) {
	rec, err := s.repo.GetByID(dbctx.Of(ctx), id)
	if err != nil {
		s.log.Warn("load lesson failed", "lesson_id", id.String(), "error", err)
		return nil, fmt.Errorf("load lesson: %w", err)
	}
	if rec == nil {
		return nil, ErrLessonNotFound
	}
	if rec.OwnerUserID != nil {
		if caller := ctxutil.UserID(ctx); caller != nil && *caller != *rec.OwnerUserID {
			return nil, ErrLessonNotFound
		}
	}
	return rec, nil
}

func (s *lessonService) ListRecent(ctx context.Context, limit int) ([]*lesson.Record, error) {
	return s.repo.ListRecent(dbctx.Of(ctx), ctxutil.UserID(ctx), limit)
}

func (s *lessonService) Chat(ctx context.Context, in ChatInput) (string, error) {
	if strings.TrimSpace(in.Message) == "" {
		return "", ErrEmptyMessage
	}
	rec, err := s.Get(ctx, in.LessonID)
	if err != nil {
		return "", err
	}
	history := make([]lesson.ChatMessage, 0, len(in.History))
	for _, m := range in.History {
		if m.Role != lesson.RoleUser && m.Role != lesson.RoleAssistant {
			continue
		}
		history = append(history, m)
	}
	return s.pipeline.Chat(ctx, rec.Content, in.Message, history)
}
