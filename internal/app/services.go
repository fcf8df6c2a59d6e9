package app

import (
	"fmt"

	"github.com/yungbote/neurobots-backend/internal/modules/lessongen"
	"github.com/yungbote/neurobots-backend/internal/modules/lessongen/steps"
	"github.com/yungbote/neurobots-backend/internal/platform/logger"
	"github.com/yungbote/neurobots-backend/internal/services"
)

type Services struct {
	Pipeline *lessongen.Orchestrator
	Lesson   services.LessonService
}

func wireServices(log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	pipeline, err := lessongen.New(lessongen.Deps{
		Log:       log,
		AI:        clients.AI,
		Images:    clients.Images,
		Media:     clients.Media,
		Store:     services.RepoStore(repos.Lesson),
		Bus:       clients.Bus,
		Reasoning: steps.DefaultReasoningTable(),
		Checks:    steps.DefaultDraftChecks,
	}, cfg.Pipeline)
	if err != nil {
		return Services{}, fmt.Errorf("init lesson pipeline: %w", err)
	}

	return Services{
		Pipeline: pipeline,
		Lesson:   services.NewLessonService(log, repos.Lesson, pipeline),
	}, nil
}
