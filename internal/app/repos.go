package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/neurobots-backend/internal/data/repos/lessons"
	"github.com/yungbote/neurobots-backend/internal/platform/logger"
)

type Repos struct {
	Lesson lessons.LessonRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Lesson: lessons.NewLessonRepo(db, log),
	}
}
