package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/neurobots-backend/internal/domain/lesson"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&lesson.Record{},
	)
}

// EnsureLessonIndexes adds indexes gorm tags cannot express.
func EnsureLessonIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_lesson_records_owner_created_at
		ON lesson_records (owner_user_id, created_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_lesson_records_owner_created_at: %w", err)
	}
	return nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...", "driver", s.driver)
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureLessonIndexes(s.db); err != nil {
		s.log.Error("Lesson index migration failed", "error", err)
		return err
	}
	return nil
}
