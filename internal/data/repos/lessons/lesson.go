package lessons

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobots-backend/internal/domain/lesson"
	"github.com/yungbote/neurobots-backend/internal/platform/dbctx"
	"github.com/yungbote/neurobots-backend/internal/platform/logger"
)

type LessonRepo interface {
	Create(dbc dbctx.Context, row *lesson.Record) (*lesson.Record, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*lesson.Record, error)
	ListRecent(dbc dbctx.Context, ownerUserID *uuid.UUID, limit int) ([]*lesson.Record, error)
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return &lessonRepo{db: db, log: baseLog.With("repo", "LessonRepo")}
}

func (r *lessonRepo) Create(dbc dbctx.Context, row *lesson.Record) (*lesson.Record, error) {
	if row == nil {
		return nil, errors.New("nil lesson record")
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	r.log.Debug("lesson record created", "lesson_id", row.ID.String(), "subject", row.Subject)
	return row, nil
}

// GetByID returns nil, nil when the record does not exist.
func (r *lessonRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*lesson.Record, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*lesson.Record
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *lessonRepo) ListRecent(dbc dbctx.Context, ownerUserID *uuid.UUID, limit int) ([]*lesson.Record, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	q := dbc.DB(r.db).Order("created_at DESC").Limit(limit)
	if ownerUserID != nil {
		q = q.Where("owner_user_id = ?", *ownerUserID)
	}
	var out []*lesson.Record
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
