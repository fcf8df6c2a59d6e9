package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/neurobots-backend/internal/http"
	httpH "github.com/yungbote/neurobots-backend/internal/http/handlers"
	httpMW "github.com/yungbote/neurobots-backend/internal/http/middleware"
	"github.com/yungbote/neurobots-backend/internal/observability"
	"github.com/yungbote/neurobots-backend/internal/platform/logger"
	"github.com/yungbote/neurobots-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Lesson   *httpH.LessonHandler
	Realtime *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services, sseHub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	var pinger httpH.Pinger
	if sqlDB, err := db.DB(); err == nil {
		pinger = sqlDB
	}
	return Handlers{
		Health:   httpH.NewHealthHandler(pinger),
		Lesson:   httpH.NewLessonHandler(log, services.Lesson),
		Realtime: httpH.NewRealtimeHandler(log, sseHub),
	}
}

// wireMiddleware returns no auth middleware when no signing secret is set.
func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	if cfg.JWTSecretKey == "" {
		return Middleware{}
	}
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey, cfg.AuthRequired),
	}
}

func routerConfig(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) http.RouterConfig {
	rc := http.RouterConfig{
		Log:             log,
		AuthMiddleware:  middleware.Auth,
		Metrics:         metrics,
		CORSOrigins:     cfg.CORSOrigins,
		LessonHandler:   handlers.Lesson,
		RealtimeHandler: handlers.Realtime,
		HealthHandler:   handlers.Health,
	}
	if cfg.MediaStore == "local" {
		rc.MediaDir = cfg.MediaDir
		rc.MediaPrefix = cfg.MediaPrefix
	}
	return rc
}
