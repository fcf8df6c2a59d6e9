package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/neurobots-backend/internal/http/handlers"
	httpMW "github.com/yungbote/neurobots-backend/internal/http/middleware"
	"github.com/yungbote/neurobots-backend/internal/observability"
	"github.com/yungbote/neurobots-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware
	Metrics        *observability.Metrics
	CORSOrigins    []string

	LessonHandler   *httpH.LessonHandler
	RealtimeHandler *httpH.RealtimeHandler
	HealthHandler   *httpH.HealthHandler

	// MediaDir is served under MediaPrefix when both are set.
	MediaDir    string
	MediaPrefix string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("neurobots"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics, "/metrics", "/api/lessons/events"))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	if cfg.MediaDir != "" && cfg.MediaPrefix != "" {
		r.Static("/"+strings.Trim(cfg.MediaPrefix, "/"), cfg.MediaDir)
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.Authenticate())
	}

	lessons := api.Group("/lessons")
	{
		if cfg.LessonHandler != nil {
			lessons.POST("/generate", cfg.LessonHandler.Generate)
			lessons.GET("", cfg.LessonHandler.List)
			lessons.POST("/chat", cfg.LessonHandler.Chat)
			lessons.GET("/:id", cfg.LessonHandler.Get)
			lessons.POST("/:id/chat", cfg.LessonHandler.Chat)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			lessons.GET("/events", cfg.RealtimeHandler.RunEvents)
		}
	}

	return r
}
