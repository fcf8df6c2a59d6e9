package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/yungbote/neurobots-backend/internal/domain/lesson"
	"github.com/yungbote/neurobots-backend/internal/http/middleware"
	"github.com/yungbote/neurobots-backend/internal/http/response"
	"github.com/yungbote/neurobots-backend/internal/modules/lessongen"
	"github.com/yungbote/neurobots-backend/internal/modules/lessongen/steps"
	"github.com/yungbote/neurobots-backend/internal/platform/apierr"
	"github.com/yungbote/neurobots-backend/internal/platform/ctxutil"
	"github.com/yungbote/neurobots-backend/internal/platform/llm"
	"github.com/yungbote/neurobots-backend/internal/platform/logger"
	"github.com/yungbote/neurobots-backend/internal/services"
)

const maxTopicChars = 500

type LessonHandler struct {
	log     *logger.Logger
	lessons services.LessonService
	md      goldmark.Markdown
}

func NewLessonHandler(log *logger.Logger, lessons services.LessonService) *LessonHandler {
	return &LessonHandler{
		log:     log.With("handler", "LessonHandler"),
		lessons: lessons,
		md:      goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

type generateRequest struct {
	Topic   string `json:"topic"`
	Subject string `json:"subject"`
	RunID   string `json:"runId"`
}

type chatRequest struct {
	LessonID string               `json:"lessonId"`
	Message  string               `json:"message"`
	History  []lesson.ChatMessage `json:"history"`
}

type lessonView struct {
	*lesson.Record
	ContentHTML string `json:"content_html,omitempty"`
}

// POST /api/lessons/generate
func (h *LessonHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if len([]rune(req.Topic)) > maxTopicChars {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("topic is too long"))
		return
	}
	runID := strings.TrimSpace(req.RunID)
	if runID == "" {
		runID = strings.TrimSpace(c.GetHeader(middleware.HeaderRunID))
	}
	if runID == "" {
		runID = uuid.NewString()
	}
	c.Writer.Header().Set(middleware.HeaderRunID, runID)
	if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
		td.RunID = runID
	}

	res, err := h.lessons.Generate(c.Request.Context(), services.GenerateInput{
		Topic:   req.Topic,
		Subject: req.Subject,
		RunID:   runID,
	})
	if err != nil {
		h.log.Warn("lesson generation failed", "run_id", runID, "error", err)
		response.RespondAPIError(c, lessonError(err))
		return
	}
	response.RespondCreated(c, gin.H{
		"id":     res.Record.ID,
		"run_id": res.RunID,
		"lesson": res.Record,
	})
}

// GET /api/lessons/:id
func (h *LessonHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "not_found", services.ErrLessonNotFound)
		return
	}
	rec, err := h.lessons.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, lessonError(err))
		return
	}
	view := lessonView{Record: rec}
	if c.Query("format") == "html" {
		var buf bytes.Buffer
		if err := h.md.Convert([]byte(rec.Content), &buf); err != nil {
			response.RespondError(c, http.StatusInternalServerError, "render_failed", err)
			return
		}
		view.ContentHTML = buf.String()
	}
	response.RespondOK(c, view)
}

// GET /api/lessons
func (h *LessonHandler) List(c *gin.Context) {
	limit := 20
	if v, ok := c.GetQuery("limit"); ok {
		n, err := parseLimit(v)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		limit = n
	}
	recs, err := h.lessons.ListRecent(c.Request.Context(), limit)
	if err != nil {
		response.RespondAPIError(c, lessonError(err))
		return
	}
	response.RespondOK(c, gin.H{"lessons": recs})
}

// POST /api/lessons/chat and POST /api/lessons/:id/chat
func (h *LessonHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rawID := c.Param("id")
	if rawID == "" {
		rawID = req.LessonID
	}
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "not_found", services.ErrLessonNotFound)
		return
	}
	reply, err := h.lessons.Chat(c.Request.Context(), services.ChatInput{
		LessonID: id,
		Message:  req.Message,
		History:  req.History,
	})
	if err != nil {
		h.log.Warn("chat failed", "lesson_id", id.String(), "error", err)
		response.RespondAPIError(c, lessonError(err))
		return
	}
	response.RespondOK(c, gin.H{"reply": reply})
}

// lessonErrors maps service and pipeline errors onto HTTP statuses. A
// PlanningError wraps the backend's GenerationError, so it must come first.
var lessonErrors = apierr.Table{
	{Match: apierr.Is(context.DeadlineExceeded), Status: http.StatusGatewayTimeout, Code: "timeout"},
	{Match: apierr.Is(lessongen.ErrBusy), Status: http.StatusServiceUnavailable, Code: "busy"},
	{Match: apierr.Is(services.ErrLessonNotFound), Status: http.StatusNotFound, Code: "not_found"},
	{Match: apierr.Is(services.ErrEmptyMessage), Status: http.StatusBadRequest, Code: "invalid_request"},
	{Match: apierr.As[*steps.VerificationFailure](), Status: http.StatusUnprocessableEntity, Code: "verification_failed"},
	{Match: apierr.As[*steps.PlanningError](), Status: http.StatusBadGateway, Code: "planning_failed"},
	{Match: apierr.As[*llm.GenerationError](), Status: http.StatusBadGateway, Code: "generation_failed"},
}

func lessonError(err error) error { return lessonErrors.Translate(err) }

func parseLimit(v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 0, errors.New("limit must be a positive integer")
	}
	if n > 100 {
		n = 100
	}
	return n, nil
}
