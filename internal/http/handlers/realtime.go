package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobots-backend/internal/http/response"
	"github.com/yungbote/neurobots-backend/internal/platform/logger"
	"github.com/yungbote/neurobots-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /api/lessons/events?run=<run id>
// Streams pipeline progress for one run. Clients open it before posting the
// generate request with the same run id.
func (h *RealtimeHandler) RunEvents(c *gin.Context) {
	runID := strings.TrimSpace(c.Query("run"))
	if runID == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("run query parameter is required"))
		return
	}
	client := h.hub.NewSSEClient()
	h.hub.AddChannel(client, realtime.RunChannel(runID))
	defer h.hub.CloseClient(client)

	h.log.Debug("run event stream opened", "run_id", runID, "client_id", client.ID)
	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
