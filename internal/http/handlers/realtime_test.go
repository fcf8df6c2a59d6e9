package handlers

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/neurobots-backend/internal/platform/logger"
	"github.com/yungbote/neurobots-backend/internal/realtime"
)

func TestRunEventsStreamsRunChannel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := realtime.NewSSEHub(logger.Nop())
	r := gin.New()
	r.GET("/api/lessons/events", NewRealtimeHandler(logger.Nop(), hub).RunEvents)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/lessons/events?run=abc", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// Headers are flushed only after the subscription exists.
	hub.Broadcast(realtime.SSEMessage{Channel: realtime.RunChannel("other"), Event: realtime.SSEEventLessonFailed})
	hub.Broadcast(realtime.SSEMessage{Channel: realtime.RunChannel("abc"), Event: realtime.SSEEventPipelineState, Data: map[string]string{"state": "planning"}})

	sc := bufio.NewScanner(resp.Body)
	var lines []string
	for sc.Scan() {
		line := sc.Text()
		if line == "" && len(lines) > 0 {
			break
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	require.Len(t, lines, 2)
	require.Equal(t, "event: lesson.pipeline.state", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "data: "))
	require.Contains(t, lines[1], `"state":"planning"`)
	require.Contains(t, lines[1], `"channel":"run:abc"`)
}

func TestRunEventsRequiresRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/lessons/events", NewRealtimeHandler(logger.Nop(), realtime.NewSSEHub(logger.Nop())).RunEvents)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lessons/events", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
