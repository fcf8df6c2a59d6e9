package http

import (
	"bytes"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/neurobots-backend/internal/data/repos/lessons"
	"github.com/yungbote/neurobots-backend/internal/data/repos/testutil"
	"github.com/yungbote/neurobots-backend/internal/domain/lesson"
	httpH "github.com/yungbote/neurobots-backend/internal/http/handlers"
	"github.com/yungbote/neurobots-backend/internal/modules/lessongen"
	"github.com/yungbote/neurobots-backend/internal/observability"
	"github.com/yungbote/neurobots-backend/internal/platform/imagegen/imagegentest"
	"github.com/yungbote/neurobots-backend/internal/platform/llm"
	"github.com/yungbote/neurobots-backend/internal/platform/mediastore"
	"github.com/yungbote/neurobots-backend/internal/realtime"
	"github.com/yungbote/neurobots-backend/internal/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := testutil.Logger(t)
	dir := t.TempDir()
	media, err := mediastore.NewLocal(log, dir, mediastore.DefaultPublicPrefix)
	require.NoError(t, err)

	repo := lessons.NewLessonRepo(testutil.DB(t), log)
	pipeline, err := lessongen.New(lessongen.Deps{
		Log:    log,
		AI:     llm.NewSimulated(),
		Images: &imagegentest.Fake{},
		Media:  media,
		Store:  services.RepoStore(repo),
	}, lessongen.Config{})
	require.NoError(t, err)

	return NewRouter(RouterConfig{
		Log:             log,
		Metrics:         observability.NewMetrics(),
		LessonHandler:   httpH.NewLessonHandler(log, services.NewLessonService(log, repo, pipeline)),
		RealtimeHandler: httpH.NewRealtimeHandler(log, realtime.NewSSEHub(log)),
		HealthHandler:   httpH.NewHealthHandler(nil),
		MediaDir:        dir,
		MediaPrefix:     mediastore.DefaultPublicPrefix,
	})
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRouterGenerateFetchAndServeImages(t *testing.T) {
	r := newTestRouter(t)

	rec := serve(r, stdhttp.MethodPost, "/api/lessons/generate", `{"topic":"Photosynthesis in plants"}`)
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID     string         `json:"id"`
		Lesson *lesson.Record `json:"lesson"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	scenes := created.Lesson.Assets.Data().VideoStoryboard
	require.Len(t, scenes, 10)
	require.True(t, strings.HasPrefix(scenes[0].ImageURL, mediastore.DefaultPublicPrefix+"/"))

	img := serve(r, stdhttp.MethodGet, scenes[0].ImageURL, "")
	require.Equal(t, stdhttp.StatusOK, img.Code)
	require.True(t, bytes.HasPrefix(img.Body.Bytes(), []byte("\x89PNG")))

	got := serve(r, stdhttp.MethodGet, "/api/lessons/"+created.ID, "")
	require.Equal(t, stdhttp.StatusOK, got.Code)

	list := serve(r, stdhttp.MethodGet, "/api/lessons", "")
	require.Equal(t, stdhttp.StatusOK, list.Code)
	require.Contains(t, list.Body.String(), created.ID)

	chat := serve(r, stdhttp.MethodPost, "/api/lessons/"+created.ID+"/chat", `{"message":"Why are leaves green?"}`)
	require.Equal(t, stdhttp.StatusOK, chat.Code)
	require.Contains(t, chat.Body.String(), "[MOCK RESPONSE]")
}

func TestRouterHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t)

	require.Equal(t, stdhttp.StatusOK, serve(r, stdhttp.MethodGet, "/healthcheck", "").Code)

	metrics := serve(r, stdhttp.MethodGet, "/metrics", "")
	require.Equal(t, stdhttp.StatusOK, metrics.Code)
	require.Contains(t, metrics.Body.String(), `neurobots_api_requests_total{method="GET",route="/healthcheck",status="200"} 1`)
}
