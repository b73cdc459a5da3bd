package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tvd/internal/models"
	"tvd/internal/services"
	"tvd/internal/structures"
	"tvd/internal/testutil"
)

type apiFixture struct {
	controller *ApiController
	videos     services.VideoServiceInterface
	links      services.LinkServiceInterface
	logger     *testutil.MockLogger
	fm         *testutil.MockFileManager
}

func newApiFixture(t *testing.T) *apiFixture {
	t.Helper()
	conf := &structures.Config{}
	conf.Video.TTL = 24 * time.Hour
	conf.Video.BaseUrl = "https://example.com/watch"
	conf.Persistence.FilePath = "videos.json"
	conf.Persistence.LinksFilePath = "links.json"

	logger := &testutil.MockLogger{}
	fm := testutil.NewMockFileManager()
	videos := services.NewVideoService(conf, fm, logger)
	links := services.NewLinkService(conf, fm, logger)

	return &apiFixture{
		controller: NewApiController(conf, logger, videos, links),
		videos:     videos,
		links:      links,
		logger:     logger,
		fm:         fm,
	}
}

func TestGetVideos_ReturnsRecordsWithUrls(t *testing.T) {
	f := newApiFixture(t)
	createdAt := time.Now().UnixMilli()
	require.NoError(t, f.videos.Set("100/200", &models.VideoRecord{
		Id:        "100/200",
		NickName:  "movie",
		Caption:   "a movie",
		ChatId:    100,
		MessageId: 200,
		CreatedAt: createdAt,
	}))

	rec := httptest.NewRecorder()
	f.controller.GetVideos(rec, httptest.NewRequest(http.MethodGet, "/api/videos", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp []videoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "100/200", resp[0].Id)
	assert.Equal(t, "movie", resp[0].NickName)
	assert.Equal(t, "https://example.com/watch/100/200", resp[0].Url)
	assert.Equal(t, createdAt+24*time.Hour.Milliseconds(), resp[0].ExpiresAt)
}

func TestGetVideos_EmptyStoreIsEmptyArray(t *testing.T) {
	f := newApiFixture(t)

	rec := httptest.NewRecorder()
	f.controller.GetVideos(rec, httptest.NewRequest(http.MethodGet, "/api/videos", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())
}

func renameReq(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/videos/100/200/nickname", strings.NewReader(body))
	req.SetPathValue("chatId", "100")
	req.SetPathValue("messageId", "200")
	return req
}

func TestRenameVideo(t *testing.T) {
	f := newApiFixture(t)
	require.NoError(t, f.videos.Set("100/200", &models.VideoRecord{Id: "100/200", NickName: "old", ChatId: 100, MessageId: 200}))

	rec := httptest.NewRecorder()
	f.controller.RenameVideo(rec, renameReq(`{"nickName":"new name"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp videoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "new name", resp.NickName)

	stored, ok := f.videos.Get("100/200")
	require.True(t, ok)
	assert.Equal(t, "new name", stored.NickName)
}

func TestRenameVideo_UnknownId(t *testing.T) {
	f := newApiFixture(t)

	rec := httptest.NewRecorder()
	f.controller.RenameVideo(rec, renameReq(`{"nickName":"new"}`))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRenameVideo_MalformedBody(t *testing.T) {
	f := newApiFixture(t)

	rec := httptest.NewRecorder()
	f.controller.RenameVideo(rec, renameReq("{broken"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRenameVideo_PersistFailureStillApplies(t *testing.T) {
	f := newApiFixture(t)
	require.NoError(t, f.videos.Set("100/200", &models.VideoRecord{Id: "100/200", NickName: "old", ChatId: 100, MessageId: 200}))
	f.fm.SaveErr = assert.AnError

	rec := httptest.NewRecorder()
	f.controller.RenameVideo(rec, renameReq(`{"nickName":"new"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	stored, _ := f.videos.Get("100/200")
	assert.Equal(t, "new", stored.NickName)
	assert.NotEmpty(t, f.logger.Logs)
}

func TestGetLinks(t *testing.T) {
	f := newApiFixture(t)
	require.NoError(t, f.links.Add(services.Link{Url: "https://example.com/article", ChatId: 100, AddedAt: time.Now().UnixMilli()}))

	rec := httptest.NewRecorder()
	f.controller.GetLinks(rec, httptest.NewRequest(http.MethodGet, "/api/links", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp []services.Link
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "https://example.com/article", resp[0].Url)
}
