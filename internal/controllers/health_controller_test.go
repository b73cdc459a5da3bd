package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tvd/internal/models"
	"tvd/internal/services"
	"tvd/internal/structures"
	"tvd/internal/testutil"
	"tvd/internal/upstream"
)

func TestHealth(t *testing.T) {
	conf := &structures.Config{}
	conf.Persistence.FilePath = "videos.json"
	logger := &testutil.MockLogger{}
	videos := services.NewVideoService(conf, testutil.NewMockFileManager(), logger)
	require.NoError(t, videos.Set("100/200", &models.VideoRecord{Id: "100/200", ChatId: 100, MessageId: 200}))

	subscriber := upstream.NewSubscriber(conf, nil, logger)
	controller := NewHealthController(videos, subscriber)

	rec := httptest.NewRecorder()
	controller.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Videos)
	assert.False(t, resp.Upstream)
	assert.GreaterOrEqual(t, resp.UptimeSeconds, 0.0)
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	conf := &structures.Config{}
	logger := &testutil.MockLogger{}
	videos := services.NewVideoService(conf, testutil.NewMockFileManager(), logger)
	controller := NewHealthController(videos, upstream.NewSubscriber(conf, nil, logger))

	rec := httptest.NewRecorder()
	controller.Health(rec, httptest.NewRequest(http.MethodPost, "/health", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0h0m5s", formatDuration(5*time.Second))
	assert.Equal(t, "1h1m1s", formatDuration(time.Hour+time.Minute+time.Second))
	assert.Equal(t, "25h0m0s", formatDuration(25*time.Hour))
}
