package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"tvd/internal/providers"
	"tvd/internal/services"
	"tvd/internal/structures"
	"tvd/internal/upstream"
)

// StreamController serves one aligned window of a video per request as a
// 206 partial response, reassembled from chunked gateway fetches. Each
// request recomputes its own window; nothing is cached across requests
// except the upstream media descriptor.
type StreamController struct {
	conf    *structures.Config
	logger  providers.Logger
	videos  services.VideoServiceInterface
	client  upstream.ClientInterface
	cache   providers.CacheProviderInterface
	metrics providers.MetricsProviderInterface
}

func NewStreamController(conf *structures.Config, logger providers.Logger, videos services.VideoServiceInterface, client upstream.ClientInterface, cache providers.CacheProviderInterface, metrics providers.MetricsProviderInterface) *StreamController {
	return &StreamController{
		conf:    conf,
		logger:  logger,
		videos:  videos,
		client:  client,
		cache:   cache,
		metrics: metrics,
	}
}

// parseRangeStart extracts the starting offset of a single byte-unit range.
// Anything that does not reduce to one numeric start falls back to offset 0.
// That fallback mirrors long-standing behavior and is kept as policy.
func parseRangeStart(header string) int64 {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return 0
	}
	first, _, _ := strings.Cut(spec, "-")
	start, err := strconv.ParseInt(strings.TrimSpace(first), 10, 64)
	if err != nil || start < 0 {
		return 0
	}
	return start
}

func (sc *StreamController) Stream(w http.ResponseWriter, r *http.Request) {
	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		http.Error(w, "Requires Range header", http.StatusBadRequest)
		return
	}

	id := r.PathValue("chatId") + "/" + r.PathValue("messageId")
	video, ok := sc.videos.Get(id)
	if !ok {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	sc.metrics.IncActiveStreams()
	defer sc.metrics.DecActiveStreams()

	info, err := sc.messageInfo(r.Context(), video.ChatId, video.MessageId, id)
	if err != nil {
		sc.upstreamError(w, id, err)
		return
	}

	chunkUnit := sc.conf.Video.ChunkUnit
	budget := chunkUnit * sc.conf.Video.ChunkBudget

	requested := parseRangeStart(rangeHeader)
	start := requested - requested%chunkUnit
	if start >= info.Size {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", info.Size))
		http.Error(w, "Range not satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return
	}
	end := start + budget
	if end > info.Size {
		end = info.Size
	}
	contentLength := end - start

	buf, err := sc.client.Download(r.Context(), video.ChatId, video.MessageId, start, contentLength)
	if err != nil {
		if r.Context().Err() != nil {
			// Client went away mid-window; nothing left to answer.
			return
		}
		sc.upstreamError(w, id, err)
		return
	}

	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end-1, info.Size))
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Length", strconv.FormatInt(contentLength, 10))
	w.Header().Set("Content-Type", "video/mp4")
	w.WriteHeader(http.StatusPartialContent)
	n, _ := w.Write(buf)
	sc.metrics.AddStreamBytes(n)
}

// messageInfo returns the authoritative media descriptor, fronted by the
// byte cache since descriptors are immutable upstream.
func (sc *StreamController) messageInfo(ctx context.Context, chatId int64, messageId int, id string) (*upstream.MessageInfo, error) {
	cacheKey := "info:" + id
	if data, ok := sc.cache.Get(cacheKey); ok {
		var info upstream.MessageInfo
		if err := json.Unmarshal(data, &info); err == nil {
			sc.metrics.IncCacheHits()
			return &info, nil
		}
	}
	sc.metrics.IncCacheMisses()

	info, err := sc.client.GetMessage(ctx, chatId, messageId)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(info); err == nil {
		sc.cache.Set(cacheKey, data)
	}
	return info, nil
}

func (sc *StreamController) upstreamError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, upstream.ErrNotFound) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	sc.logger.Errorf(providers.TypeStream, "Upstream failure for %s: %s", id, err)
	http.Error(w, "Bad Gateway", http.StatusBadGateway)
}
