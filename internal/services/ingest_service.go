package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"tvd/internal/models"
	"tvd/internal/providers"
	"tvd/internal/structures"
	"tvd/internal/upstream"
	"tvd/internal/video/interfaces"
)

type IngestServiceInterface interface {
	HandleEvent(ctx context.Context, ev *upstream.MessageEvent)
}

// IngestService maps each inbound message event to exactly one action:
// new video, rename, link command, or nothing. First match wins.
type IngestService struct {
	conf      *structures.Config
	logger    providers.Logger
	videos    VideoServiceInterface
	links     LinkServiceInterface
	client    upstream.ClientInterface
	scheduler interfaces.SchedulerInterface
	metrics   providers.MetricsProviderInterface
	now       func() time.Time
}

func NewIngestService(conf *structures.Config, logger providers.Logger, videos VideoServiceInterface, links LinkServiceInterface, client upstream.ClientInterface, scheduler interfaces.SchedulerInterface, metrics providers.MetricsProviderInterface) IngestServiceInterface {
	return &IngestService{
		conf:      conf,
		logger:    logger,
		videos:    videos,
		links:     links,
		client:    client,
		scheduler: scheduler,
		metrics:   metrics,
		now:       time.Now,
	}
}

func (is *IngestService) HandleEvent(ctx context.Context, ev *upstream.MessageEvent) {
	switch {
	case isNewVideo(ev):
		is.metrics.IncIngestEvents("video")
		is.handleNewVideo(ctx, ev)
	case ev.ReplyToId != 0:
		is.metrics.IncIngestEvents("rename")
		is.handleRename(ctx, ev)
	case strings.HasPrefix(ev.Text, "/link"):
		is.metrics.IncIngestEvents("link")
		is.handleLink(ev)
	default:
		is.metrics.IncIngestEvents("ignored")
	}
}

func isNewVideo(ev *upstream.MessageEvent) bool {
	if ev.Video == nil || ev.Video.Gif {
		return false
	}
	return ev.Video.MimeType == "video/mp4" || ev.Video.MimeType == "video/x-matroska"
}

// nickNameFromFile strips the final extension from the declared filename.
// Attachments without a filename get an empty nickname rather than failing.
func nickNameFromFile(name string) string {
	if name == "" {
		return ""
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func (is *IngestService) handleNewVideo(ctx context.Context, ev *upstream.MessageEvent) {
	id := ev.VideoId()
	now := is.now()

	createdAt := now.UnixMilli()
	isNew := true
	if existing, ok := is.videos.Get(id); ok {
		// Re-ingest of a known id refreshes caption and nickname but
		// keeps the original creation time and its expiry job.
		createdAt = existing.CreatedAt
		isNew = false
	}

	if err := is.client.MarkRead(ctx, ev.ChatId, ev.MessageId); err != nil {
		is.logger.Warnf(providers.TypeIngest, "Mark read failed for %s: %s", id, err)
	}

	record := &models.VideoRecord{
		Id:        id,
		NickName:  nickNameFromFile(ev.Video.FileName),
		Caption:   ev.Text,
		ChatId:    ev.ChatId,
		MessageId: ev.MessageId,
		CreatedAt: createdAt,
	}
	if err := is.videos.Set(id, record); err != nil {
		is.logger.Errorf(providers.TypeIngest, "Persisting video %s failed: %s", id, err)
	}
	if isNew {
		is.scheduler.Schedule(id, record.ExpiresAt(is.conf.Video.TTL))
	}

	is.reply(ctx, ev, fmt.Sprintf("%s/%s", is.conf.Video.BaseUrl, id))
	is.logger.Infof(providers.TypeIngest, "Ingested video %s (%s)", id, record.NickName)
}

func (is *IngestService) handleRename(ctx context.Context, ev *upstream.MessageEvent) {
	targetId := fmt.Sprintf("%d/%d", ev.ChatId, ev.ReplyToId)

	record, err := is.videos.Rename(targetId, ev.Text)
	if errors.Is(err, ErrNotFound) {
		// Reply to something that is not a tracked video: drop silently.
		return
	}
	if err != nil {
		is.logger.Errorf(providers.TypeIngest, "Persisting rename of %s failed: %s", targetId, err)
	}

	is.reply(ctx, ev, fmt.Sprintf("%s/%s", is.conf.Video.BaseUrl, record.Id))
	if err := is.client.MarkRead(ctx, ev.ChatId, ev.MessageId); err != nil {
		is.logger.Warnf(providers.TypeIngest, "Mark read failed for %s: %s", targetId, err)
	}
	is.logger.Infof(providers.TypeIngest, "Renamed video %s to %q", targetId, ev.Text)
}

func (is *IngestService) handleLink(ev *upstream.MessageEvent) {
	raw := strings.TrimSpace(strings.TrimPrefix(ev.Text, "/link"))
	if err := is.links.Add(Link{Url: raw, ChatId: ev.ChatId, AddedAt: is.now().UnixMilli()}); err != nil {
		is.logger.Errorf(providers.TypeIngest, "Persisting link failed: %s", err)
	}
}

// reply sends the acknowledgement carrying the viewer URL. A failed reply
// never rolls back the store mutation that already happened.
func (is *IngestService) reply(ctx context.Context, ev *upstream.MessageEvent, text string) {
	if err := is.client.SendReply(ctx, ev.ChatId, ev.MessageId, text); err != nil {
		is.logger.Errorf(providers.TypeIngest, "Reply to %d/%d failed: %s", ev.ChatId, ev.MessageId, err)
	}
}
