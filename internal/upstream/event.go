package upstream

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// VideoAttachment is the media part of an inbound message event.
type VideoAttachment struct {
	MimeType string `json:"mimeType"`
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
	Gif      bool   `json:"gif"`
}

// MessageEvent is one inbound message from the gateway event stream.
type MessageEvent struct {
	ChatId    int64            `json:"chatId"`
	MessageId int              `json:"messageId"`
	Text      string           `json:"text"`
	ReplyToId int              `json:"replyToMessageId,omitempty"`
	Video     *VideoAttachment `json:"video,omitempty"`
}

func (e *MessageEvent) VideoId() string {
	return fmt.Sprintf("%d/%d", e.ChatId, e.MessageId)
}

func parseEvent(data []byte) (*MessageEvent, error) {
	var ev MessageEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if ev.ChatId == 0 || ev.MessageId == 0 {
		return nil, fmt.Errorf("event missing chat or message id")
	}
	return &ev, nil
}
