package models

import "time"

// VideoRecord is a single ingested video. The composite key
// "<chatId>/<messageId>" addresses exactly one record.
type VideoRecord struct {
	Id        string `json:"id"`
	NickName  string `json:"nickName"`
	Caption   string `json:"caption"`
	ChatId    int64  `json:"chatId"`
	MessageId int    `json:"messageId"`
	CreatedAt int64  `json:"createdAt"` // unix milliseconds
}

func (v *VideoRecord) ExpiresAt(ttl time.Duration) time.Time {
	return time.UnixMilli(v.CreatedAt).Add(ttl)
}

func (v *VideoRecord) Clone() *VideoRecord {
	c := *v
	return &c
}

// VideoStorage is the on-disk shape: one JSON object keyed by video id.
type VideoStorage map[string]*VideoRecord
