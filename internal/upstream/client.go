package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	json "github.com/goccy/go-json"
	"go.uber.org/atomic"

	"tvd/internal/providers"
	"tvd/internal/structures"
)

var (
	// ErrNotFound means the message or its media no longer resolves
	// upstream.
	ErrNotFound = errors.New("upstream message not found")
	// ErrShortRead means a download yielded fewer bytes than the gateway
	// promised. That is a protocol violation, never silently truncated.
	ErrShortRead = errors.New("upstream returned short chunk")
)

// MessageInfo is the authoritative media descriptor for one message.
type MessageInfo struct {
	ChatId    int64  `json:"chatId"`
	MessageId int    `json:"messageId"`
	Size      int64  `json:"size"`
	MimeType  string `json:"mimeType"`
	FileName  string `json:"fileName"`
}

type ClientInterface interface {
	GetMessage(ctx context.Context, chatId int64, messageId int) (*MessageInfo, error)
	Download(ctx context.Context, chatId int64, messageId int, offset, length int64) ([]byte, error)
	SendReply(ctx context.Context, chatId int64, messageId int, text string) error
	MarkRead(ctx context.Context, chatId int64, messageId int) error
	SetToken(token string)
}

// Client talks to the media gateway fronting the messaging platform. All
// calls carry the gateway session token; downloads are issued as
// whole-chunk fetches of requestSize bytes.
type Client struct {
	baseUrl     string
	requestSize int64
	httpClient  *http.Client
	token       atomic.String
	logger      providers.Logger
}

func NewClient(conf *structures.Config, logger providers.Logger) ClientInterface {
	return &Client{
		baseUrl:     conf.Upstream.GatewayUrl,
		requestSize: conf.Upstream.RequestSize,
		httpClient:  &http.Client{Timeout: conf.Upstream.Timeout},
		logger:      logger,
	}
}

func (c *Client) SetToken(token string) {
	c.token.Store(token)
}

func (c *Client) GetMessage(ctx context.Context, chatId int64, messageId int) (*MessageInfo, error) {
	u := fmt.Sprintf("%s/messages/%d/%d", c.baseUrl, chatId, messageId)
	body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	var info MessageInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decode message info: %w", err)
	}
	return &info, nil
}

// Download fetches exactly [offset, offset+length) of the message media,
// one requestSize chunk at a time, and returns the reassembled buffer. A
// chunk shorter than requested surfaces as ErrShortRead.
func (c *Client) Download(ctx context.Context, chatId int64, messageId int, offset, length int64) ([]byte, error) {
	buf := make([]byte, 0, length)
	for fetched := int64(0); fetched < length; {
		want := c.requestSize
		if remaining := length - fetched; remaining < want {
			want = remaining
		}

		u := fmt.Sprintf("%s/files/%d/%d?%s", c.baseUrl, chatId, messageId, url.Values{
			"offset": {fmt.Sprintf("%d", offset+fetched)},
			"limit":  {fmt.Sprintf("%d", want)},
		}.Encode())
		chunk, err := c.do(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		if int64(len(chunk)) != want {
			return nil, fmt.Errorf("%w: want %d bytes at %d, got %d", ErrShortRead, want, offset+fetched, len(chunk))
		}
		buf = append(buf, chunk...)
		fetched += want
	}
	c.logger.Debugf(providers.TypeStream, "Downloaded %d bytes at offset %d for %d/%d", length, offset, chatId, messageId)
	return buf, nil
}

func (c *Client) SendReply(ctx context.Context, chatId int64, messageId int, text string) error {
	u := fmt.Sprintf("%s/messages/%d/%d/reply", c.baseUrl, chatId, messageId)
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPost, u, payload)
	return err
}

func (c *Client) MarkRead(ctx context.Context, chatId int64, messageId int) error {
	u := fmt.Sprintf("%s/messages/%d/%d/read", c.baseUrl, chatId, messageId)
	_, err := c.do(ctx, http.MethodPost, u, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, u string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token.Load(); token != "" {
		req.Header.Set("X-Session-Token", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned %d for %s", resp.StatusCode, u)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gateway response: %w", err)
	}
	return data, nil
}
