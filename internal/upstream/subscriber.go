package upstream

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/atomic"

	"tvd/internal/providers"
	"tvd/internal/structures"
)

const reconnectDelay = 5 * time.Second

// EventHandler consumes one inbound message event. Implementations own
// their error handling; a handler must never kill the subscription loop.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev *MessageEvent)
}

// Subscriber holds the live websocket to the gateway event stream. The chat
// allow-list is pushed into the subscribe URL so filtering happens at the
// gateway, not here.
type Subscriber struct {
	eventsUrl string
	chats     []int64
	handler   EventHandler
	logger    providers.Logger
	connected atomic.Bool
}

func NewSubscriber(conf *structures.Config, handler EventHandler, logger providers.Logger) *Subscriber {
	return &Subscriber{
		eventsUrl: conf.Upstream.EventsUrl,
		chats:     conf.Upstream.AllowedChats,
		handler:   handler,
		logger:    logger,
	}
}

func (s *Subscriber) Connected() bool {
	return s.connected.Load()
}

// Start consumes events until the context is cancelled, reconnecting after
// transient failures.
func (s *Subscriber) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := s.subscribe(ctx); err != nil {
				s.logger.Errorf(providers.TypeIngest, "Event stream error, reconnecting: %s", err)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(reconnectDelay):
				}
			}
		}
	}
}

func (s *Subscriber) buildURL() string {
	u, _ := url.Parse(s.eventsUrl)
	q := u.Query()
	for _, chat := range s.chats {
		q.Add("chats", fmt.Sprintf("%d", chat))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *Subscriber) subscribe(ctx context.Context) error {
	wsURL := s.buildURL()
	s.logger.Infof(providers.TypeIngest, "Connecting to event stream %s", wsURL)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial event stream: %w", err)
	}
	defer conn.Close()

	s.connected.Store(true)
	defer s.connected.Store(false)
	s.logger.Infof(providers.TypeIngest, "Event stream connected")

	// The dial context does not cover an established connection; close it
	// ourselves so cancellation unblocks ReadMessage.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read event: %w", err)
		}

		ev, err := parseEvent(message)
		if err != nil {
			s.logger.Warnf(providers.TypeIngest, "Dropping malformed event: %s", err)
			continue
		}

		s.handler.HandleEvent(ctx, ev)
	}
}
