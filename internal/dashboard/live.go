package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/umar/nexttalk-dash/internal/chat"
)

const (
	liveMinBackoff = time.Second
	liveMaxBackoff = 30 * time.Second
	livePingPeriod = 30 * time.Second
)

// LiveFeed listens on the server's websocket for room events. Events only
// trigger refetches; polling stays the source of truth.
type LiveFeed struct {
	url    string
	dialer *websocket.Dialer
	header http.Header
	log    *slog.Logger
}

func NewLiveFeed(url string, logger *slog.Logger) *LiveFeed {
	if logger == nil {
		logger = slog.Default()
	}
	return &LiveFeed{
		url:    url,
		dialer: websocket.DefaultDialer,
		log:    logger.With("component", "live"),
	}
}

// Run connects and delivers every event to onEvent until ctx ends,
// reconnecting with exponential backoff.
func (f *LiveFeed) Run(ctx context.Context, onEvent func(chat.WSMessage)) error {
	backoff := liveMinBackoff
	for {
		connected, err := f.session(ctx, onEvent)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			backoff = liveMinBackoff
		}
		f.log.Warn("live connection lost", "error", err, "retry_in", backoff)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, liveMaxBackoff)
	}
}

func (f *LiveFeed) session(ctx context.Context, onEvent func(chat.WSMessage)) (bool, error) {
	conn, _, err := f.dialer.DialContext(ctx, f.url, f.header)
	if err != nil {
		return false, err
	}
	defer conn.Close()
	f.log.Info("live connection established")

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(livePingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				_ = conn.Close()
				return
			case <-stop:
				return
			case <-ticker.C:
				ping, _ := chat.NewWSMessage(chat.TypePing, nil)
				if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		var msg chat.WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			f.log.Debug("ignoring malformed live event", "error", err)
			continue
		}
		if msg.Type == chat.TypePong {
			continue
		}
		onEvent(msg)
	}
}
