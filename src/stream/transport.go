package stream

import (
	"context"
	"strings"
	"sync"
	"time"

	"market-sync/src/interfaces"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Websocket transport. This is the production IChannelTransport; tests and
// alternative platforms inject their own.
// -----------------------------------------------------------------------------

type WSTransport struct {
	Dialer *websocket.Dialer
}

// -----------------------------------------------------------------------------

func NewWSTransport(handshakeTimeout time.Duration) *WSTransport {
	return &WSTransport{
		Dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
	}
}

// -----------------------------------------------------------------------------

func (t *WSTransport) OpenChannel(ctx context.Context, url string) (interfaces.IChannel, error) {
	conn, _, err := t.Dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &wsChannel{conn: conn}, nil
}

// -----------------------------------------------------------------------------

type wsChannel struct {
	conn      *websocket.Conn
	closeOnce sync.Once
}

func (c *wsChannel) ReadFrame() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *wsChannel) Close() error {
	// Closing twice must stay a no-op, not an error.
	c.closeOnce.Do(func() {
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.conn.Close()
	})
	return nil
}

// -----------------------------------------------------------------------------

// WSURLFromBase turns the upstream http(s) origin into the push-channel URL,
// the same substitution the shells perform.
func WSURLFromBase(baseURL, wsPath string) string {
	url := baseURL
	if strings.HasPrefix(url, "https://") {
		url = "wss://" + strings.TrimPrefix(url, "https://")
	} else if strings.HasPrefix(url, "http://") {
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return strings.TrimRight(url, "/") + wsPath
}
