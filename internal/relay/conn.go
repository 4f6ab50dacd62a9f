package relay

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
)

// Conn is a single relay connection. Implementations must support one
// concurrent reader and one concurrent writer, the WebSocket discipline.
type Conn interface {
	// ReadJSON reads the next frame from the relay into v. It blocks
	// until a frame arrives or the connection fails.
	ReadJSON(v interface{}) error

	// WriteJSON writes v as a single frame.
	WriteJSON(v interface{}) error

	// Close tears down the connection. Any blocked ReadJSON returns
	// with an error.
	Close() error
}

// Dialer opens relay connections. The production implementation wraps
// gorilla/websocket; tests substitute an in-memory fake.
type Dialer interface {
	DialContext(ctx context.Context, url string, header http.Header) (Conn, error)
}

// WebSocketDialer dials the relay over a real WebSocket.
type WebSocketDialer struct {
	dialer *websocket.Dialer
}

// NewWebSocketDialer returns a Dialer backed by the default gorilla dialer.
func NewWebSocketDialer() *WebSocketDialer {
	return &WebSocketDialer{dialer: websocket.DefaultDialer}
}

// DialContext opens a WebSocket connection to url.
func (d *WebSocketDialer) DialContext(ctx context.Context, url string, header http.Header) (Conn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// IsUnexpectedClose reports whether err represents an abnormal connection
// loss rather than a clean shutdown initiated by either side.
func IsUnexpectedClose(err error) bool {
	return websocket.IsUnexpectedCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}
