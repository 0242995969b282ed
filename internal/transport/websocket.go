package transport

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lightcrafter/dlpc350/internal/version"
)

const (
	// writeWait is the time allowed to write a packet to the peer
	writeWait = 10 * time.Second
)

// WebSocket carries packets to a remote bridge, one binary message per packet
type WebSocket struct {
	URL    string
	Dialer *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebSocket creates an unopened WebSocket transport for url
// (e.g. "ws://192.168.1.20:8765/packets")
func NewWebSocket(url string) *WebSocket {
	return &WebSocket{
		URL:    url,
		Dialer: websocket.DefaultDialer,
	}
}

// Open dials the bridge
func (w *WebSocket) Open() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		return nil
	}

	header := http.Header{"User-Agent": []string{version.UserAgent()}}
	conn, resp, err := w.Dialer.Dial(w.URL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to connect to %s (HTTP %d): %w", w.URL, resp.StatusCode, err)
		}
		return fmt.Errorf("failed to connect to %s: %w", w.URL, err)
	}
	w.conn = conn
	return nil
}

// Close sends a close message and drops the connection
func (w *WebSocket) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *WebSocket) closeLocked() error {
	if w.conn == nil {
		return nil
	}
	_ = w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := w.conn.Close()
	w.conn = nil
	return err
}

// Send writes one packet as a binary message
func (w *WebSocket) Send(packet []byte) (int, error) {
	if err := checkPacket(packet); err != nil {
		return 0, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return 0, ErrNotConnected
	}

	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := w.conn.WriteMessage(websocket.BinaryMessage, packet); err != nil {
		_ = w.closeLocked()
		return 0, fmt.Errorf("websocket write: %w", err)
	}
	return len(packet), nil
}

// Receive waits for the next binary message. A read deadline poisons a
// gorilla connection, so a timeout here also closes the transport.
func (w *WebSocket) Receive(timeout time.Duration) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return nil, ErrNotConnected
	}

	_ = w.conn.SetReadDeadline(time.Now().Add(timeout))
	for {
		msgType, data, err := w.conn.ReadMessage()
		if err != nil {
			_ = w.closeLocked()
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return nil, ErrTimeout
			}
			return nil, fmt.Errorf("websocket read: %w", err)
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		if len(data) != PacketSize {
			return nil, fmt.Errorf("websocket read: %w (%d bytes)", ErrPacketSize, len(data))
		}
		return data, nil
	}
}

// IsConnected reports whether the connection is open
func (w *WebSocket) IsConnected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn != nil
}
