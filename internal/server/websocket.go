package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lightcrafter/dlpc350/internal/logging"
	"github.com/lightcrafter/dlpc350/internal/transport"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// replyPoll bounds each device read so the reply pump notices a detach
	replyPoll = 50 * time.Millisecond
)

// handlePackets upgrades the request and bridges it to the device
func (s *Server) handlePackets(w http.ResponseWriter, r *http.Request) {
	remoteAddr := r.RemoteAddr

	s.mu.Lock()
	if s.client != nil {
		s.stats.Rejected++
		s.mu.Unlock()
		logging.Warn("Refusing second client", zap.String("remote_addr", remoteAddr))
		http.Error(w, "another client is attached", http.StatusConflict)
		return
	}
	if !s.device.IsConnected() {
		s.mu.Unlock()
		http.Error(w, "device not connected", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.mu.Unlock()
		// Upgrade has already written the HTTP error
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		return
	}
	s.client = conn
	s.clients++
	s.wg.Add(1)
	s.mu.Unlock()

	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		s.client = nil
		s.mu.Unlock()
		s.wg.Done()
		logging.LogConnection(remoteAddr, "disconnected")
	}()

	logging.LogConnection(remoteAddr, "connected")
	s.bridge(conn, remoteAddr)
}

// bridge forwards client packets to the device and device packets back to
// the client until either side fails
func (s *Server) bridge(conn *websocket.Conn, remoteAddr string) {
	capture := newCapture(s.config.CaptureDir, remoteAddr)
	defer capture.Close()

	// Writes come from the reply pump and the pinger
	var writeMu sync.Mutex
	write := func(msgType int, data []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteMessage(msgType, data)
	}

	done := make(chan struct{})
	var pumps sync.WaitGroup
	pumps.Add(2)
	go func() {
		defer pumps.Done()
		s.pumpReplies(conn, remoteAddr, write, capture, done)
	}()
	go func() {
		defer pumps.Done()
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := write(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()
	defer func() {
		close(done)
		pumps.Wait()
	}()

	conn.SetReadLimit(transport.PacketSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Info("Connection closed or error reading message",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err),
				)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		if msgType != websocket.BinaryMessage {
			logging.Debug("Ignoring non-binary message",
				zap.String("remote_addr", remoteAddr),
				zap.Int("type", msgType),
			)
			continue
		}
		if len(data) != transport.PacketSize {
			logging.Warn("Dropping client: bad packet size",
				zap.String("remote_addr", remoteAddr),
				zap.Int("length", len(data)),
			)
			logging.LogRawBytes("rejected packet", data)
			writeMu.Lock()
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseUnsupportedData, "packets must be 64 bytes"),
				time.Now().Add(time.Second))
			writeMu.Unlock()
			return
		}

		capture.Record(DirectionToDevice, data)
		s.mu.Lock()
		s.stats.ToDevice++
		s.mu.Unlock()
		if _, err := s.device.Send(data); err != nil {
			logging.Error("Device send failed",
				zap.String("remote_addr", remoteAddr),
				zap.Error(err),
			)
			return
		}
	}
}

// pumpReplies forwards device packets to the client
func (s *Server) pumpReplies(conn *websocket.Conn, remoteAddr string, write func(int, []byte) error, capture *Capture, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
		}

		packet, err := s.device.Receive(replyPoll)
		if errors.Is(err, transport.ErrTimeout) {
			continue
		}
		if err != nil {
			logging.Error("Device receive failed",
				zap.String("remote_addr", remoteAddr),
				zap.Error(err),
			)
			// Unblocks the read loop
			_ = conn.Close()
			return
		}

		capture.Record(DirectionFromDevice, packet)
		s.mu.Lock()
		s.stats.FromDevice++
		s.mu.Unlock()
		if err := write(websocket.BinaryMessage, packet); err != nil {
			logging.Info("Failed to forward reply",
				zap.String("remote_addr", remoteAddr),
				zap.Error(err),
			)
			return
		}
	}
}
