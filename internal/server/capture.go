package server

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lightcrafter/dlpc350/internal/logging"
	"github.com/lightcrafter/dlpc350/internal/protocol"
)

// Packet directions recorded in captures
const (
	DirectionToDevice   = "host->device"
	DirectionFromDevice = "device->host"
)

// PacketRecord is one captured packet
type PacketRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	PacketNum  int       `json:"packet_num"`
	RemoteAddr string    `json:"remote_addr"`
	Direction  string    `json:"direction"`
	Frame      string    `json:"frame,omitempty"` // Decoded header, first packet of a frame only
	PacketHex  string    `json:"packet_hex"`
}

// Capture appends forwarded packets to a JSON Lines file.
// A Capture with an empty directory records nothing.
type Capture struct {
	mu         sync.Mutex
	file       *os.File
	remoteAddr string
	count      int
	pending    int // continuation packets still expected from the host
}

// newCapture opens a capture file in dir, or returns a disabled capture
func newCapture(dir string, remoteAddr string) *Capture {
	c := &Capture{remoteAddr: remoteAddr}
	if dir == "" {
		return c
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		logging.Error("Failed to create capture directory", zap.String("dir", dir), zap.Error(err))
		return c
	}

	name := fmt.Sprintf("capture-%s-%s.jsonl",
		time.Now().Format("20060102-150405"),
		strings.NewReplacer(":", "_", "[", "", "]", "").Replace(remoteAddr))
	filename := filepath.Join(dir, name)

	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logging.Error("Failed to open capture file",
			zap.String("filename", filename),
			zap.Error(err),
		)
		return c
	}
	c.file = f
	logging.Info("Capturing packets", zap.String("filename", filename))
	return c
}

// Path returns the capture file path, or "" when disabled
func (c *Capture) Path() string {
	if c.file == nil {
		return ""
	}
	return c.file.Name()
}

// Record appends one packet
func (c *Capture) Record(direction string, packet []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file == nil {
		return
	}

	c.count++
	rec := PacketRecord{
		Timestamp:  time.Now(),
		PacketNum:  c.count,
		RemoteAddr: c.remoteAddr,
		Direction:  direction,
		PacketHex:  hex.EncodeToString(packet),
	}

	// Replies are always one packet; host frames may continue
	if direction == DirectionFromDevice || c.pending == 0 {
		if f, err := protocol.Decode(packet); err == nil {
			rec.Frame = f.String()
			if direction == DirectionToDevice {
				c.pending = protocol.PacketCount(int(f.Length)) - 1
			}
		}
	} else {
		c.pending--
	}

	data, err := json.Marshal(rec)
	if err != nil {
		logging.Error("Failed to marshal packet record", zap.Error(err))
		return
	}
	if _, err := c.file.Write(append(data, '\n')); err != nil {
		logging.Error("Failed to write to capture file",
			zap.String("filename", c.file.Name()),
			zap.Error(err),
		)
	}
}

// Close closes the capture file
func (c *Capture) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file != nil {
		_ = c.file.Close()
		c.file = nil
	}
}
