package transport

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tarm/serial"
)

// SerialConfig holds serial bridge configuration
type SerialConfig struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate (USB CDC bridges ignore this)
	Baud int

	// PollInterval bounds each blocking read so Receive can check its deadline
	PollInterval time.Duration
}

// DefaultSerialConfig returns defaults for a USB CDC bridge
func DefaultSerialConfig(device string) *SerialConfig {
	return &SerialConfig{
		Device:       device,
		Baud:         115200,
		PollInterval: 100 * time.Millisecond,
	}
}

// Serial forwards raw 64-byte packets over a UART bridge. The bridge
// performs no framing of its own: every PacketSize bytes are one packet.
type Serial struct {
	cfg *SerialConfig

	mu   sync.Mutex
	port *serial.Port
	buf  []byte // partial packet carried between Receive calls
}

// NewSerial creates an unopened serial transport
func NewSerial(cfg *SerialConfig) *Serial {
	return &Serial{cfg: cfg}
}

// Open opens the serial port
func (s *Serial) Open() error {
	if s.cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port != nil {
		return nil
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        s.cfg.Device,
		Baud:        s.cfg.Baud,
		ReadTimeout: s.cfg.PollInterval,
	})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.cfg.Device, err)
	}

	s.port = port
	s.buf = s.buf[:0]
	return nil
}

// Close closes the serial port
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *Serial) closeLocked() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	s.buf = s.buf[:0]
	return err
}

// Send writes one packet
func (s *Serial) Send(packet []byte) (int, error) {
	if err := checkPacket(packet); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return 0, ErrNotConnected
	}

	n, err := s.port.Write(packet)
	if err != nil {
		_ = s.closeLocked()
		return n, fmt.Errorf("serial write: %w", err)
	}
	return n, nil
}

// Receive reads until one full packet has arrived or timeout elapses
func (s *Serial) Receive(timeout time.Duration) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return nil, ErrNotConnected
	}

	deadline := time.Now().Add(timeout)
	chunk := make([]byte, PacketSize)
	for len(s.buf) < PacketSize {
		if time.Now().After(deadline) {
			// The partial packet would shift the framing of the next one
			_ = s.closeLocked()
			return nil, ErrTimeout
		}
		n, err := s.port.Read(chunk[:PacketSize-len(s.buf)])
		if err != nil && !errors.Is(err, io.EOF) {
			_ = s.closeLocked()
			return nil, fmt.Errorf("serial read: %w", err)
		}
		s.buf = append(s.buf, chunk[:n]...)
	}

	packet := make([]byte, PacketSize)
	copy(packet, s.buf)
	s.buf = s.buf[:0]
	return packet, nil
}

// IsConnected reports whether the port is open
func (s *Serial) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port != nil
}
