package transport

import (
	"errors"
	"time"
)

const (
	// PacketSize is the size of every packet exchanged with the controller
	PacketSize = 64

	// DefaultReadTimeout is how long Receive waits for a reply packet
	DefaultReadTimeout = 2000 * time.Millisecond
)

var (
	// ErrNotConnected is returned when the transport is not open
	ErrNotConnected = errors.New("transport not connected")

	// ErrTimeout is returned when no packet arrives before the read timeout
	ErrTimeout = errors.New("transport read timeout")

	// ErrClosed is returned when the transport was closed during an operation
	ErrClosed = errors.New("transport closed")

	// ErrPacketSize is returned for packets that are not exactly PacketSize bytes
	ErrPacketSize = errors.New("invalid packet size")
)

// Transport is a packet channel to the controller.
// Implementations are owned by a single driver and need not support
// concurrent Send or Receive calls.
type Transport interface {
	// Open connects to the device
	Open() error

	// Close releases the device. Closing a closed transport is a no-op.
	Close() error

	// Send writes one PacketSize packet and returns the bytes written
	Send(packet []byte) (int, error)

	// Receive waits up to timeout for one PacketSize packet
	Receive(timeout time.Duration) ([]byte, error)

	// IsConnected reports whether the transport is open
	IsConnected() bool
}

// checkPacket validates an outgoing packet
func checkPacket(packet []byte) error {
	if len(packet) != PacketSize {
		return ErrPacketSize
	}
	return nil
}
