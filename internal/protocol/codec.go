package protocol

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lightcrafter/dlpc350/internal/logging"
	"github.com/lightcrafter/dlpc350/internal/transport"
)

// Codec runs transactions over a packet transport
type Codec struct {
	// ReadTimeout bounds the wait for a reply packet
	ReadTimeout time.Duration

	transport transport.Transport
	mu        sync.Mutex
}

// NewCodec creates a codec over an opened transport
func NewCodec(t transport.Transport) *Codec {
	if t == nil {
		panic("transport cannot be nil")
	}
	return &Codec{
		ReadTimeout: transport.DefaultReadTimeout,
		transport:   t,
	}
}

// Transport returns the underlying transport
func (c *Codec) Transport() transport.Transport {
	return c.transport
}

// Send transmits a frame, spreading it over as many packets as needed.
// The first transport failure aborts the frame; nothing is retried.
func (c *Codec) Send(f *Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}

	data := f.Marshal()
	logging.LogFrame("send", f.String(), data)

	for i, packet := range Packetize(data) {
		if _, err := c.transport.Send(packet); err != nil {
			c.disconnect(err)
			return NewTransportError(fmt.Sprintf("send packet %d", i), err)
		}
	}
	return nil
}

// disconnect closes the transport after a send or receive failure. The
// controller may still answer the failed request, so the link cannot be
// trusted for the next one.
func (c *Codec) disconnect(cause error) {
	if err := c.transport.Close(); err != nil {
		logging.Warn("transport close failed", zap.Error(err))
	}
	logging.Debug("transport closed after failure", zap.Error(cause))
}

// Receive decodes one reply packet
func (c *Codec) Receive() (*Frame, error) {
	packet, err := c.transport.Receive(c.ReadTimeout)
	if err != nil {
		c.disconnect(err)
		if errors.Is(err, transport.ErrTimeout) {
			return nil, NewTransportError("receive",
				fmt.Errorf("no reply within %s: %w", c.ReadTimeout, err))
		}
		return nil, NewTransportError("receive", err)
	}

	f, err := Decode(packet)
	if err != nil {
		return nil, err
	}
	logging.LogFrame("receive", f.String(), packet)

	if f.Flags.Error {
		return nil, NewDeviceRejectedError("receive", "reply error bit set")
	}
	if f.Flags.Direction == Read && f.Length == 0 {
		return nil, NewDeviceRejectedError("receive", "read reply carried no data")
	}
	return f, nil
}

// Transact sends a frame and, if a reply was requested, returns the reply
// payload. A fire-and-forget frame returns nil data and nil error.
func (c *Codec) Transact(f *Frame) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.Send(f); err != nil {
		logging.Debug("transaction send failed",
			zap.String("opcode", f.Opcode().String()),
			zap.Error(err),
		)
		return nil, err
	}

	if !f.Flags.Reply {
		return nil, nil
	}

	reply, err := c.Receive()
	if err != nil {
		logging.Debug("transaction reply failed",
			zap.String("opcode", f.Opcode().String()),
			zap.Error(err),
		)
		return nil, err
	}
	return reply.Payload, nil
}

// Get issues a read command
func (c *Codec) Get(op Opcode) ([]byte, error) {
	return c.Transact(Encode(Read, op, nil))
}

// Set issues a write command with parameters and waits for the acknowledgement
func (c *Codec) Set(op Opcode, params ...byte) error {
	_, err := c.Transact(Encode(Write, op, params))
	return err
}
