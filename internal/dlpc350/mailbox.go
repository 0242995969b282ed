package dlpc350

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lightcrafter/dlpc350/internal/protocol"
)

// MailboxSession is an open mailbox on one target buffer. The driver's
// mailbox lock is held until Close, so sessions never interleave.
type MailboxSession struct {
	driver *Driver
	target uint8
	closed bool
}

// OpenMailbox opens the mailbox on target (MailboxImageLUT or
// MailboxPatternLUT). It blocks while another session is open. The caller
// must Close the session.
func (d *Driver) OpenMailbox(target uint8) (*MailboxSession, error) {
	if target != MailboxImageLUT && target != MailboxPatternLUT {
		return nil, protocol.NewPreconditionError("open mailbox",
			fmt.Sprintf("unknown mailbox target %d", target))
	}

	d.mailboxMu.Lock()
	if err := d.Set(OpMailboxControl, target); err != nil {
		d.mailboxMu.Unlock()
		return nil, protocol.WithOp(err, "open mailbox")
	}
	d.log.Debug("mailbox opened", zap.Uint8("target", target))

	return &MailboxSession{driver: d, target: target}, nil
}

// SetAddress positions the device-side write cursor
func (s *MailboxSession) SetAddress(offset uint8) error {
	if s.closed {
		return protocol.NewPreconditionError("set mailbox address", "mailbox session is closed")
	}
	if offset > MaxMailboxAddress {
		return protocol.NewPreconditionError("set mailbox address",
			fmt.Sprintf("offset %d out of range (max %d)", offset, MaxMailboxAddress))
	}
	return s.driver.Set(OpMailboxAddress, offset)
}

// Write sends data at the write cursor as one bulk frame, spanning as many
// packets as needed
func (s *MailboxSession) Write(data []byte) error {
	if s.closed {
		return protocol.NewPreconditionError("write mailbox", "mailbox session is closed")
	}
	frame := protocol.Encode(protocol.Write, OpMailboxData, data)
	if _, err := s.driver.codec.Transact(frame); err != nil {
		return protocol.WithOp(err, "write mailbox")
	}
	s.driver.log.Debug("mailbox written",
		zap.Uint8("target", s.target),
		zap.Int("bytes", len(data)),
		zap.Int("packets", protocol.PacketCount(int(frame.Length))),
	)
	return nil
}

// Close closes the mailbox and releases the session lock. The lock is
// released even when the close command fails. Closing twice is a no-op.
func (s *MailboxSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	defer s.driver.mailboxMu.Unlock()

	if err := s.driver.Set(OpMailboxControl); err != nil {
		return protocol.WithOp(err, "close mailbox")
	}
	s.driver.log.Debug("mailbox closed", zap.Uint8("target", s.target))
	return nil
}

// upload writes data to a mailbox target starting at offset 0. The mailbox
// is closed before upload returns, whatever the outcome of the write.
func (d *Driver) upload(target uint8, data []byte) (err error) {
	session, err := d.OpenMailbox(target)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := session.SetAddress(0); err != nil {
		return err
	}
	return session.Write(data)
}
