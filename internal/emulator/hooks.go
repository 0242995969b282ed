package emulator

import (
	"github.com/lightcrafter/dlpc350/internal/pattern"
	"github.com/lightcrafter/dlpc350/internal/protocol"
)

// Forever makes a failure hook apply to every following frame
const Forever = -1

// FailOpcode makes the next n frames with op answer with the error bit set.
// n == Forever rejects every frame until ClearHooks.
func (d *Device) FailOpcode(op protocol.Opcode, n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failOps[op] = n
}

// DropReply makes the next n frames with op go unanswered, so the host
// runs into its read timeout
func (d *Device) DropReply(op protocol.Opcode, n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dropOps[op] = n
}

// ClearHooks removes every failure hook
func (d *Device) ClearHooks() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failOps = make(map[protocol.Opcode]int)
	d.dropOps = make(map[protocol.Opcode]int)
}

// Frames returns every frame executed so far, in order
func (d *Device) Frames() []protocol.Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]protocol.Frame(nil), d.frames...)
}

// Opcodes returns the opcode of every executed frame, in order
func (d *Device) Opcodes() []protocol.Opcode {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]protocol.Opcode, len(d.frames))
	for i := range d.frames {
		out[i] = d.frames[i].Opcode()
	}
	return out
}

// Count returns how many frames with op (and direction dir) were executed
func (d *Device) Count(dir protocol.Direction, op protocol.Opcode) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for i := range d.frames {
		if d.frames[i].Opcode() == op && d.frames[i].Flags.Direction == dir {
			n++
		}
	}
	return n
}

// PacketsReceived returns how many packets the device accepted
func (d *Device) PacketsReceived() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sendCount
}

// ResetLog forgets recorded frames and packet counts
func (d *Device) ResetLog() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frames = nil
	d.sendCount = 0
}

// MailboxOpen reports whether a mailbox session is open on the device
func (d *Device) MailboxOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mailboxTarget != 0
}

// Configuration returns the last accepted configure command
func (d *Device) Configuration() (Configuration, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.config, d.configured
}

// PatternLUT returns the uploaded pattern entries
func (d *Device) PatternLUT() []pattern.Entry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.uploadedEntries()
}

// ImageLUT returns the uploaded image table as stored by the device
func (d *Device) ImageLUT() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.imageLUT[:d.imageBytes]...)
}

// Register returns the raw value of a one-byte register
func (d *Device) Register(op protocol.Opcode) (byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.regs[op]
	return v, ok
}

// SetRegister overwrites a one-byte register without going through the
// command path
func (d *Device) SetRegister(op protocol.Opcode, v byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.regs[op] = v
	delete(d.lags, op)
}

// Period returns the configured pattern period
func (d *Device) Period() pattern.Period {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.period
}
