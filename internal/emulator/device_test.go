package emulator

import (
	"errors"
	"testing"
	"time"

	"github.com/lightcrafter/dlpc350/internal/dlpc350"
	"github.com/lightcrafter/dlpc350/internal/protocol"
	"github.com/lightcrafter/dlpc350/internal/transport"
)

func openDevice(t *testing.T, opts ...Option) *Device {
	t.Helper()
	d := New(opts...)
	if err := d.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func transact(t *testing.T, d *Device, f *protocol.Frame) *protocol.Frame {
	t.Helper()
	for _, p := range protocol.Packetize(f.Marshal()) {
		if _, err := d.Send(p); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	}
	packet, err := d.Receive(time.Second)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	reply, err := protocol.Decode(packet)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return reply
}

func TestDeviceNotConnected(t *testing.T) {
	d := New()
	if _, err := d.Send(make([]byte, transport.PacketSize)); !errors.Is(err, transport.ErrNotConnected) {
		t.Errorf("Send() before Open error = %v, want ErrNotConnected", err)
	}
	if _, err := d.Receive(time.Millisecond); !errors.Is(err, transport.ErrNotConnected) {
		t.Errorf("Receive() before Open error = %v, want ErrNotConnected", err)
	}
}

func TestDeviceRejectsShortPacket(t *testing.T) {
	d := openDevice(t)
	if _, err := d.Send(make([]byte, 10)); !errors.Is(err, transport.ErrPacketSize) {
		t.Errorf("Send() error = %v, want ErrPacketSize", err)
	}
}

func TestDeviceReadRegister(t *testing.T) {
	d := openDevice(t)

	reply := transact(t, d, protocol.Encode(protocol.Read, dlpc350.OpHardwareStatus, nil))
	if reply.Flags.Error {
		t.Fatal("reply error bit set")
	}
	if reply.Length != 1 || reply.Payload[0] != 0x01 {
		t.Errorf("hardware status reply = % X (length %d), want 01", reply.Payload, reply.Length)
	}
	if reply.Flags.Direction != protocol.Read {
		t.Errorf("reply direction = %s, want read", reply.Flags.Direction)
	}
}

func TestDeviceReassemblesMultiPacketFrame(t *testing.T) {
	d := openDevice(t)

	transact(t, d, protocol.Encode(protocol.Write, dlpc350.OpMailboxControl, []byte{dlpc350.MailboxPatternLUT}))
	transact(t, d, protocol.Encode(protocol.Write, dlpc350.OpMailboxAddress, []byte{0}))

	data := make([]byte, 3*40)
	for i := 0; i < len(data); i += 3 {
		data[i+1] = 0x01 // bit depth 1
	}
	frame := protocol.Encode(protocol.Write, dlpc350.OpMailboxData, data)
	d.ResetLog()
	reply := transact(t, d, frame)
	if reply.Flags.Error {
		t.Fatal("mailbox write rejected")
	}

	if got, want := d.PacketsReceived(), protocol.PacketCount(int(frame.Length)); got != want {
		t.Errorf("PacketsReceived() = %d, want %d", got, want)
	}
	if got := len(d.PatternLUT()); got != 40 {
		t.Errorf("len(PatternLUT()) = %d, want 40", got)
	}
	if frames := d.Frames(); len(frames) != 1 || len(frames[0].Params()) != len(data) {
		t.Errorf("Frames() = %v, want one frame with %d data bytes", frames, len(data))
	}
}

func TestDeviceFailOpcode(t *testing.T) {
	d := openDevice(t)
	d.FailOpcode(dlpc350.OpPowerMode, 1)

	reply := transact(t, d, protocol.Encode(protocol.Write, dlpc350.OpPowerMode, []byte{1}))
	if !reply.Flags.Error {
		t.Error("first reply should carry the error bit")
	}
	reply = transact(t, d, protocol.Encode(protocol.Write, dlpc350.OpPowerMode, []byte{1}))
	if reply.Flags.Error {
		t.Error("second reply should succeed once the hook is consumed")
	}
	if v, _ := d.Register(dlpc350.OpPowerMode); v != 1 {
		t.Errorf("power mode = %d, want 1", v)
	}
}

func TestDeviceClearHooks(t *testing.T) {
	d := openDevice(t)
	d.FailOpcode(dlpc350.OpPowerMode, 3)
	d.ClearHooks()

	reply := transact(t, d, protocol.Encode(protocol.Write, dlpc350.OpPowerMode, []byte{1}))
	if reply.Flags.Error {
		t.Error("reply carries the error bit after ClearHooks")
	}
}

func TestDeviceDropReply(t *testing.T) {
	d := openDevice(t)
	d.DropReply(dlpc350.OpMainStatus, 1)

	for _, p := range protocol.Packetize(protocol.Encode(protocol.Read, dlpc350.OpMainStatus, nil).Marshal()) {
		if _, err := d.Send(p); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	}
	if _, err := d.Receive(10 * time.Millisecond); !errors.Is(err, transport.ErrTimeout) {
		t.Errorf("Receive() error = %v, want ErrTimeout", err)
	}
}

func TestDeviceNoReplyRequested(t *testing.T) {
	d := openDevice(t)
	f := protocol.Encode(protocol.Write, dlpc350.OpPowerMode, []byte{1}, protocol.NoReply())
	for _, p := range protocol.Packetize(f.Marshal()) {
		if _, err := d.Send(p); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	}
	if _, err := d.Receive(10 * time.Millisecond); !errors.Is(err, transport.ErrTimeout) {
		t.Errorf("Receive() error = %v, want ErrTimeout", err)
	}
	if v, _ := d.Register(dlpc350.OpPowerMode); v != 1 {
		t.Errorf("power mode = %d, want 1", v)
	}
}

func TestDeviceSettleReads(t *testing.T) {
	d := openDevice(t, WithSettleReads(2))

	transact(t, d, protocol.Encode(protocol.Write, dlpc350.OpDisplayMode, []byte{1}))

	want := []byte{0, 0, 1}
	for i, w := range want {
		reply := transact(t, d, protocol.Encode(protocol.Read, dlpc350.OpDisplayMode, nil))
		if reply.Payload[0] != w {
			t.Errorf("read %d: display mode = %d, want %d", i, reply.Payload[0], w)
		}
	}
}

func TestDeviceTestPatternNeedsInput(t *testing.T) {
	d := openDevice(t)

	reply := transact(t, d, protocol.Encode(protocol.Write, dlpc350.OpTestPattern, []byte{byte(dlpc350.TestGrid)}))
	if !reply.Flags.Error {
		t.Error("test pattern write with parallel input should be rejected")
	}

	src := dlpc350.InputSource{Type: dlpc350.InputTestPattern}
	transact(t, d, protocol.Encode(protocol.Write, dlpc350.OpInputSource, []byte{src.Byte()}))
	reply = transact(t, d, protocol.Encode(protocol.Write, dlpc350.OpTestPattern, []byte{byte(dlpc350.TestGrid)}))
	if reply.Flags.Error {
		t.Error("test pattern write with test pattern input was rejected")
	}
}

func TestDeviceValidation(t *testing.T) {
	d := openDevice(t)

	reply := transact(t, d, protocol.Encode(protocol.Read, dlpc350.OpValidate, nil))
	v := dlpc350.ParseValidation(reply.Payload[0])
	if !v.InvalidPattern {
		t.Error("unconfigured device should report an invalid pattern")
	}

	transact(t, d, protocol.Encode(protocol.Write, dlpc350.OpConfigureSequence, []byte{0, 1, 0, 0}))
	transact(t, d, protocol.Encode(protocol.Write, dlpc350.OpMailboxControl, []byte{dlpc350.MailboxPatternLUT}))
	transact(t, d, protocol.Encode(protocol.Write, dlpc350.OpMailboxData, []byte{0x00, 0x01, 0x06}))
	transact(t, d, protocol.Encode(protocol.Write, dlpc350.OpMailboxControl, nil))
	transact(t, d, protocol.Encode(protocol.Write, dlpc350.OpMailboxControl, []byte{dlpc350.MailboxImageLUT}))
	transact(t, d, protocol.Encode(protocol.Write, dlpc350.OpMailboxData, []byte{0}))
	transact(t, d, protocol.Encode(protocol.Write, dlpc350.OpMailboxControl, nil))

	if d.MailboxOpen() {
		t.Error("mailbox should be closed")
	}

	reply = transact(t, d, protocol.Encode(protocol.Read, dlpc350.OpValidate, nil))
	v = dlpc350.ParseValidation(reply.Payload[0])
	if !v.IsValid() {
		t.Errorf("validation faults = %v, want none", v.Faults())
	}
}

func TestDeviceCloseDropsState(t *testing.T) {
	d := openDevice(t)
	f := protocol.Encode(protocol.Read, dlpc350.OpMainStatus, nil)
	if _, err := d.Send(protocol.Packetize(f.Marshal())[0]); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if d.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
	if err := d.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := d.Receive(10 * time.Millisecond); !errors.Is(err, transport.ErrTimeout) {
		t.Errorf("Receive() after reopen error = %v, want ErrTimeout", err)
	}
}
