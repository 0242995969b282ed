package protocol

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lightcrafter/dlpc350/internal/logging"
	"github.com/lightcrafter/dlpc350/internal/transport"
)

// scriptedTransport records sent packets and replays queued replies
type scriptedTransport struct {
	sent      [][]byte
	replies   [][]byte
	failSend  int // fail the n-th Send (1-based), 0 = never
	recvErr   error
	connected bool
	closes    int
}

func (s *scriptedTransport) Open() error { s.connected = true; return nil }
func (s *scriptedTransport) Close() error {
	s.connected = false
	s.closes++
	return nil
}
func (s *scriptedTransport) IsConnected() bool {
	return s.connected
}

func (s *scriptedTransport) Send(packet []byte) (int, error) {
	if s.failSend > 0 && len(s.sent)+1 == s.failSend {
		return 0, errors.New("usb write failed")
	}
	s.sent = append(s.sent, append([]byte(nil), packet...))
	return len(packet), nil
}

func (s *scriptedTransport) Receive(timeout time.Duration) ([]byte, error) {
	if s.recvErr != nil {
		return nil, s.recvErr
	}
	if len(s.replies) == 0 {
		return nil, transport.ErrTimeout
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r, nil
}

func replyPacket(dir Direction, errBit bool, data ...byte) []byte {
	f := &Frame{
		Flags:   Flags{Direction: dir, Error: errBit, Reply: true},
		Length:  uint16(len(data)),
		Payload: data,
	}
	return Packetize(f.Marshal())[0]
}

func TestCodecGet(t *testing.T) {
	st := &scriptedTransport{connected: true}
	st.replies = append(st.replies, replyPacket(Read, false, 0x81))
	c := NewCodec(st)

	data, err := c.Get(0x1A0A)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(data) != 1 || data[0] != 0x81 {
		t.Errorf("Get() = % X, want 81", data)
	}

	if len(st.sent) != 1 {
		t.Fatalf("sent %d packets, want 1", len(st.sent))
	}
	want := []byte{0xC0, 0x00, 0x02, 0x00, 0x0A, 0x1A}
	for i, b := range want {
		if st.sent[0][i] != b {
			t.Errorf("packet[%d] = 0x%02X, want 0x%02X", i, st.sent[0][i], b)
		}
	}
}

func TestCodecSetMultiPacket(t *testing.T) {
	st := &scriptedTransport{connected: true}
	st.replies = append(st.replies, replyPacket(Write, false))
	c := NewCodec(st)

	data := make([]byte, 3*128)
	if err := c.Set(0x1A34, data...); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if want := PacketCount(len(data) + OpcodeSize); len(st.sent) != want {
		t.Errorf("sent %d packets, want %d", len(st.sent), want)
	}
}

func TestCodecDeviceRejected(t *testing.T) {
	tests := []struct {
		name  string
		reply []byte
	}{
		{"error bit", replyPacket(Read, true, 0x00)},
		{"empty read reply", replyPacket(Read, false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &scriptedTransport{connected: true, replies: [][]byte{tt.reply}}
			_, err := NewCodec(st).Get(0x1A0B)
			if !IsDeviceRejected(err) {
				t.Errorf("Get() error = %v, want device rejected", err)
			}
		})
	}
}

func TestCodecEmptyWriteAckAccepted(t *testing.T) {
	st := &scriptedTransport{connected: true, replies: [][]byte{replyPacket(Write, false)}}
	if err := NewCodec(st).Set(0x0200, 1); err != nil {
		t.Errorf("Set() error = %v", err)
	}
}

func TestCodecSendFailureAborts(t *testing.T) {
	st := &scriptedTransport{connected: true, failSend: 2}
	err := NewCodec(st).Set(0x1A34, make([]byte, 200)...)
	if !IsTransportError(err) {
		t.Fatalf("Set() error = %v, want transport failure", err)
	}
	if len(st.sent) != 1 {
		t.Errorf("sent %d packets before aborting, want 1", len(st.sent))
	}
	if st.connected || st.closes != 1 {
		t.Errorf("after send failure connected = %v, closes = %d, want false, 1", st.connected, st.closes)
	}
}

func TestCodecTimeout(t *testing.T) {
	st := &scriptedTransport{connected: true}
	c := NewCodec(st)
	c.ReadTimeout = time.Millisecond

	_, err := c.Get(0x1A0C)
	if !IsTransportError(err) {
		t.Fatalf("Get() error = %v, want transport failure", err)
	}
	if !errors.Is(err, transport.ErrTimeout) {
		t.Errorf("Get() error = %v, want it to wrap ErrTimeout", err)
	}
	if IsRetryable(err) {
		t.Error("transport timeouts are not retryable")
	}
	if st.connected {
		t.Error("transport still connected after a read timeout")
	}
}

func TestCodecRejectionKeepsConnection(t *testing.T) {
	st := &scriptedTransport{connected: true, replies: [][]byte{replyPacket(Read, true, 0x00)}}
	if _, err := NewCodec(st).Get(0x1A0B); !IsDeviceRejected(err) {
		t.Fatalf("Get() error = %v, want device rejected", err)
	}
	if !st.connected || st.closes != 0 {
		t.Errorf("connected = %v, closes = %d after a rejection, want true, 0", st.connected, st.closes)
	}
}

func TestCodecNoReply(t *testing.T) {
	st := &scriptedTransport{connected: true}
	data, err := NewCodec(st).Transact(Encode(Write, 0x0200, []byte{1}, NoReply()))
	if err != nil || data != nil {
		t.Errorf("Transact() = %v, %v, want nil, nil", data, err)
	}
}

func TestCodecRejectsOversizedFrame(t *testing.T) {
	st := &scriptedTransport{connected: true}
	err := NewCodec(st).Set(0x1A34, make([]byte, MaxFrameData)...)
	if !IsCapacityError(err) {
		t.Errorf("Set() error = %v, want capacity error", err)
	}
	if len(st.sent) != 0 {
		t.Errorf("sent %d packets for a rejected frame", len(st.sent))
	}
}

func TestCodecLogsFrames(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logging.SetLogger(zap.New(core))
	defer logging.SetLogger(zap.NewNop())

	st := &scriptedTransport{connected: true, replies: [][]byte{replyPacket(Read, false, 1)}}
	if _, err := NewCodec(st).Get(0x1A1B); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if n := logs.FilterField(zap.String("direction", "send")).Len(); n == 0 {
		t.Error("no log entry for the sent frame")
	}
	if n := logs.FilterField(zap.String("direction", "receive")).Len(); n == 0 {
		t.Error("no log entry for the received frame")
	}
}

func TestNewCodecNilTransportPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewCodec(nil) did not panic")
		}
	}()
	NewCodec(nil)
}
