package transport

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// loopback echoes every sent packet back on Receive
type loopback struct {
	open    bool
	queue   [][]byte
	sendErr error
}

func (l *loopback) Open() error  { l.open = true; return nil }
func (l *loopback) Close() error { l.open = false; return nil }

func (l *loopback) Send(packet []byte) (int, error) {
	if l.sendErr != nil {
		return 0, l.sendErr
	}
	l.queue = append(l.queue, append([]byte(nil), packet...))
	return len(packet), nil
}

func (l *loopback) Receive(timeout time.Duration) ([]byte, error) {
	if len(l.queue) == 0 {
		return nil, ErrTimeout
	}
	p := l.queue[0]
	l.queue = l.queue[1:]
	return p, nil
}

func (l *loopback) IsConnected() bool { return l.open }

func observed(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

func TestLoggedPassesThrough(t *testing.T) {
	inner := &loopback{}
	logger, logs := observed(zapcore.DebugLevel)
	tr := NewLogged(inner, logger, zapcore.DebugLevel, LogAll)

	if err := tr.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !tr.IsConnected() {
		t.Error("IsConnected() = false after Open")
	}

	packet := make([]byte, PacketSize)
	packet[0] = 0xC0
	if n, err := tr.Send(packet); err != nil || n != PacketSize {
		t.Fatalf("Send() = %d, %v", n, err)
	}
	got, err := tr.Receive(time.Second)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if !bytes.Equal(got, packet) {
		t.Errorf("Receive() = %x, want %x", got, packet)
	}

	if n := logs.FilterMessage("packet send").Len(); n != 1 {
		t.Errorf("send entries = %d, want 1", n)
	}
	recv := logs.FilterMessage("packet receive").All()
	if len(recv) != 1 {
		t.Fatalf("receive entries = %d, want 1", len(recv))
	}
	if hex := recv[0].ContextMap()["hex"]; hex != "c0"+string(bytes.Repeat([]byte("00"), PacketSize-1)) {
		t.Errorf("hex field = %v", hex)
	}
}

func TestLoggedOptions(t *testing.T) {
	tests := []struct {
		name     string
		opts     LogOption
		wantSend int
		wantRecv int
	}{
		{"all", LogAll, 1, 1},
		{"send only", LogSend, 1, 0},
		{"receive only", LogReceive, 0, 1},
		{"none", LogNone, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := observed(zapcore.DebugLevel)
			tr := NewLogged(&loopback{}, logger, zapcore.InfoLevel, tt.opts)
			_, _ = tr.Send(make([]byte, PacketSize))
			_, _ = tr.Receive(time.Second)

			if got := logs.FilterMessage("packet send").Len(); got != tt.wantSend {
				t.Errorf("send entries = %d, want %d", got, tt.wantSend)
			}
			if got := logs.FilterMessage("packet receive").Len(); got != tt.wantRecv {
				t.Errorf("receive entries = %d, want %d", got, tt.wantRecv)
			}
		})
	}
}

func TestLoggedFailures(t *testing.T) {
	sendErr := errors.New("pipe broken")
	inner := &loopback{sendErr: sendErr}
	logger, logs := observed(zapcore.ErrorLevel)
	tr := NewLogged(inner, logger, zapcore.DebugLevel, LogNone)

	if _, err := tr.Send(make([]byte, PacketSize)); !errors.Is(err, sendErr) {
		t.Errorf("Send() error = %v, want %v", err, sendErr)
	}
	if _, err := tr.Receive(time.Millisecond); !errors.Is(err, ErrTimeout) {
		t.Errorf("Receive() error = %v, want %v", err, ErrTimeout)
	}

	// Failures are logged even when packet logging is off
	if n := logs.FilterMessage("packet send failed").Len(); n != 1 {
		t.Errorf("send failure entries = %d, want 1", n)
	}
	if n := logs.FilterMessage("packet receive failed").Len(); n != 1 {
		t.Errorf("receive failure entries = %d, want 1", n)
	}
}
