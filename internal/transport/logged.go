package transport

import (
	"encoding/hex"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogOption is a bitmask selecting which operations to log
type LogOption uint8

const (
	LogNone    LogOption = 0
	LogReceive LogOption = 1 << iota
	LogSend
	LogAll = LogReceive | LogSend
)

// NewLogged wraps inner and logs selected packets at level.
// Failures are always logged at error level.
func NewLogged(inner Transport, logger *zap.Logger, level zapcore.Level, opts LogOption) Transport {
	return &logged{
		inner:  inner,
		logger: logger,
		level:  level,
		opts:   opts,
	}
}

type logged struct {
	inner  Transport
	logger *zap.Logger
	level  zapcore.Level
	opts   LogOption
}

func (l *logged) Open() error {
	err := l.inner.Open()
	if err != nil {
		l.logger.Error("transport open failed", zap.Error(err))
	} else {
		l.logger.Log(l.level, "transport opened")
	}
	return err
}

func (l *logged) Close() error {
	l.logger.Log(l.level, "transport closed")
	return l.inner.Close()
}

func (l *logged) Send(packet []byte) (int, error) {
	if l.opts&LogSend != 0 {
		l.logger.Log(l.level, "packet send",
			zap.Int("length", len(packet)),
			zap.String("hex", hex.EncodeToString(packet)),
		)
	}
	n, err := l.inner.Send(packet)
	if err != nil {
		l.logger.Error("packet send failed", zap.Error(err))
	}
	return n, err
}

func (l *logged) Receive(timeout time.Duration) ([]byte, error) {
	packet, err := l.inner.Receive(timeout)
	if err != nil {
		l.logger.Error("packet receive failed",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return packet, err
	}
	if l.opts&LogReceive != 0 {
		l.logger.Log(l.level, "packet receive",
			zap.Int("length", len(packet)),
			zap.String("hex", hex.EncodeToString(packet)),
		)
	}
	return packet, nil
}

func (l *logged) IsConnected() bool {
	return l.inner.IsConnected()
}
