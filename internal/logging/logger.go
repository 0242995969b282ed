package logging

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LevelEnv names the variable read when Initialize gets no level
const LevelEnv = "DLPC350_LOG_LEVEL"

// dumpLimit caps the bytes rendered into a single log field
const dumpLimit = 256

var logger *zap.Logger

// Initialize installs the package logger. An empty level falls back to
// LevelEnv, and when both are empty nothing is logged. Unrecognised levels
// log at info.
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LevelEnv)
	}
	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil || lvl < zapcore.DebugLevel || lvl > zapcore.ErrorLevel {
		lvl = zapcore.InfoLevel
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeCaller = zapcore.ShortCallerEncoder

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Encoding:         "console",
		EncoderConfig:    enc,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build %s logger: %w", lvl, err)
	}
	logger = l
	return nil
}

// SetLogger swaps the package logger, typically for a zaptest observer
func SetLogger(l *zap.Logger) {
	logger = l
}

// GetLogger returns the package logger. Before Initialize it is a no-op
// logger so library callers stay quiet.
func GetLogger() *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

func Debug(msg string, fields ...zap.Field) { GetLogger().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { GetLogger().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { GetLogger().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { GetLogger().Error(msg, fields...) }

// LogConnection records a bridge client arriving or leaving
func LogConnection(remoteAddr, event string) {
	Info("bridge client "+event, zap.String("remote_addr", remoteAddr))
}

// LogFrame dumps a command frame at debug level. The hex is only built when
// debug output is on.
func LogFrame(direction, summary string, data []byte) {
	if !GetLogger().Core().Enabled(zapcore.DebugLevel) {
		return
	}
	Debug("frame",
		zap.String("direction", direction),
		zap.String("frame", summary),
		zap.Int("length", len(data)),
		zap.String("hex", hexDump(data)),
	)
}

// LogRawBytes dumps a buffer that could not be decoded
func LogRawBytes(label string, data []byte) {
	if !GetLogger().Core().Enabled(zapcore.DebugLevel) {
		return
	}
	Debug(label,
		zap.Int("length", len(data)),
		zap.String("hex", hexDump(data)),
		zap.String("ascii", asciiDump(data)),
	)
}

func hexDump(data []byte) string {
	if len(data) > dumpLimit {
		return hex.EncodeToString(data[:dumpLimit]) + "..."
	}
	return hex.EncodeToString(data)
}

// asciiDump prints bytes outside the printable range as '.'
func asciiDump(data []byte) string {
	if len(data) > dumpLimit {
		data = data[:dumpLimit]
	}
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = '.'
		if b >= ' ' && b <= '~' {
			out[i] = b
		}
	}
	return string(out)
}

// Sync flushes buffered entries. Call it before the process exits.
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
