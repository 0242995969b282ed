package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lightcrafter/dlpc350/internal/config"
	"github.com/lightcrafter/dlpc350/internal/dlpc350"
	"github.com/lightcrafter/dlpc350/internal/emulator"
	"github.com/lightcrafter/dlpc350/internal/logging"
	"github.com/lightcrafter/dlpc350/internal/transport"
)

// Connection flags (persistent on root)
var (
	configPath  string
	logLevel    string
	useHID      bool
	usbIndex    int
	serialPort  string
	serialBaud  int
	bridgeURL   string
	emulate     bool
	readTimeout time.Duration
	traceFrames bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Configuration file (default: user config directory)")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); default from DLPC350_LOG_LEVEL")
	flags.BoolVar(&useHID, "hid", false, "Connect over USB HID")
	flags.IntVar(&usbIndex, "usb-index", 0, "Which matching USB device to open")
	flags.StringVar(&serialPort, "serial", "", "Connect through a serial bridge on this port")
	flags.IntVar(&serialBaud, "baud", 0, "Serial baud rate")
	flags.StringVar(&bridgeURL, "url", "", "Connect through a WebSocket bridge (ws://host:port/packets)")
	flags.BoolVar(&emulate, "emulate", false, "Use an in-process emulated controller")
	flags.DurationVar(&readTimeout, "timeout", 0, "Reply timeout (default from config)")
	flags.BoolVar(&traceFrames, "trace", false, "Log every packet at debug level")
}

// loadRegistry loads the configuration from --config or the default location
func loadRegistry() (*config.Registry, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.LoadRegistry()
}

// saveRegistry writes the configuration back where it was loaded from
func saveRegistry(reg *config.Registry) error {
	if configPath != "" {
		return reg.SaveFile(configPath)
	}
	return reg.Save()
}

// resolveConnection applies command line overrides to the configured connection
func resolveConnection(reg *config.Registry) (*config.Connection, error) {
	conn := *reg.Connection
	switch {
	case bridgeURL != "":
		conn = config.Connection{Kind: config.KindWebSocket, URL: bridgeURL}
	case serialPort != "":
		conn = config.Connection{Kind: config.KindSerial, SerialPort: serialPort, Baud: serialBaud}
	case useHID:
		def := config.DefaultConnection()
		def.Index = usbIndex
		conn = *def
	}
	if err := conn.Validate(); err != nil {
		return nil, fmt.Errorf("invalid connection: %w", err)
	}
	return &conn, nil
}

// describeConnection returns a short label for headers
func describeConnection(conn *config.Connection) string {
	if emulate {
		return "emulator"
	}
	switch conn.Kind {
	case config.KindHID:
		return fmt.Sprintf("hid %04x:%04x #%d", conn.VendorID, conn.ProductID, conn.Index)
	case config.KindSerial:
		return "serial " + conn.SerialPort
	default:
		return conn.URL
	}
}

// newTransport builds the transport for a connection profile
func newTransport(conn *config.Connection) transport.Transport {
	if emulate {
		return emulator.New(emulator.WithLogger(logging.GetLogger()))
	}
	switch conn.Kind {
	case config.KindSerial:
		cfg := transport.DefaultSerialConfig(conn.SerialPort)
		if conn.Baud != 0 {
			cfg.Baud = conn.Baud
		}
		return transport.NewSerial(cfg)
	case config.KindWebSocket:
		return transport.NewWebSocket(conn.URL)
	default:
		return transport.NewHID(&transport.HIDConfig{
			VendorID:  conn.VendorID,
			ProductID: conn.ProductID,
			Index:     conn.Index,
		})
	}
}

// session is an open driver plus what is needed to report on it
type session struct {
	reg    *config.Registry
	conn   *config.Connection
	driver *dlpc350.Driver
	t      transport.Transport
}

// Close releases the transport
func (s *session) Close() {
	if err := s.t.Close(); err != nil {
		logging.Warn("Transport close failed", zap.Error(err))
	}
}

// Label describes the connection
func (s *session) Label() string {
	return describeConnection(s.conn)
}

// openSession loads the config, opens the transport and builds the driver
func openSession() (*session, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, err
	}
	conn, err := resolveConnection(reg)
	if err != nil {
		return nil, err
	}

	t := newTransport(conn)
	if traceFrames {
		t = transport.NewLogged(t, logging.GetLogger().Named("transport"), zapcore.DebugLevel, transport.LogAll)
	}
	if err := t.Open(); err != nil {
		return nil, fmt.Errorf("failed to connect (%s): %w", describeConnection(conn), err)
	}

	timing := reg.Timing
	timeout := timing.ReadTimeout
	if readTimeout > 0 {
		timeout = readTimeout
	}

	opts := []dlpc350.Option{
		dlpc350.WithLogger(logging.GetLogger()),
		dlpc350.WithReadTimeout(timeout),
		dlpc350.WithPollInterval(timing.PollInterval),
	}
	if timing.PollAttempts > 0 {
		opts = append(opts, dlpc350.WithPollAttempts(timing.PollAttempts))
	}

	return &session{
		reg:    reg,
		conn:   conn,
		driver: dlpc350.New(t, opts...),
		t:      t,
	}, nil
}
