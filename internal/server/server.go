package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/lightcrafter/dlpc350/internal/discovery"
	"github.com/lightcrafter/dlpc350/internal/logging"
	"github.com/lightcrafter/dlpc350/internal/transport"
)

const (
	// DefaultPort is the port the bridge listens on
	DefaultPort = 8350

	// PacketPath is the WebSocket endpoint
	PacketPath = discovery.DefaultPath

	// StatusPath is the JSON status endpoint
	StatusPath = "/status"
)

// Config holds the server configuration
type Config struct {
	Host         string
	Port         int
	LogLevel     string
	Advertise    bool   // Register the bridge via mDNS
	InstanceName string // mDNS instance name (default: hostname)
	CaptureDir   string // Directory to write packet captures (empty = disabled)
}

// Server bridges WebSocket clients to one device transport
type Server struct {
	config   *Config
	device   transport.Transport
	upgrader websocket.Upgrader

	httpServer *http.Server
	listener   net.Listener
	mdns       *zeroconf.Server

	mu      sync.Mutex
	client  *websocket.Conn
	clients int // total clients served
	stats   Stats
	wg      sync.WaitGroup
}

// Stats counts forwarded packets
type Stats struct {
	ToDevice   int `json:"to_device"`
	FromDevice int `json:"from_device"`
	Rejected   int `json:"rejected"`
}

// New creates a new Server instance for an opened or unopened device
func New(config *Config, device transport.Transport) (*Server, error) {
	if device == nil {
		return nil, fmt.Errorf("device transport cannot be nil")
	}
	if config == nil {
		config = &Config{}
	}
	if config.Port == 0 {
		config.Port = DefaultPort
	}

	// Initialize logging only when a level is requested explicitly
	if config.LogLevel != "" {
		if err := logging.Initialize(config.LogLevel); err != nil {
			return nil, fmt.Errorf("failed to initialize logging: %w", err)
		}
	}

	s := &Server{
		config: config,
		device: device,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  transport.PacketSize * 8,
			WriteBufferSize: transport.PacketSize * 8,
			// The bridge serves tools, not browsers
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	return s, nil
}

// Handler returns the HTTP handler serving both endpoints
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(PacketPath, s.handlePackets)
	mux.HandleFunc(StatusPath, s.handleStatus)
	return mux
}

// Listen opens the device and the TCP listener without serving yet
func (s *Server) Listen() error {
	if !s.device.IsConnected() {
		if err := s.device.Open(); err != nil {
			return fmt.Errorf("failed to open device: %w", err)
		}
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.config.Advertise {
		port := listener.Addr().(*net.TCPAddr).Port
		mdns, err := Advertise(s.config.InstanceName, port)
		if err != nil {
			// Not fatal: clients can still connect by address
			logging.Warn("mDNS advertisement failed", zap.Error(err))
		} else {
			s.mdns = mdns
		}
	}

	logging.Info("Bridge listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("path", PacketPath),
		zap.Bool("advertise", s.mdns != nil),
	)
	return nil
}

// Addr returns the listener address, or nil before Listen
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until the server is shut down
func (s *Server) Serve() error {
	if s.listener == nil {
		return fmt.Errorf("server is not listening")
	}
	err := s.httpServer.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Start listens, serves and blocks until a shutdown signal or error
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve()
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(ctx)
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if s.mdns != nil {
		s.mdns.Shutdown()
		s.mdns = nil
	}

	s.mu.Lock()
	if s.client != nil {
		logging.Info("Closing attached client", zap.String("remote_addr", s.client.RemoteAddr().String()))
		_ = s.client.Close()
	}
	s.mu.Unlock()

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	// Wait for the bridge goroutines with the caller's deadline
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	logging.Sync()
	return err
}

// Attached reports whether a client is currently bridged
func (s *Server) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client != nil
}

// Stats returns the packet counters
func (s *Server) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
