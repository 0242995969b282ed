package transport

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	usb "github.com/karalabe/hid"
	"go.uber.org/zap"

	"github.com/lightcrafter/dlpc350/internal/logging"
)

const (
	// VendorID is the Texas Instruments USB vendor id
	VendorID = 0x0451

	// ProductID is the LightCrafter 4500 product id
	ProductID = 0x6401
)

// HIDConfig selects which HID device to open
type HIDConfig struct {
	VendorID  uint16
	ProductID uint16
	Index     int // index among enumerated devices (0 = first found)
}

// DefaultHIDConfig returns the configuration for the first LightCrafter 4500
func DefaultHIDConfig() *HIDConfig {
	return &HIDConfig{
		VendorID:  VendorID,
		ProductID: ProductID,
	}
}

// HID is a USB HID transport. A background reader drains input reports
// into a channel so Receive can honour its timeout; hidapi reads block.
type HID struct {
	cfg *HIDConfig

	mu      sync.Mutex
	dev     *usb.Device
	reports chan []byte
	done    chan struct{}
}

// NewHID creates an unopened HID transport
func NewHID(cfg *HIDConfig) *HID {
	if cfg == nil {
		cfg = DefaultHIDConfig()
	}
	return &HID{cfg: cfg}
}

// AttachedDevices lists matching HID devices
func AttachedDevices(vid, pid uint16) []usb.DeviceInfo {
	return usb.Enumerate(vid, pid)
}

// Open claims the HID device and starts the reader
func (h *HID) Open() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.dev != nil {
		return nil
	}
	if !usb.Supported() {
		return fmt.Errorf("USB HID is not supported on %s/%s", runtime.GOOS, runtime.GOARCH)
	}

	info := usb.Enumerate(h.cfg.VendorID, h.cfg.ProductID)
	if h.cfg.Index >= len(info) {
		return fmt.Errorf("no HID device %04x:%04x at index %d (%d found)",
			h.cfg.VendorID, h.cfg.ProductID, h.cfg.Index, len(info))
	}

	dev, err := info[h.cfg.Index].Open()
	if err != nil {
		return fmt.Errorf("failed to open HID device %04x:%04x: %w", h.cfg.VendorID, h.cfg.ProductID, err)
	}

	h.dev = dev
	h.reports = make(chan []byte, 16)
	h.done = make(chan struct{})
	go h.readLoop(dev, h.reports, h.done)

	logging.Info("HID device opened",
		zap.String("path", info[h.cfg.Index].Path),
		zap.String("product", info[h.cfg.Index].Product),
	)
	return nil
}

// readLoop forwards input reports until the device fails or is closed
func (h *HID) readLoop(dev *usb.Device, reports chan<- []byte, done chan struct{}) {
	defer close(reports)
	buf := make([]byte, PacketSize+1)
	for {
		n, err := dev.Read(buf)
		if err != nil {
			select {
			case <-done:
			default:
				logging.Warn("HID read failed", zap.Error(err))
			}
			return
		}
		packet := make([]byte, PacketSize)
		copy(packet, buf[:min(n, PacketSize)])
		select {
		case reports <- packet:
		case <-done:
			return
		}
	}
}

// Close releases the HID device
func (h *HID) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closeLocked()
}

func (h *HID) closeLocked() error {
	if h.dev == nil {
		return nil
	}
	close(h.done)
	err := h.dev.Close()
	h.dev = nil
	return err
}

// Send writes one packet as an output report
func (h *HID) Send(packet []byte) (int, error) {
	if err := checkPacket(packet); err != nil {
		return 0, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.dev == nil {
		return 0, ErrNotConnected
	}

	// hidapi expects the report id in front; karalabe/hid adds it itself on windows
	report := packet
	if runtime.GOOS != "windows" {
		report = append([]byte{0x00}, packet...)
	}

	if _, err := h.dev.Write(report); err != nil {
		_ = h.closeLocked()
		return 0, fmt.Errorf("HID write: %w", err)
	}
	return len(packet), nil
}

// Receive waits for the next input report
func (h *HID) Receive(timeout time.Duration) ([]byte, error) {
	h.mu.Lock()
	reports := h.reports
	connected := h.dev != nil
	h.mu.Unlock()

	if !connected {
		return nil, ErrNotConnected
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case packet, ok := <-reports:
		if !ok {
			_ = h.Close()
			return nil, ErrClosed
		}
		return packet, nil
	case <-timer.C:
		// A late report would answer the next request
		_ = h.Close()
		return nil, ErrTimeout
	}
}

// IsConnected reports whether the device is open
func (h *HID) IsConnected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dev != nil
}
