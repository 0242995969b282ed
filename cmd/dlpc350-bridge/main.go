// Dlpc350-bridge exposes a DLPC350 controller to the network.
//
// It opens the controller locally (USB HID, a serial adapter or the
// built-in emulator) and forwards 64-byte packets to and from a single
// WebSocket client. dlpc350-ctl connects to it with --url or finds it
// through 'dlpc350-ctl scan' when mDNS advertisement is enabled.
//
// Usage:
//
//	dlpc350-bridge serve [flags]
//
// See 'dlpc350-bridge serve --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lightcrafter/dlpc350/internal/emulator"
	"github.com/lightcrafter/dlpc350/internal/logging"
	"github.com/lightcrafter/dlpc350/internal/server"
	"github.com/lightcrafter/dlpc350/internal/transport"
	"github.com/lightcrafter/dlpc350/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dlpc350-bridge",
	Short: "DLPC350 WebSocket packet bridge",
	Long: `Forward DLPC350 USB packets over WebSocket.

The bridge owns the local connection to the controller and relays packets
unchanged, so any dlpc350-ctl command works against a remote controller.
Only one client is served at a time.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	deviceKind string
	usbIndex   int
	serialPort string
	serialBaud int
	images     uint8
	host       string
	port       int
	logLevel   string
	advertise  bool
	instance   string
	captureDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bridge",
	Long: `Open the controller and accept WebSocket clients on /packets.

The /status endpoint reports whether the controller and a client are
attached. With --capture-dir every packet of a session is written to a
JSON lines file for later analysis.`,
	Example: `  # Bridge the first USB controller and advertise it
  dlpc350-bridge serve --advertise

  # Bridge an emulated controller with 4 flash images
  dlpc350-bridge serve --device emulator --images 4 --port 9000

  # Capture all traffic
  dlpc350-bridge serve --capture-dir ./captures --log-level debug`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&deviceKind, "device", "hid", "Controller connection (hid, serial, emulator)")
	serveCmd.Flags().IntVar(&usbIndex, "usb-index", 0, "Which matching USB device to open")
	serveCmd.Flags().StringVar(&serialPort, "serial", "", "Serial port for --device serial")
	serveCmd.Flags().IntVar(&serialBaud, "baud", 0, "Serial baud rate")
	serveCmd.Flags().Uint8Var(&images, "images", 1, "Flash images reported by the emulator")
	serveCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", server.DefaultPort, "Listen port")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&advertise, "advertise", false, "Advertise the bridge via mDNS")
	serveCmd.Flags().StringVar(&instance, "instance", "", "mDNS instance name (default: hostname)")
	serveCmd.Flags().StringVar(&captureDir, "capture-dir", "", "Directory to write packet captures (disabled if not specified)")
}

// openDevice builds the transport selected by --device
func openDevice() (transport.Transport, error) {
	switch deviceKind {
	case "hid":
		cfg := transport.DefaultHIDConfig()
		cfg.Index = usbIndex
		return transport.NewHID(cfg), nil
	case "serial":
		if serialPort == "" {
			return nil, fmt.Errorf("--serial is required with --device serial")
		}
		cfg := transport.DefaultSerialConfig(serialPort)
		if serialBaud != 0 {
			cfg.Baud = serialBaud
		}
		return transport.NewSerial(cfg), nil
	case "emulator":
		return emulator.New(
			emulator.WithLogger(logging.GetLogger().Named("emulator")),
			emulator.WithImagesInFlash(images),
		), nil
	default:
		return nil, fmt.Errorf("unknown device %q (want hid, serial or emulator)", deviceKind)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	if captureDir != "" {
		info, err := os.Stat(captureDir)
		if os.IsNotExist(err) {
			return fmt.Errorf("capture directory does not exist: %s", captureDir)
		}
		if err != nil {
			return fmt.Errorf("cannot access capture directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("capture path is not a directory: %s", captureDir)
		}
	}

	config := &server.Config{
		Host:         host,
		Port:         port,
		Advertise:    advertise,
		InstanceName: instance,
		CaptureDir:   captureDir,
	}

	// Logging must be ready before the emulator captures the logger
	if err := logging.Initialize(logLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	device, err := openDevice()
	if err != nil {
		return err
	}

	srv, err := server.New(config, device)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start()
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("dlpc350-bridge", version.Full())
	},
}
