// Package config provides user configuration management for the dlpc350 tools.
//
// This package manages a YAML-based configuration file that stores the
// connection profile of the controller, driver timing, and named pattern
// sequences that can be uploaded by name. The configuration follows
// OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/dlpc350/config.yaml or $HOME/.config/dlpc350/config.yaml
//   - macOS: $HOME/.config/dlpc350/config.yaml
//   - Windows: %LOCALAPPDATA%\dlpc350\config.yaml
//
// # Example File
//
//	version: 1
//	connection:
//	  kind: hid
//	  vendor_id: 0x0451
//	  product_id: 0x6401
//	timing:
//	  read_timeout: 2s
//	  poll_attempts: 5
//	  poll_interval: 100ms
//	sequences:
//	  gray-code:
//	    period: {exposure: 2700, frame: 3000}
//	    repeat: true
//	    trigger_out_pulses: 1
//	    entries:
//	      - {color: white, trigger: internal, bit_depth: 1, image: 0, start_bit: G0}
//	      - {color: white, trigger: internal, bit_depth: 1, image: 0, start_bit: G1}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
