package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Bridge represents a discovered WebSocket bridge
type Bridge struct {
	// Instance is the mDNS instance name (e.g., "dlpc350-bridge-lab1")
	Instance string

	// Hostname is the mDNS hostname (e.g., "lab1.local.")
	Hostname string

	// IP is the address to dial, IPv4 when available
	IP string

	// Port is the bridge HTTP port
	Port int

	// Path is the WebSocket endpoint (from the "path" TXT record)
	Path string

	// Metadata contains the mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the bridge was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the bridge
func (b *Bridge) String() string {
	return fmt.Sprintf("DLPC350 bridge %s (%s) at %s", b.Instance, b.Hostname, b.URL())
}

// URL returns the WebSocket URL of the bridge
func (b *Bridge) URL() string {
	path := b.Path
	if path == "" {
		path = DefaultPath
	}
	return "ws://" + net.JoinHostPort(b.IP, strconv.Itoa(b.Port)) + path
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (b *Bridge) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}
