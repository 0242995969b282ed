package discovery

import (
	"testing"
	"time"
)

func TestBridge_String(t *testing.T) {
	bridge := &Bridge{
		Instance: "dlpc350-bridge-lab1",
		Hostname: "lab1.local.",
		IP:       "192.168.4.16",
		Port:     8350,
		Path:     "/packets",
	}

	expected := "DLPC350 bridge dlpc350-bridge-lab1 (lab1.local.) at ws://192.168.4.16:8350/packets"
	if bridge.String() != expected {
		t.Errorf("Bridge.String() = %v, want %v", bridge.String(), expected)
	}
}

func TestBridge_URL(t *testing.T) {
	tests := []struct {
		name     string
		bridge   *Bridge
		expected string
	}{
		{
			name:     "ipv4",
			bridge:   &Bridge{IP: "192.168.4.16", Port: 8350, Path: "/packets"},
			expected: "ws://192.168.4.16:8350/packets",
		},
		{
			name:     "default path",
			bridge:   &Bridge{IP: "10.0.0.5", Port: 9000},
			expected: "ws://10.0.0.5:9000/packets",
		},
		{
			name:     "ipv6",
			bridge:   &Bridge{IP: "fe80::1", Port: 8350, Path: "/x"},
			expected: "ws://[fe80::1]:8350/x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bridge.URL(); got != tt.expected {
				t.Errorf("Bridge.URL() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBridge_GetMetadata(t *testing.T) {
	bridge := &Bridge{
		Metadata: map[string]string{
			"path":    "/packets",
			"version": "v1.0.0",
		},
	}

	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{name: "existing key", key: "path", expected: "/packets"},
		{name: "another existing key", key: "version", expected: "v1.0.0"},
		{name: "non-existent key", key: "missing", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bridge.GetMetadata(tt.key); got != tt.expected {
				t.Errorf("Bridge.GetMetadata(%v) = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}

	if got := (&Bridge{}).GetMetadata("anything"); got != "" {
		t.Errorf("Bridge.GetMetadata() with nil map = %v, want empty string", got)
	}
}

func TestBridge_DiscoveredAt(t *testing.T) {
	now := time.Now()
	bridge := &Bridge{Instance: "x", DiscoveredAt: now}
	if bridge.DiscoveredAt != now {
		t.Errorf("Bridge.DiscoveredAt = %v, want %v", bridge.DiscoveredAt, now)
	}
}
