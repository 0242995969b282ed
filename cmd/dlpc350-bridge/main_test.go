package main

import (
	"testing"

	"github.com/lightcrafter/dlpc350/internal/emulator"
	"github.com/lightcrafter/dlpc350/internal/transport"
)

func TestOpenDevice(t *testing.T) {
	t.Cleanup(func() { deviceKind, serialPort = "hid", "" })

	tests := []struct {
		kind    string
		serial  string
		wantErr bool
	}{
		{"hid", "", false},
		{"serial", "/dev/ttyACM0", false},
		{"serial", "", true},
		{"emulator", "", false},
		{"usb", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.kind+tt.serial, func(t *testing.T) {
			deviceKind, serialPort = tt.kind, tt.serial
			dev, err := openDevice()
			if (err != nil) != tt.wantErr {
				t.Fatalf("openDevice() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			switch tt.kind {
			case "hid":
				if _, ok := dev.(*transport.HID); !ok {
					t.Errorf("openDevice() = %T, want *transport.HID", dev)
				}
			case "serial":
				if _, ok := dev.(*transport.Serial); !ok {
					t.Errorf("openDevice() = %T, want *transport.Serial", dev)
				}
			case "emulator":
				if _, ok := dev.(*emulator.Device); !ok {
					t.Errorf("openDevice() = %T, want *emulator.Device", dev)
				}
			}
			if dev.IsConnected() {
				t.Error("openDevice() returned an opened transport")
			}
		})
	}
}
