package emulator

import (
	"go.uber.org/zap"

	"github.com/lightcrafter/dlpc350/internal/dlpc350"
)

// Option configures a Device
type Option func(*Device)

// WithLogger sets the device logger
func WithLogger(l *zap.Logger) Option {
	return func(d *Device) {
		if l != nil {
			d.log = l
		}
	}
}

// WithImagesInFlash sets how many images the simulated flash holds
func WithImagesInFlash(n uint8) Option {
	return func(d *Device) {
		d.regs[dlpc350.OpNumImagesInFlash] = n
	}
}

// WithVersion sets the reported firmware versions
func WithVersion(v dlpc350.Version) Option {
	return func(d *Device) {
		d.version = v
	}
}

// WithFirmwareTag sets the reported firmware tag
func WithFirmwareTag(tag string) Option {
	return func(d *Device) {
		d.tag = tag
	}
}

// WithSettleReads makes display mode and run state changes visible only
// after n further reads of the register
func WithSettleReads(n int) Option {
	return func(d *Device) {
		d.settleReads = n
	}
}
