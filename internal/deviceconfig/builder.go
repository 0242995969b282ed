package deviceconfig

import (
	"errors"
	"fmt"

	"github.com/lightcrafter/dlpc350/internal/dlpc350"
)

// UpdateBuilder provides a fluent API for building a settings update.
// Errors are collected and reported by Build.
//
// Example usage:
//
//	update, err := NewUpdateBuilder(current).
//	    SetLEDCurrent(128, 255, 0).
//	    SetLEDEnable(dlpc350.LEDEnable{Auto: true}).
//	    Build()
type UpdateBuilder struct {
	// current is the baseline used to fill partial LED currents and to
	// check input requirements
	current *Settings
	update  Settings
	errs    []error
}

// NewUpdateBuilder creates a builder. current may be nil.
func NewUpdateBuilder(current *Settings) *UpdateBuilder {
	return &UpdateBuilder{current: current}
}

func (b *UpdateBuilder) fail(format string, args ...any) *UpdateBuilder {
	b.errs = append(b.errs, fmt.Errorf(format, args...))
	return b
}

// SetLEDEnable sets the LED enable register
func (b *UpdateBuilder) SetLEDEnable(e dlpc350.LEDEnable) *UpdateBuilder {
	b.update.LEDEnable = &e
	return b
}

// SetLEDCurrent sets all three drive currents (0-255)
func (b *UpdateBuilder) SetLEDCurrent(red, green, blue int) *UpdateBuilder {
	return b.SetRed(red).SetGreen(green).SetBlue(blue)
}

func (b *UpdateBuilder) ledCurrent() *dlpc350.LEDCurrent {
	if b.update.LEDCurrent == nil {
		cur := dlpc350.LEDCurrent{}
		if b.current != nil && b.current.LEDCurrent != nil {
			cur = *b.current.LEDCurrent
		}
		b.update.LEDCurrent = &cur
	}
	return b.update.LEDCurrent
}

func (b *UpdateBuilder) setChannel(name string, v int, dst func(*dlpc350.LEDCurrent) *uint8) *UpdateBuilder {
	if v < 0 || v > 255 {
		return b.fail("%s current must be 0-255, got %d", name, v)
	}
	*dst(b.ledCurrent()) = uint8(v)
	return b
}

// SetRed sets the red drive current, keeping the others
func (b *UpdateBuilder) SetRed(v int) *UpdateBuilder {
	return b.setChannel("red", v, func(c *dlpc350.LEDCurrent) *uint8 { return &c.Red })
}

// SetGreen sets the green drive current, keeping the others
func (b *UpdateBuilder) SetGreen(v int) *UpdateBuilder {
	return b.setChannel("green", v, func(c *dlpc350.LEDCurrent) *uint8 { return &c.Green })
}

// SetBlue sets the blue drive current, keeping the others
func (b *UpdateBuilder) SetBlue(v int) *UpdateBuilder {
	return b.setChannel("blue", v, func(c *dlpc350.LEDCurrent) *uint8 { return &c.Blue })
}

// SetInput selects the input source. bits is the parallel port width.
func (b *UpdateBuilder) SetInput(t dlpc350.InputType, bits int) *UpdateBuilder {
	depth, ok := dlpc350.InputBitDepthFromBits(bits)
	if !ok {
		return b.fail("unsupported input width %d bits (want 30, 24, 20, 16, 10 or 8)", bits)
	}
	b.update.Input = &dlpc350.InputSource{Type: t, BitDepth: depth}
	return b
}

// SetTestPattern selects a test pattern
func (b *UpdateBuilder) SetTestPattern(p dlpc350.TestPattern) *UpdateBuilder {
	if p > dlpc350.TestStepBars {
		return b.fail("unknown test pattern %d", p)
	}
	b.update.TestPattern = &p
	return b
}

// SetFlashImage selects the displayed flash image
func (b *UpdateBuilder) SetFlashImage(index uint8) *UpdateBuilder {
	b.update.FlashImage = &index
	return b
}

// effectiveInput is the input the device will have after the update
func (b *UpdateBuilder) effectiveInput() (dlpc350.InputType, bool) {
	if b.update.Input != nil {
		return b.update.Input.Type, true
	}
	if b.current != nil && b.current.Input != nil {
		return b.current.Input.Type, true
	}
	return 0, false
}

// Build validates the update and returns it
func (b *UpdateBuilder) Build() (*Settings, error) {
	if b.update.TestPattern != nil {
		if in, ok := b.effectiveInput(); ok && in != dlpc350.InputTestPattern {
			b.fail("test pattern needs the test_pattern input, device input is %s", in)
		}
	}
	if b.update.FlashImage != nil {
		if in, ok := b.effectiveInput(); ok && in != dlpc350.InputFlash {
			b.fail("flash image needs the flash input, device input is %s", in)
		}
	}
	if b.update.TestPattern != nil && b.update.FlashImage != nil {
		b.fail("test pattern and flash image are mutually exclusive")
	}

	if len(b.errs) > 0 {
		return nil, &Error{Stage: StageBuild, Err: errors.Join(b.errs...)}
	}
	if b.update.IsEmpty() {
		return nil, &Error{Stage: StageBuild, Err: errors.New("no settings to change")}
	}
	return b.update.Clone(), nil
}
