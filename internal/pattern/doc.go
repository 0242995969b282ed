// Package pattern models DLPC350 pattern sequences.
//
// A sequence is an ordered list of up to 128 pattern entries plus the list of
// image pages they reference. Each entry schedules one low bit-depth exposure
// taken from a bit plane of a 24-bit image page:
//
//	bits  0-1   trigger type
//	bits  2-7   pattern number (start bit / bit depth)
//	bits  8-11  bit depth (1-8)
//	bits 12-15  LED color
//	bit  16     invert
//	bit  17     insert black
//	bit  18     buffer swap
//	bit  19     trigger out previous
//
// Only the low 24 bits are uploaded to the controller's pattern LUT. The image
// list holds one image index per buffer swap, in first-use order.
//
// # Usage Example
//
//	seq := pattern.NewSequence()
//	p := pattern.NewPattern(pattern.ColorWhite, pattern.TriggerExternalPositive, 1, 3, pattern.G0)
//	if _, err := seq.Add(pattern.DisplayModeInternal, p); err != nil {
//	    return err
//	}
//	if err := pattern.Check(seq, pattern.Period{Exposure: 2700, Frame: 3000}); err != nil {
//	    return err
//	}
package pattern
