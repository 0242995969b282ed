package pattern

import (
	"fmt"
	"strings"
)

// Color selects the LEDs lit during an exposure
type Color uint8

const (
	ColorPass Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
)

var colorNames = []string{"pass", "red", "green", "yellow", "blue", "magenta", "cyan", "white"}

// String returns the lowercase color name
func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return fmt.Sprintf("Color(%d)", c)
}

// ParseColor parses a color name (case-insensitive)
func ParseColor(s string) (Color, error) {
	for i, name := range colorNames {
		if strings.EqualFold(s, name) {
			return Color(i), nil
		}
	}
	return 0, fmt.Errorf("unknown color %q", s)
}

// TriggerType controls what advances the sequence to an entry
type TriggerType uint8

const (
	TriggerInternal TriggerType = iota
	TriggerExternalPositive
	TriggerExternalNegative
	TriggerNone
)

var triggerNames = []string{"internal", "external_positive", "external_negative", "none"}

// String returns the trigger type name
func (t TriggerType) String() string {
	if int(t) < len(triggerNames) {
		return triggerNames[t]
	}
	return fmt.Sprintf("TriggerType(%d)", t)
}

// ParseTriggerType parses a trigger type name (case-insensitive, '-' or '_')
func ParseTriggerType(s string) (TriggerType, error) {
	s = strings.ReplaceAll(s, "-", "_")
	for i, name := range triggerNames {
		if strings.EqualFold(s, name) {
			return TriggerType(i), nil
		}
	}
	if strings.EqualFold(s, "no_trigger") {
		return TriggerNone, nil
	}
	return 0, fmt.Errorf("unknown trigger type %q", s)
}

// BitIndex addresses one bit plane of a 24-bit image page (G0..G7, R0..R7, B0..B7)
type BitIndex uint8

const (
	G0 BitIndex = iota
	G1
	G2
	G3
	G4
	G5
	G6
	G7
	R0
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	B0
	B1
	B2
	B3
	B4
	B5
	B6
	B7
)

// MaxBitIndex is the highest addressable bit plane
const MaxBitIndex = B7

var bitPlanes = "GRB"

// String returns the bit plane name (e.g. "R4")
func (b BitIndex) String() string {
	if b > MaxBitIndex {
		return fmt.Sprintf("BitIndex(%d)", b)
	}
	return fmt.Sprintf("%c%d", bitPlanes[b/8], b%8)
}

// ParseBitIndex parses a bit plane name such as "G0" or "b7"
func ParseBitIndex(s string) (BitIndex, error) {
	if len(s) != 2 || s[1] < '0' || s[1] > '7' {
		return 0, fmt.Errorf("invalid bit index %q", s)
	}
	plane := strings.IndexByte(bitPlanes, strings.ToUpper(s[:1])[0])
	if plane < 0 {
		return 0, fmt.Errorf("invalid bit index %q", s)
	}
	return BitIndex(plane*8 + int(s[1]-'0')), nil
}

// DisplayMode is the pattern display source configured on the controller
type DisplayMode uint8

const (
	// DisplayModeExternal streams patterns from the video port (RGB / FPD-Link)
	DisplayModeExternal DisplayMode = 0
	// DisplayModeInternal reads patterns from internal flash images
	DisplayModeInternal DisplayMode = 3
)

// String returns "external", "internal" or the raw value
func (m DisplayMode) String() string {
	switch m {
	case DisplayModeExternal:
		return "external"
	case DisplayModeInternal:
		return "internal"
	default:
		return fmt.Sprintf("DisplayMode(%d)", m)
	}
}
