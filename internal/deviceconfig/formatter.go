package deviceconfig

import (
	"fmt"
	"strings"

	"github.com/lightcrafter/dlpc350/internal/dlpc350"
)

// FormatLEDEnable renders an LED enable value as "red,green", "auto" or "none"
func FormatLEDEnable(e dlpc350.LEDEnable) string {
	var parts []string
	if e.Red {
		parts = append(parts, "red")
	}
	if e.Green {
		parts = append(parts, "green")
	}
	if e.Blue {
		parts = append(parts, "blue")
	}
	if e.Auto {
		parts = append(parts, "auto")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// FormatLEDCurrent renders drive currents as "r/g/b"
func FormatLEDCurrent(c dlpc350.LEDCurrent) string {
	return fmt.Sprintf("%d/%d/%d", c.Red, c.Green, c.Blue)
}

// FormatInput renders an input source as "parallel 24bit"
func FormatInput(src dlpc350.InputSource) string {
	return src.Type.String() + " " + src.BitDepth.String()
}

// Lines renders the set fields, one "key: value" per line
func Lines(s *Settings) []string {
	var out []string
	if s == nil {
		return out
	}
	if s.Input != nil {
		out = append(out, "input: "+FormatInput(*s.Input))
	}
	if s.TestPattern != nil {
		out = append(out, "test pattern: "+s.TestPattern.String())
	}
	if s.FlashImage != nil {
		out = append(out, fmt.Sprintf("flash image: %d", *s.FlashImage))
	}
	if s.LEDEnable != nil {
		out = append(out, "LED enable: "+FormatLEDEnable(*s.LEDEnable))
	}
	if s.LEDCurrent != nil {
		out = append(out, "LED current: "+FormatLEDCurrent(*s.LEDCurrent))
	}
	return out
}

// Compare returns a description of every set field of expected that
// differs in actual
func Compare(expected, actual *Settings) []string {
	var out []string
	mismatch := func(field, want, got string) {
		out = append(out, fmt.Sprintf("%s: expected %s, got %s", field, want, got))
	}

	if expected.Input != nil {
		if actual.Input == nil || *actual.Input != *expected.Input {
			mismatch("input", FormatInput(*expected.Input), formatOr(actual.Input, FormatInput))
		}
	}
	if expected.TestPattern != nil {
		if actual.TestPattern == nil || *actual.TestPattern != *expected.TestPattern {
			mismatch("test pattern", expected.TestPattern.String(),
				formatOr(actual.TestPattern, func(p dlpc350.TestPattern) string { return p.String() }))
		}
	}
	if expected.FlashImage != nil {
		if actual.FlashImage == nil || *actual.FlashImage != *expected.FlashImage {
			mismatch("flash image", fmt.Sprint(*expected.FlashImage),
				formatOr(actual.FlashImage, func(i uint8) string { return fmt.Sprint(i) }))
		}
	}
	if expected.LEDEnable != nil {
		if actual.LEDEnable == nil || *actual.LEDEnable != *expected.LEDEnable {
			mismatch("LED enable", FormatLEDEnable(*expected.LEDEnable), formatOr(actual.LEDEnable, FormatLEDEnable))
		}
	}
	if expected.LEDCurrent != nil {
		if actual.LEDCurrent == nil || *actual.LEDCurrent != *expected.LEDCurrent {
			mismatch("LED current", FormatLEDCurrent(*expected.LEDCurrent), formatOr(actual.LEDCurrent, FormatLEDCurrent))
		}
	}
	return out
}

// Diff describes how update changes before, as "field: old -> new"
func Diff(before, update *Settings) []string {
	var out []string
	change := func(field, old, new string) {
		if old != new {
			out = append(out, fmt.Sprintf("%s: %s -> %s", field, old, new))
		}
	}

	if update.Input != nil {
		change("input", formatOr(before.Input, FormatInput), FormatInput(*update.Input))
	}
	if update.TestPattern != nil {
		change("test pattern",
			formatOr(before.TestPattern, func(p dlpc350.TestPattern) string { return p.String() }),
			update.TestPattern.String())
	}
	if update.FlashImage != nil {
		change("flash image",
			formatOr(before.FlashImage, func(i uint8) string { return fmt.Sprint(i) }),
			fmt.Sprint(*update.FlashImage))
	}
	if update.LEDEnable != nil {
		change("LED enable", formatOr(before.LEDEnable, FormatLEDEnable), FormatLEDEnable(*update.LEDEnable))
	}
	if update.LEDCurrent != nil {
		change("LED current", formatOr(before.LEDCurrent, FormatLEDCurrent), FormatLEDCurrent(*update.LEDCurrent))
	}
	return out
}

func formatOr[T any](v *T, format func(T) string) string {
	if v == nil {
		return "unset"
	}
	return format(*v)
}

// ParseLEDEnable parses "red,green", "auto" or "none"
func ParseLEDEnable(s string) (dlpc350.LEDEnable, error) {
	var e dlpc350.LEDEnable
	for _, part := range strings.Split(s, ",") {
		switch strings.TrimSpace(part) {
		case "red":
			e.Red = true
		case "green":
			e.Green = true
		case "blue":
			e.Blue = true
		case "auto":
			e.Auto = true
		case "none", "":
		default:
			return e, fmt.Errorf("unknown LED %q (want red, green, blue, auto or none)", part)
		}
	}
	return e, nil
}
