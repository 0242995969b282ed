package dlpc350_test

import (
	"testing"

	"github.com/lightcrafter/dlpc350/internal/dlpc350"
)

func TestParseMainStatus(t *testing.T) {
	s := dlpc350.ParseMainStatus(0x0A)
	if s.DMDParked || !s.SequenceRunning || s.BufferFrozen || !s.GammaCorrection {
		t.Errorf("ParseMainStatus(0x0A) = %+v", s)
	}
}

func TestComponentVersion(t *testing.T) {
	c := dlpc350.ParseComponentVersion(0x03020001)
	if c.Major != 3 || c.Minor != 2 || c.Patch != 1 {
		t.Errorf("ParseComponentVersion() = %+v, want 3.2.1", c)
	}
	if c.String() != "3.2.1" {
		t.Errorf("String() = %q, want 3.2.1", c.String())
	}
	if c.Pack() != 0x03020001 {
		t.Errorf("Pack() = 0x%08X, want 0x03020001", c.Pack())
	}
}

func TestParseVersionShortReply(t *testing.T) {
	if _, err := dlpc350.ParseVersion(make([]byte, 12)); err == nil {
		t.Error("ParseVersion() of 12 bytes should fail")
	}
}

func TestLEDEnableByte(t *testing.T) {
	tests := []struct {
		enable dlpc350.LEDEnable
		want   uint8
	}{
		{dlpc350.LEDEnable{}, 0x00},
		{dlpc350.LEDEnable{Red: true}, 0x01},
		{dlpc350.LEDEnable{Green: true}, 0x02},
		{dlpc350.LEDEnable{Blue: true}, 0x04},
		{dlpc350.LEDEnable{Auto: true}, 0x08},
		{dlpc350.LEDEnable{Auto: true, Red: true, Green: true, Blue: true}, 0x0F},
	}
	for _, tt := range tests {
		if got := tt.enable.Byte(); got != tt.want {
			t.Errorf("%+v.Byte() = 0x%02X, want 0x%02X", tt.enable, got, tt.want)
		}
		if back := dlpc350.ParseLEDEnable(tt.want); back != tt.enable {
			t.Errorf("ParseLEDEnable(0x%02X) = %+v, want %+v", tt.want, back, tt.enable)
		}
	}
}

func TestInputSourceByte(t *testing.T) {
	tests := []struct {
		src  dlpc350.InputSource
		want uint8
	}{
		{dlpc350.InputSource{Type: dlpc350.InputParallel, BitDepth: dlpc350.InputBits30}, 0x00},
		{dlpc350.InputSource{Type: dlpc350.InputTestPattern}, 0x01},
		{dlpc350.InputSource{Type: dlpc350.InputFlash, BitDepth: dlpc350.InputBits24}, 0x0A},
		{dlpc350.InputSource{Type: dlpc350.InputParallel, BitDepth: dlpc350.InputBits8}, 0x28},
	}
	for _, tt := range tests {
		if got := tt.src.Byte(); got != tt.want {
			t.Errorf("%+v.Byte() = 0x%02X, want 0x%02X", tt.src, got, tt.want)
		}
		if back := dlpc350.ParseInputSource(tt.want); back != tt.src {
			t.Errorf("ParseInputSource(0x%02X) = %+v, want %+v", tt.want, back, tt.src)
		}
	}
}

func TestInputBitDepthBits(t *testing.T) {
	for _, bits := range []int{30, 24, 20, 16, 10, 8} {
		d, ok := dlpc350.InputBitDepthFromBits(bits)
		if !ok || d.Bits() != bits {
			t.Errorf("InputBitDepthFromBits(%d) = %v, %v", bits, d, ok)
		}
	}
	if _, ok := dlpc350.InputBitDepthFromBits(12); ok {
		t.Error("InputBitDepthFromBits(12) should fail")
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		raw    uint8
		valid  bool
		faults []string
	}{
		{0x00, true, nil},
		{0xE0, true, nil},
		{0x01, false, []string{"invalid_period"}},
		{0x12, false, []string{"invalid_pattern", "invalid_period_difference"}},
		{0x0C, false, []string{"overlap_trigger_out1", "missing_black_vector"}},
	}
	for _, tt := range tests {
		v := dlpc350.ParseValidation(tt.raw)
		if v.IsValid() != tt.valid {
			t.Errorf("ParseValidation(0x%02X).IsValid() = %v, want %v", tt.raw, v.IsValid(), tt.valid)
		}
		faults := v.Faults()
		if len(faults) != len(tt.faults) {
			t.Errorf("Faults(0x%02X) = %v, want %v", tt.raw, faults, tt.faults)
			continue
		}
		for i := range faults {
			if faults[i] != tt.faults[i] {
				t.Errorf("Faults(0x%02X) = %v, want %v", tt.raw, faults, tt.faults)
				break
			}
		}
	}
}

func TestTestPatternNames(t *testing.T) {
	for p := dlpc350.TestSolidField; p <= dlpc350.TestStepBars; p++ {
		back, err := dlpc350.ParseTestPattern(p.String())
		if err != nil || back != p {
			t.Errorf("ParseTestPattern(%q) = %v, %v", p.String(), back, err)
		}
	}
	if _, err := dlpc350.ParseTestPattern("plaid"); err == nil {
		t.Error("ParseTestPattern(plaid) should fail")
	}
}

func TestParseModes(t *testing.T) {
	for _, m := range []dlpc350.PowerMode{dlpc350.PowerNormal, dlpc350.PowerStandby} {
		if back, err := dlpc350.ParsePowerMode(m.String()); err != nil || back != m {
			t.Errorf("ParsePowerMode(%q) = %v, %v", m.String(), back, err)
		}
	}
	for _, m := range []dlpc350.DisplayMode{dlpc350.DisplayVideo, dlpc350.DisplayPattern} {
		if back, err := dlpc350.ParseDisplayMode(m.String()); err != nil || back != m {
			t.Errorf("ParseDisplayMode(%q) = %v, %v", m.String(), back, err)
		}
	}
	for it := dlpc350.InputParallel; it <= dlpc350.InputFPDLink; it++ {
		if back, err := dlpc350.ParseInputType(it.String()); err != nil || back != it {
			t.Errorf("ParseInputType(%q) = %v, %v", it.String(), back, err)
		}
	}

	if _, err := dlpc350.ParsePowerMode("off"); err == nil {
		t.Error("ParsePowerMode(off) should fail")
	}
	if _, err := dlpc350.ParseDisplayMode("still"); err == nil {
		t.Error("ParseDisplayMode(still) should fail")
	}
	if _, err := dlpc350.ParseInputType("hdmi"); err == nil {
		t.Error("ParseInputType(hdmi) should fail")
	}
}
