package config

import (
	"testing"

	"github.com/lightcrafter/dlpc350/internal/deviceconfig"
	"github.com/lightcrafter/dlpc350/internal/dlpc350"
)

func TestProfileUpdate(t *testing.T) {
	current := &deviceconfig.Settings{
		LEDCurrent: &dlpc350.LEDCurrent{Red: 1, Green: 2, Blue: 3},
		Input:      &dlpc350.InputSource{Type: dlpc350.InputParallel, BitDepth: dlpc350.InputBits24},
	}

	update, err := ExampleProfile().Update(current)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if update.Input == nil || update.Input.Type != dlpc350.InputTestPattern {
		t.Errorf("Input = %v, want test_pattern", update.Input)
	}
	if update.TestPattern == nil || *update.TestPattern != dlpc350.TestCheckerboard {
		t.Errorf("TestPattern = %v, want checkerboard", update.TestPattern)
	}
	if *update.LEDCurrent != (dlpc350.LEDCurrent{Red: 120, Green: 120, Blue: 120}) {
		t.Errorf("LEDCurrent = %v", *update.LEDCurrent)
	}
	if *update.LEDEnable != (dlpc350.LEDEnable{Red: true, Green: true, Blue: true}) {
		t.Errorf("LEDEnable = %v", *update.LEDEnable)
	}
}

func TestProfileUpdatePartialCurrent(t *testing.T) {
	current := &deviceconfig.Settings{LEDCurrent: &dlpc350.LEDCurrent{Red: 1, Green: 2, Blue: 3}}
	green := 90

	update, err := (&ProfileSpec{Green: &green}).Update(current)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if *update.LEDCurrent != (dlpc350.LEDCurrent{Red: 1, Green: 90, Blue: 3}) {
		t.Errorf("LEDCurrent = %v", *update.LEDCurrent)
	}
	if update.Input != nil || update.LEDEnable != nil {
		t.Error("unset profile fields produced updates")
	}
}

func TestProfileUpdateErrors(t *testing.T) {
	big := 300
	tests := []struct {
		name    string
		profile ProfileSpec
	}{
		{"empty", ProfileSpec{Description: "nothing"}},
		{"bad LED", ProfileSpec{LEDEnable: "violet"}},
		{"bad input", ProfileSpec{Input: "hdmi"}},
		{"bad test pattern", ProfileSpec{Input: "test_pattern", TestPattern: "plaid"}},
		{"current out of range", ProfileSpec{Red: &big}},
		{"bad width", ProfileSpec{Input: "parallel", InputBits: 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.profile.Update(nil); err == nil {
				t.Error("Update() error = nil")
			}
		})
	}
}

func TestProfileFromSettings(t *testing.T) {
	var img uint8 = 3
	s := &deviceconfig.Settings{
		LEDEnable:  &dlpc350.LEDEnable{Auto: true},
		LEDCurrent: &dlpc350.LEDCurrent{Red: 10, Green: 20, Blue: 30},
		Input:      &dlpc350.InputSource{Type: dlpc350.InputFlash, BitDepth: dlpc350.InputBits24},
		FlashImage: &img,
	}

	p := ProfileFromSettings(s)
	if p.LEDEnable != "auto" || p.Input != "flash" || p.InputBits != 24 {
		t.Errorf("ProfileFromSettings() = %+v", p)
	}
	if p.FlashImage == nil || *p.FlashImage != 3 {
		t.Errorf("FlashImage = %v, want 3", p.FlashImage)
	}

	// Applying the saved profile to the same settings is a no-op diff
	update, err := p.Update(s)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if diff := deviceconfig.Diff(s, update); len(diff) != 0 {
		t.Errorf("Diff() = %v, want none", diff)
	}
}

func TestProfilesCRUD(t *testing.T) {
	r := NewRegistry()
	r.SetProfile("b", &ProfileSpec{})
	r.SetProfile("a", ExampleProfile())

	names := r.ProfileNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("ProfileNames() = %v, want [a b]", names)
	}
	if r.GetProfile("a") == nil {
		t.Error("GetProfile(a) = nil")
	}
	if err := r.DeleteProfile("b"); err != nil {
		t.Errorf("DeleteProfile(b) error = %v", err)
	}
	if err := r.DeleteProfile("b"); err == nil {
		t.Error("DeleteProfile(b) twice error = nil")
	}
}

func TestParseProfiles(t *testing.T) {
	data := []byte(`version: 1
profiles:
  dim:
    led_enable: auto
    red: 20
    green: 20
    blue: 20
`)
	r, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	p := r.GetProfile("dim")
	if p == nil || p.Red == nil || *p.Red != 20 || p.LEDEnable != "auto" {
		t.Errorf("profile dim = %+v", p)
	}
}
