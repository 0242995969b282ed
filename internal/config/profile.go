package config

import (
	"fmt"
	"sort"

	"github.com/lightcrafter/dlpc350/internal/deviceconfig"
	"github.com/lightcrafter/dlpc350/internal/dlpc350"
)

// ProfileSpec is a named set of display settings. Empty fields are left
// as they are on the device.
type ProfileSpec struct {
	Description string `yaml:"description,omitempty"`
	LEDEnable   string `yaml:"led_enable,omitempty"`   // red,green,blue,auto or none
	Red         *int   `yaml:"red,omitempty"`          // 0-255
	Green       *int   `yaml:"green,omitempty"`        // 0-255
	Blue        *int   `yaml:"blue,omitempty"`         // 0-255
	Input       string `yaml:"input,omitempty"`        // parallel, test_pattern, flash, fpdlink
	InputBits   int    `yaml:"input_bits,omitempty"`   // Default 24
	TestPattern string `yaml:"test_pattern,omitempty"` // e.g. checkerboard
	FlashImage  *uint8 `yaml:"flash_image,omitempty"`
}

// Update builds the settings update for the profile against the current
// device settings.
func (p *ProfileSpec) Update(current *deviceconfig.Settings) (*deviceconfig.Settings, error) {
	b := deviceconfig.NewUpdateBuilder(current)

	if p.LEDEnable != "" {
		e, err := deviceconfig.ParseLEDEnable(p.LEDEnable)
		if err != nil {
			return nil, err
		}
		b.SetLEDEnable(e)
	}
	if p.Red != nil {
		b.SetRed(*p.Red)
	}
	if p.Green != nil {
		b.SetGreen(*p.Green)
	}
	if p.Blue != nil {
		b.SetBlue(*p.Blue)
	}
	if p.Input != "" {
		t, err := dlpc350.ParseInputType(p.Input)
		if err != nil {
			return nil, err
		}
		bits := p.InputBits
		if bits == 0 {
			bits = 24
		}
		b.SetInput(t, bits)
	}
	if p.TestPattern != "" {
		tp, err := dlpc350.ParseTestPattern(p.TestPattern)
		if err != nil {
			return nil, err
		}
		b.SetTestPattern(tp)
	}
	if p.FlashImage != nil {
		b.SetFlashImage(*p.FlashImage)
	}
	return b.Build()
}

// ProfileFromSettings records device settings as a profile
func ProfileFromSettings(s *deviceconfig.Settings) *ProfileSpec {
	p := &ProfileSpec{}
	if s.LEDEnable != nil {
		p.LEDEnable = deviceconfig.FormatLEDEnable(*s.LEDEnable)
	}
	if s.LEDCurrent != nil {
		r, g, b := int(s.LEDCurrent.Red), int(s.LEDCurrent.Green), int(s.LEDCurrent.Blue)
		p.Red, p.Green, p.Blue = &r, &g, &b
	}
	if s.Input != nil {
		p.Input = s.Input.Type.String()
		p.InputBits = s.Input.BitDepth.Bits()
	}
	if s.TestPattern != nil {
		p.TestPattern = s.TestPattern.String()
	}
	if s.FlashImage != nil {
		v := *s.FlashImage
		p.FlashImage = &v
	}
	return p
}

// GetProfile retrieves a named profile, or nil
func (r *Registry) GetProfile(name string) *ProfileSpec {
	return r.Profiles[name]
}

// SetProfile stores a named profile, replacing any previous one.
func (r *Registry) SetProfile(name string, p *ProfileSpec) {
	if r.Profiles == nil {
		r.Profiles = make(map[string]*ProfileSpec)
	}
	r.Profiles[name] = p
}

// DeleteProfile removes a named profile.
func (r *Registry) DeleteProfile(name string) error {
	if _, ok := r.Profiles[name]; !ok {
		return fmt.Errorf("profile %q not found", name)
	}
	delete(r.Profiles, name)
	return nil
}

// ProfileNames returns the profile names in sorted order.
func (r *Registry) ProfileNames() []string {
	names := make([]string, 0, len(r.Profiles))
	for name := range r.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
