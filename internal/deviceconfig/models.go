package deviceconfig

import (
	"github.com/lightcrafter/dlpc350/internal/dlpc350"
)

// Controller is the part of the driver that holds the settings.
// *dlpc350.Driver satisfies it.
type Controller interface {
	GetLEDEnable() (dlpc350.LEDEnable, error)
	SetLEDEnable(e dlpc350.LEDEnable) error
	GetLEDCurrent() (dlpc350.LEDCurrent, error)
	SetLEDCurrent(c dlpc350.LEDCurrent) error
	GetInputSource() (dlpc350.InputSource, error)
	SetInputSource(src dlpc350.InputSource) error
	GetTestPattern() (dlpc350.TestPattern, error)
	SetTestPattern(p dlpc350.TestPattern) error
	GetFlashImage() (uint8, error)
	SetFlashImage(index uint8) error
}

// Settings is a set of display settings. Nil fields are unset.
type Settings struct {
	LEDEnable   *dlpc350.LEDEnable
	LEDCurrent  *dlpc350.LEDCurrent
	Input       *dlpc350.InputSource
	TestPattern *dlpc350.TestPattern // only with the test pattern input
	FlashImage  *uint8               // only with the flash input
}

// IsEmpty reports whether no field is set
func (s *Settings) IsEmpty() bool {
	return s == nil ||
		(s.LEDEnable == nil && s.LEDCurrent == nil && s.Input == nil &&
			s.TestPattern == nil && s.FlashImage == nil)
}

// Clone returns a deep copy
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	out := &Settings{}
	if s.LEDEnable != nil {
		v := *s.LEDEnable
		out.LEDEnable = &v
	}
	if s.LEDCurrent != nil {
		v := *s.LEDCurrent
		out.LEDCurrent = &v
	}
	if s.Input != nil {
		v := *s.Input
		out.Input = &v
	}
	if s.TestPattern != nil {
		v := *s.TestPattern
		out.TestPattern = &v
	}
	if s.FlashImage != nil {
		v := *s.FlashImage
		out.FlashImage = &v
	}
	return out
}

// Snapshot reads every setting. The test pattern and flash image are only
// read when the matching input is selected.
func Snapshot(c Controller) (*Settings, error) {
	s := &Settings{}

	e, err := c.GetLEDEnable()
	if err != nil {
		return nil, err
	}
	s.LEDEnable = &e

	cur, err := c.GetLEDCurrent()
	if err != nil {
		return nil, err
	}
	s.LEDCurrent = &cur

	src, err := c.GetInputSource()
	if err != nil {
		return nil, err
	}
	s.Input = &src

	switch src.Type {
	case dlpc350.InputTestPattern:
		p, err := c.GetTestPattern()
		if err != nil {
			return nil, err
		}
		s.TestPattern = &p
	case dlpc350.InputFlash:
		idx, err := c.GetFlashImage()
		if err != nil {
			return nil, err
		}
		s.FlashImage = &idx
	}
	return s, nil
}
