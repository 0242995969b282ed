package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/lightcrafter/dlpc350/internal/pattern"
	"github.com/lightcrafter/dlpc350/internal/transport"
)

// Connection kinds
const (
	KindHID       = "hid"
	KindSerial    = "serial"
	KindWebSocket = "websocket"
)

// Registry represents the entire user configuration file.
type Registry struct {
	Version    int                      `yaml:"version"`
	Connection *Connection              `yaml:"connection,omitempty"`
	Timing     *Timing                  `yaml:"timing,omitempty"`
	Sequences  map[string]*SequenceSpec `yaml:"sequences,omitempty"` // Keyed by sequence name
	Profiles   map[string]*ProfileSpec  `yaml:"profiles,omitempty"`  // Keyed by profile name
}

// Connection describes how to reach the controller.
type Connection struct {
	Kind       string `yaml:"kind"`                  // hid, serial or websocket
	VendorID   uint16 `yaml:"vendor_id,omitempty"`   // USB vendor id (hid)
	ProductID  uint16 `yaml:"product_id,omitempty"`  // USB product id (hid)
	Index      int    `yaml:"index,omitempty"`       // Which matching USB device to open (hid)
	SerialPort string `yaml:"serial_port,omitempty"` // e.g. /dev/ttyACM0 (serial)
	Baud       int    `yaml:"baud,omitempty"`        // Serial baud rate (serial)
	URL        string `yaml:"url,omitempty"`         // ws://host:port/packets (websocket)
}

// Timing holds driver timing parameters.
type Timing struct {
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // Reply timeout per packet
	PollAttempts int           `yaml:"poll_attempts"` // Read-backs confirming a mode change
	PollInterval time.Duration `yaml:"poll_interval"` // Delay between read-backs
}

// SequenceSpec is a named pattern sequence.
type SequenceSpec struct {
	Description      string      `yaml:"description,omitempty"`
	Period           PeriodSpec  `yaml:"period"`
	Repeat           bool        `yaml:"repeat"`
	TriggerOutPulses uint8       `yaml:"trigger_out_pulses,omitempty"`
	TriggerMode      *uint8      `yaml:"trigger_mode,omitempty"` // 0-4, left unchanged when unset
	Entries          []EntrySpec `yaml:"entries"`
}

// PeriodSpec is the exposure and frame period in microseconds.
type PeriodSpec struct {
	Exposure uint16 `yaml:"exposure"`
	Frame    uint16 `yaml:"frame"`
}

// EntrySpec describes one pattern of a sequence.
type EntrySpec struct {
	Color       string `yaml:"color"`                  // pass, red, green, ... white
	Trigger     string `yaml:"trigger"`                // internal, external_positive, external_negative, none
	BitDepth    uint8  `yaml:"bit_depth"`              // 1-8
	Image       uint8  `yaml:"image"`                  // Flash image index
	StartBit    string `yaml:"start_bit"`              // G0..G7, R0..R7, B0..B7
	Invert      bool   `yaml:"invert,omitempty"`       // Invert the pattern
	InsertBlack *bool  `yaml:"insert_black,omitempty"` // Default true
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:    1,
		Connection: DefaultConnection(),
		Timing:     DefaultTiming(),
		Sequences:  make(map[string]*SequenceSpec),
		Profiles:   make(map[string]*ProfileSpec),
	}
}

// DefaultConnection returns the USB HID profile of the LightCrafter 4500.
func DefaultConnection() *Connection {
	return &Connection{
		Kind:      KindHID,
		VendorID:  transport.VendorID,
		ProductID: transport.ProductID,
	}
}

// DefaultTiming returns the driver defaults.
func DefaultTiming() *Timing {
	return &Timing{
		ReadTimeout:  transport.DefaultReadTimeout,
		PollAttempts: 5,
		PollInterval: 100 * time.Millisecond,
	}
}

// Validate checks that the connection profile is usable.
func (c *Connection) Validate() error {
	switch c.Kind {
	case KindHID:
		if c.VendorID == 0 || c.ProductID == 0 {
			return fmt.Errorf("hid connection needs vendor_id and product_id")
		}
	case KindSerial:
		if c.SerialPort == "" {
			return fmt.Errorf("serial connection needs serial_port")
		}
	case KindWebSocket:
		if c.URL == "" {
			return fmt.Errorf("websocket connection needs url")
		}
	default:
		return fmt.Errorf("unknown connection kind %q (want %s, %s or %s)", c.Kind, KindHID, KindSerial, KindWebSocket)
	}
	return nil
}

// GetSequence retrieves a named sequence.
// Returns nil if the sequence doesn't exist in the registry.
func (r *Registry) GetSequence(name string) *SequenceSpec {
	return r.Sequences[name]
}

// SetSequence stores a named sequence, replacing any previous one.
func (r *Registry) SetSequence(name string, spec *SequenceSpec) {
	if r.Sequences == nil {
		r.Sequences = make(map[string]*SequenceSpec)
	}
	r.Sequences[name] = spec
}

// DeleteSequence removes a named sequence.
func (r *Registry) DeleteSequence(name string) {
	delete(r.Sequences, name)
}

// SequenceNames returns the sequence names in sorted order.
func (r *Registry) SequenceNames() []string {
	names := make([]string, 0, len(r.Sequences))
	for name := range r.Sequences {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PatternPeriod converts the period spec.
func (p PeriodSpec) PatternPeriod() pattern.Period {
	return pattern.Period{Exposure: p.Exposure, Frame: p.Frame}
}

// Pattern converts an entry spec into a pattern.
func (e EntrySpec) Pattern() (pattern.Pattern, error) {
	color, err := pattern.ParseColor(e.Color)
	if err != nil {
		return pattern.Pattern{}, err
	}
	trigger, err := pattern.ParseTriggerType(e.Trigger)
	if err != nil {
		return pattern.Pattern{}, err
	}
	start, err := pattern.ParseBitIndex(e.StartBit)
	if err != nil {
		return pattern.Pattern{}, err
	}

	p := pattern.NewPattern(color, trigger, e.BitDepth, e.Image, start)
	p.Invert = e.Invert
	if e.InsertBlack != nil {
		p.InsertBlack = *e.InsertBlack
	}
	return p, nil
}

// Patterns converts every entry of the sequence.
func (s *SequenceSpec) Patterns() ([]pattern.Pattern, error) {
	out := make([]pattern.Pattern, 0, len(s.Entries))
	for i, e := range s.Entries {
		p, err := e.Pattern()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Build creates the pattern sequence for the given pattern display mode.
func (s *SequenceSpec) Build(mode pattern.DisplayMode) (*pattern.Sequence, error) {
	patterns, err := s.Patterns()
	if err != nil {
		return nil, err
	}
	seq := pattern.NewSequence()
	for i, p := range patterns {
		if _, err := seq.Add(mode, p); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return seq, nil
}

// Pulses returns the trigger out pulse count, defaulting to 1.
func (s *SequenceSpec) Pulses() uint8 {
	if s.TriggerOutPulses == 0 {
		return 1
	}
	return s.TriggerOutPulses
}
