package dlpc350

import (
	"encoding/binary"
	"fmt"

	"github.com/lightcrafter/dlpc350/internal/protocol"
)

// PowerMode selects standby or normal operation
type PowerMode uint8

const (
	PowerNormal  PowerMode = 0
	PowerStandby PowerMode = 1
)

// String returns "normal" or "standby"
func (m PowerMode) String() string {
	if m == PowerStandby {
		return "standby"
	}
	return "normal"
}

// ParsePowerMode parses "normal" or "standby"
func ParsePowerMode(s string) (PowerMode, error) {
	switch s {
	case "normal":
		return PowerNormal, nil
	case "standby":
		return PowerStandby, nil
	}
	return 0, fmt.Errorf("unknown power mode %q", s)
}

// DisplayMode selects video or pattern display
type DisplayMode uint8

const (
	DisplayVideo   DisplayMode = 0
	DisplayPattern DisplayMode = 1
)

// String returns "video" or "pattern"
func (m DisplayMode) String() string {
	if m == DisplayPattern {
		return "pattern"
	}
	return "video"
}

// ParseDisplayMode parses "video" or "pattern"
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch s {
	case "video":
		return DisplayVideo, nil
	case "pattern":
		return DisplayPattern, nil
	}
	return 0, fmt.Errorf("unknown display mode %q", s)
}

// TriggerMode is the pattern trigger mode
type TriggerMode uint8

const (
	TriggerMode0 TriggerMode = iota // VSYNC triggers the sequence
	TriggerMode1                    // internal or external trigger
	TriggerMode2                    // TRIG_IN_1 alternates two patterns, TRIG_IN_2 advances
	TriggerMode3                    // variable exposure, internal or external trigger
	TriggerMode4                    // variable exposure, VSYNC triggered
)

// String returns "mode0" through "mode4"
func (m TriggerMode) String() string {
	return fmt.Sprintf("mode%d", uint8(m))
}

// RunState is the pattern sequence run state
type RunState uint8

const (
	RunStop  RunState = 0
	RunPause RunState = 1
	RunStart RunState = 2
)

// String returns "stop", "pause", "start" or the raw value
func (s RunState) String() string {
	switch s {
	case RunStop:
		return "stop"
	case RunPause:
		return "pause"
	case RunStart:
		return "start"
	default:
		return fmt.Sprintf("RunState(%d)", uint8(s))
	}
}

// InputType is the video input source
type InputType uint8

const (
	InputParallel    InputType = 0
	InputTestPattern InputType = 1
	InputFlash       InputType = 2
	InputFPDLink     InputType = 3
)

var inputTypeNames = []string{"parallel", "test_pattern", "flash", "fpdlink"}

// String returns the input type name
func (t InputType) String() string {
	if int(t) < len(inputTypeNames) {
		return inputTypeNames[t]
	}
	return fmt.Sprintf("InputType(%d)", uint8(t))
}

// ParseInputType parses an input type name
func ParseInputType(s string) (InputType, error) {
	for i, name := range inputTypeNames {
		if name == s {
			return InputType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown input type %q", s)
}

// InputBitDepth is the bit depth of the parallel input port
type InputBitDepth uint8

const (
	InputBits30 InputBitDepth = iota
	InputBits24
	InputBits20
	InputBits16
	InputBits10
	InputBits8
)

var inputBitDepthBits = []int{30, 24, 20, 16, 10, 8}

// Bits returns the number of bits per pixel, or 0 for an unknown value
func (d InputBitDepth) Bits() int {
	if int(d) < len(inputBitDepthBits) {
		return inputBitDepthBits[d]
	}
	return 0
}

// String returns the bit depth as e.g. "24bit"
func (d InputBitDepth) String() string {
	if bits := d.Bits(); bits > 0 {
		return fmt.Sprintf("%dbit", bits)
	}
	return fmt.Sprintf("InputBitDepth(%d)", uint8(d))
}

// InputBitDepthFromBits maps a bits-per-pixel count to its register value
func InputBitDepthFromBits(bits int) (InputBitDepth, bool) {
	for i, b := range inputBitDepthBits {
		if b == bits {
			return InputBitDepth(i), true
		}
	}
	return 0, false
}

// TestPattern is an internal test pattern
type TestPattern uint8

const (
	TestSolidField TestPattern = iota
	TestHorizontalRamp
	TestVerticalRamp
	TestHorizontalLines
	TestDiagonalLines
	TestVerticalLines
	TestGrid
	TestCheckerboard
	TestRGBRamp
	TestColorBars
	TestStepBars
)

var testPatternNames = []string{
	"solid_field", "horizontal_ramp", "vertical_ramp", "horizontal_lines",
	"diagonal_lines", "vertical_lines", "grid", "checkerboard",
	"rgb_ramp", "color_bars", "step_bars",
}

// String returns the test pattern name
func (p TestPattern) String() string {
	if int(p) < len(testPatternNames) {
		return testPatternNames[p]
	}
	return fmt.Sprintf("TestPattern(%d)", uint8(p))
}

// ParseTestPattern parses a test pattern name
func ParseTestPattern(s string) (TestPattern, error) {
	for i, name := range testPatternNames {
		if name == s {
			return TestPattern(i), nil
		}
	}
	return 0, fmt.Errorf("unknown test pattern %q", s)
}

// Register descriptors
var (
	HardwareStatusRegister = protocol.Register{
		Name: "hardware_status",
		Fields: []protocol.Field{
			{Name: "init_done", Offset: 0, Width: 1},
			{Name: "drc_error", Offset: 2, Width: 1},
			{Name: "forced_swap", Offset: 3, Width: 1},
			{Name: "sequence_abort", Offset: 6, Width: 1},
			{Name: "sequence_error", Offset: 7, Width: 1},
		},
	}

	SystemStatusRegister = protocol.Register{
		Name: "system_status",
		Fields: []protocol.Field{
			{Name: "memory_test", Offset: 0, Width: 1},
		},
	}

	MainStatusRegister = protocol.Register{
		Name: "main_status",
		Fields: []protocol.Field{
			{Name: "dmd_parked", Offset: 0, Width: 1},
			{Name: "sequence_running", Offset: 1, Width: 1},
			{Name: "buffer_frozen", Offset: 2, Width: 1},
			{Name: "gamma_correction", Offset: 3, Width: 1},
		},
	}

	LEDEnableRegister = protocol.Register{
		Name: "led_enable",
		Fields: []protocol.Field{
			{Name: "red", Offset: 0, Width: 1},
			{Name: "green", Offset: 1, Width: 1},
			{Name: "blue", Offset: 2, Width: 1},
			{Name: "auto", Offset: 3, Width: 1},
		},
	}

	InputSourceRegister = protocol.Register{
		Name: "input_source",
		Fields: []protocol.Field{
			{Name: "type", Offset: 0, Width: 3},
			{Name: "bit_depth", Offset: 3, Width: 3},
		},
	}

	ValidationRegister = protocol.Register{
		Name: "validation",
		Fields: []protocol.Field{
			{Name: "invalid_period", Offset: 0, Width: 1},
			{Name: "invalid_pattern", Offset: 1, Width: 1},
			{Name: "overlap_trigger_out1", Offset: 2, Width: 1},
			{Name: "missing_black_vector", Offset: 3, Width: 1},
			{Name: "invalid_period_difference", Offset: 4, Width: 1},
		},
	}

	VersionRegister = protocol.Register{
		Name: "version",
		Fields: []protocol.Field{
			{Name: "patch", Offset: 0, Width: 16},
			{Name: "minor", Offset: 16, Width: 8},
			{Name: "major", Offset: 24, Width: 8},
		},
	}
)

func flag(r protocol.Register, name string, value uint32) bool {
	f, _ := r.Field(name)
	return f.Bool(value)
}

// HardwareStatus is the decoded hardware status register
type HardwareStatus struct {
	Raw           uint8
	InitDone      bool // false indicates an initialization error
	DRCError      bool
	ForcedSwap    bool
	SequenceAbort bool
	SequenceError bool
}

// ParseHardwareStatus decodes the hardware status byte
func ParseHardwareStatus(b uint8) HardwareStatus {
	v := uint32(b)
	return HardwareStatus{
		Raw:           b,
		InitDone:      flag(HardwareStatusRegister, "init_done", v),
		DRCError:      flag(HardwareStatusRegister, "drc_error", v),
		ForcedSwap:    flag(HardwareStatusRegister, "forced_swap", v),
		SequenceAbort: flag(HardwareStatusRegister, "sequence_abort", v),
		SequenceError: flag(HardwareStatusRegister, "sequence_error", v),
	}
}

// OK reports whether the hardware status shows no error
func (s HardwareStatus) OK() bool {
	return s.InitDone && !s.DRCError && !s.ForcedSwap && !s.SequenceAbort && !s.SequenceError
}

// SystemStatus is the decoded system status register
type SystemStatus struct {
	Raw        uint8
	MemoryTest bool // false indicates a failed memory test
}

// ParseSystemStatus decodes the system status byte
func ParseSystemStatus(b uint8) SystemStatus {
	return SystemStatus{
		Raw:        b,
		MemoryTest: flag(SystemStatusRegister, "memory_test", uint32(b)),
	}
}

// MainStatus is the decoded main status register
type MainStatus struct {
	Raw             uint8
	DMDParked       bool
	SequenceRunning bool
	BufferFrozen    bool
	GammaCorrection bool
}

// ParseMainStatus decodes the main status byte
func ParseMainStatus(b uint8) MainStatus {
	v := uint32(b)
	return MainStatus{
		Raw:             b,
		DMDParked:       flag(MainStatusRegister, "dmd_parked", v),
		SequenceRunning: flag(MainStatusRegister, "sequence_running", v),
		BufferFrozen:    flag(MainStatusRegister, "buffer_frozen", v),
		GammaCorrection: flag(MainStatusRegister, "gamma_correction", v),
	}
}

// ComponentVersion is one packed version word
type ComponentVersion struct {
	Major uint8
	Minor uint8
	Patch uint16
}

// ParseComponentVersion decodes a version word (patch:16 minor:8 major:8)
func ParseComponentVersion(v uint32) ComponentVersion {
	fields := VersionRegister.Decode(v)
	return ComponentVersion{
		Major: uint8(fields["major"]),
		Minor: uint8(fields["minor"]),
		Patch: uint16(fields["patch"]),
	}
}

// Pack returns the version word
func (c ComponentVersion) Pack() uint32 {
	return uint32(c.Major)<<24 | uint32(c.Minor)<<16 | uint32(c.Patch)
}

// String returns "major.minor.patch"
func (c ComponentVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", c.Major, c.Minor, c.Patch)
}

// VersionSize is the length of the version reply
const VersionSize = 16

// Version holds the firmware component versions
type Version struct {
	App            ComponentVersion
	API            ComponentVersion
	SoftwareConfig ComponentVersion
	SequenceConfig ComponentVersion
}

// ParseVersion decodes the four little-endian version words
func ParseVersion(data []byte) (Version, error) {
	if len(data) < VersionSize {
		return Version{}, protocol.NewMalformedError("get version",
			fmt.Sprintf("reply too short: %d bytes (want %d)", len(data), VersionSize))
	}
	word := func(i int) ComponentVersion {
		return ParseComponentVersion(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return Version{
		App:            word(0),
		API:            word(1),
		SoftwareConfig: word(2),
		SequenceConfig: word(3),
	}, nil
}

// Bytes returns the wire representation of the version
func (v Version) Bytes() []byte {
	out := make([]byte, VersionSize)
	for i, c := range []ComponentVersion{v.App, v.API, v.SoftwareConfig, v.SequenceConfig} {
		binary.LittleEndian.PutUint32(out[i*4:], c.Pack())
	}
	return out
}

// LEDEnable is the LED enable register
type LEDEnable struct {
	Auto  bool // sequencer controls the LEDs
	Red   bool
	Green bool
	Blue  bool
}

// ParseLEDEnable decodes the LED enable byte
func ParseLEDEnable(b uint8) LEDEnable {
	v := uint32(b)
	return LEDEnable{
		Auto:  flag(LEDEnableRegister, "auto", v),
		Red:   flag(LEDEnableRegister, "red", v),
		Green: flag(LEDEnableRegister, "green", v),
		Blue:  flag(LEDEnableRegister, "blue", v),
	}
}

// Byte packs the LED enable register
func (l LEDEnable) Byte() uint8 {
	var v uint32
	for _, f := range LEDEnableRegister.Fields {
		var on bool
		switch f.Name {
		case "red":
			on = l.Red
		case "green":
			on = l.Green
		case "blue":
			on = l.Blue
		case "auto":
			on = l.Auto
		}
		v = f.SetBool(v, on)
	}
	return uint8(v)
}

// LEDCurrent is the requested drive current per channel (0-255)
type LEDCurrent struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

// Bytes returns the wire representation. The controller stores each
// channel inverted (255 - value).
func (c LEDCurrent) Bytes() []byte {
	return []byte{255 - c.Red, 255 - c.Green, 255 - c.Blue}
}

// ParseLEDCurrent decodes the inverted wire representation
func ParseLEDCurrent(data []byte) (LEDCurrent, error) {
	if len(data) < 3 {
		return LEDCurrent{}, protocol.NewMalformedError("get LED current",
			fmt.Sprintf("reply too short: %d bytes", len(data)))
	}
	return LEDCurrent{Red: 255 - data[0], Green: 255 - data[1], Blue: 255 - data[2]}, nil
}

// InputSource is the input source register
type InputSource struct {
	Type     InputType
	BitDepth InputBitDepth
}

// ParseInputSource decodes the input source byte
func ParseInputSource(b uint8) InputSource {
	fields := InputSourceRegister.Decode(uint32(b))
	return InputSource{
		Type:     InputType(fields["type"]),
		BitDepth: InputBitDepth(fields["bit_depth"]),
	}
}

// Byte packs the input source register
func (s InputSource) Byte() uint8 {
	typ, _ := InputSourceRegister.Field("type")
	depth, _ := InputSourceRegister.Field("bit_depth")
	v := typ.Set(0, uint32(s.Type))
	v = depth.Set(v, uint32(s.BitDepth))
	return uint8(v)
}

// Validation is the device-side pattern sequence validation result
type Validation struct {
	Raw                     uint8
	InvalidPeriod           bool
	InvalidPattern          bool
	OverlapTriggerOut1      bool
	MissingBlackVector      bool
	InvalidPeriodDifference bool
}

// validationMask covers the defined fault bits
const validationMask = 1<<5 - 1

// ParseValidation decodes the validation byte
func ParseValidation(b uint8) Validation {
	v := uint32(b)
	return Validation{
		Raw:                     b,
		InvalidPeriod:           flag(ValidationRegister, "invalid_period", v),
		InvalidPattern:          flag(ValidationRegister, "invalid_pattern", v),
		OverlapTriggerOut1:      flag(ValidationRegister, "overlap_trigger_out1", v),
		MissingBlackVector:      flag(ValidationRegister, "missing_black_vector", v),
		InvalidPeriodDifference: flag(ValidationRegister, "invalid_period_difference", v),
	}
}

// IsValid reports whether no fault bit is set
func (v Validation) IsValid() bool {
	return v.Raw&validationMask == 0
}

// Faults returns the names of the fault bits that are set
func (v Validation) Faults() []string {
	var out []string
	for _, f := range ValidationRegister.Fields {
		if f.Bool(uint32(v.Raw)) {
			out = append(out, f.Name)
		}
	}
	return out
}
