package dlpc350

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/lightcrafter/dlpc350/internal/pattern"
	"github.com/lightcrafter/dlpc350/internal/protocol"
	"github.com/lightcrafter/dlpc350/internal/transport"
)

// Driver issues commands to one DLPC350 controller
type Driver struct {
	codec  *protocol.Codec
	config Config
	log    *zap.Logger

	// mailboxMu is held for the whole open..close span of a mailbox session
	mailboxMu sync.Mutex
}

// New creates a driver over an opened transport
func New(t transport.Transport, opts ...Option) *Driver {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	codec := protocol.NewCodec(t)
	codec.ReadTimeout = cfg.ReadTimeout

	return &Driver{
		codec:  codec,
		config: cfg,
		log:    log,
	}
}

// Config returns the effective driver configuration
func (d *Driver) Config() Config {
	return d.config
}

// Connected reports whether the underlying transport is still usable
func (d *Driver) Connected() bool {
	return d.codec.Transport().IsConnected()
}

// Get reads raw register data
func (d *Driver) Get(op protocol.Opcode) ([]byte, error) {
	data, err := d.codec.Get(op)
	if err != nil {
		return nil, protocol.WithOp(err, "get "+OpcodeName(op))
	}
	return data, nil
}

// Set writes raw register data and waits for the acknowledgement
func (d *Driver) Set(op protocol.Opcode, params ...byte) error {
	if err := d.codec.Set(op, params...); err != nil {
		return protocol.WithOp(err, "set "+OpcodeName(op))
	}
	return nil
}

// getByte reads a one-byte register
func (d *Driver) getByte(op protocol.Opcode) (uint8, error) {
	data, err := d.Get(op)
	if err != nil {
		return 0, err
	}
	if len(data) < 1 {
		return 0, protocol.NewMalformedError("get "+OpcodeName(op), "empty reply")
	}
	return data[0], nil
}

// GetHardwareStatus reads the hardware status register
func (d *Driver) GetHardwareStatus() (HardwareStatus, error) {
	b, err := d.getByte(OpHardwareStatus)
	if err != nil {
		return HardwareStatus{}, err
	}
	return ParseHardwareStatus(b), nil
}

// GetSystemStatus reads the system status register
func (d *Driver) GetSystemStatus() (SystemStatus, error) {
	b, err := d.getByte(OpSystemStatus)
	if err != nil {
		return SystemStatus{}, err
	}
	return ParseSystemStatus(b), nil
}

// GetMainStatus reads the main status register
func (d *Driver) GetMainStatus() (MainStatus, error) {
	b, err := d.getByte(OpMainStatus)
	if err != nil {
		return MainStatus{}, err
	}
	return ParseMainStatus(b), nil
}

// GetVersion reads the firmware component versions
func (d *Driver) GetVersion() (Version, error) {
	data, err := d.Get(OpVersion)
	if err != nil {
		return Version{}, err
	}
	return ParseVersion(data)
}

// GetFirmwareTag reads the NUL-terminated firmware tag
func (d *Driver) GetFirmwareTag() (string, error) {
	data, err := d.Get(OpFirmwareTag)
	if err != nil {
		return "", err
	}
	for i, b := range data {
		if b == 0 {
			return string(data[:i]), nil
		}
	}
	return string(data), nil
}

// GetNumImagesInFlash reads how many images are stored in flash
func (d *Driver) GetNumImagesInFlash() (uint8, error) {
	return d.getByte(OpNumImagesInFlash)
}

// GetPowerMode reads the power mode
func (d *Driver) GetPowerMode() (PowerMode, error) {
	b, err := d.getByte(OpPowerMode)
	return PowerMode(b), err
}

// SetPowerMode switches between standby and normal operation
func (d *Driver) SetPowerMode(mode PowerMode) error {
	return d.Set(OpPowerMode, uint8(mode))
}

// GetDisplayMode reads the display mode
func (d *Driver) GetDisplayMode() (DisplayMode, error) {
	b, err := d.getByte(OpDisplayMode)
	return DisplayMode(b), err
}

// GetPatternDisplayMode reads the pattern source (external video port or internal flash)
func (d *Driver) GetPatternDisplayMode() (pattern.DisplayMode, error) {
	b, err := d.getByte(OpPatternDisplayMode)
	return pattern.DisplayMode(b), err
}

// SetPatternDisplayMode selects the pattern source
func (d *Driver) SetPatternDisplayMode(mode pattern.DisplayMode) error {
	if mode != pattern.DisplayModeExternal && mode != pattern.DisplayModeInternal {
		return protocol.NewPreconditionError("set pattern display mode",
			fmt.Sprintf("unsupported pattern display mode %d", mode))
	}
	return d.Set(OpPatternDisplayMode, uint8(mode))
}

// GetPatternTriggerMode reads the pattern trigger mode
func (d *Driver) GetPatternTriggerMode() (TriggerMode, error) {
	b, err := d.getByte(OpPatternTriggerMode)
	return TriggerMode(b), err
}

// SetPatternTriggerMode sets the pattern trigger mode
func (d *Driver) SetPatternTriggerMode(mode TriggerMode) error {
	if mode > TriggerMode4 {
		return protocol.NewPreconditionError("set pattern trigger mode",
			fmt.Sprintf("unknown trigger mode %d", mode))
	}
	return d.Set(OpPatternTriggerMode, uint8(mode))
}

// GetRunState reads the pattern sequence run state
func (d *Driver) GetRunState() (RunState, error) {
	b, err := d.getByte(OpSequenceRunState)
	return RunState(b), err
}

// SetRunState writes the pattern sequence run state without confirmation
func (d *Driver) SetRunState(state RunState) error {
	if state > RunStart {
		return protocol.NewPreconditionError("set pattern sequence run state",
			fmt.Sprintf("unknown run state %d", state))
	}
	return d.Set(OpSequenceRunState, uint8(state))
}

// GetLEDEnable reads the LED enable register
func (d *Driver) GetLEDEnable() (LEDEnable, error) {
	b, err := d.getByte(OpLEDEnable)
	if err != nil {
		return LEDEnable{}, err
	}
	return ParseLEDEnable(b), nil
}

// SetLEDEnable writes the LED enable register
func (d *Driver) SetLEDEnable(e LEDEnable) error {
	return d.Set(OpLEDEnable, e.Byte())
}

// GetLEDCurrent reads the LED drive currents
func (d *Driver) GetLEDCurrent() (LEDCurrent, error) {
	data, err := d.Get(OpLEDCurrent)
	if err != nil {
		return LEDCurrent{}, err
	}
	return ParseLEDCurrent(data)
}

// SetLEDCurrent writes the LED drive currents
func (d *Driver) SetLEDCurrent(c LEDCurrent) error {
	return d.Set(OpLEDCurrent, c.Bytes()...)
}

// GetInputSource reads the input source register
func (d *Driver) GetInputSource() (InputSource, error) {
	b, err := d.getByte(OpInputSource)
	if err != nil {
		return InputSource{}, err
	}
	return ParseInputSource(b), nil
}

// SetInputSource selects the input source and parallel port bit depth
func (d *Driver) SetInputSource(src InputSource) error {
	if src.Type > InputFPDLink {
		return protocol.NewPreconditionError("set input source",
			fmt.Sprintf("unknown input type %d", src.Type))
	}
	if src.BitDepth > InputBits8 {
		return protocol.NewPreconditionError("set input source",
			fmt.Sprintf("unknown input bit depth %d", src.BitDepth))
	}
	return d.Set(OpInputSource, src.Byte())
}

// requireInput checks that the configured input source is want
func (d *Driver) requireInput(op string, want InputType) error {
	src, err := d.GetInputSource()
	if err != nil {
		return err
	}
	if src.Type != want {
		return protocol.NewPreconditionError(op,
			fmt.Sprintf("input source is %s, need %s", src.Type, want))
	}
	return nil
}

// GetTestPattern reads the selected test pattern. The input source must be
// the test pattern generator.
func (d *Driver) GetTestPattern() (TestPattern, error) {
	if err := d.requireInput("get test pattern", InputTestPattern); err != nil {
		return 0, err
	}
	b, err := d.getByte(OpTestPattern)
	return TestPattern(b), err
}

// SetTestPattern selects a test pattern. The input source must be the test
// pattern generator.
func (d *Driver) SetTestPattern(p TestPattern) error {
	if p > TestStepBars {
		return protocol.NewPreconditionError("set test pattern",
			fmt.Sprintf("unknown test pattern %d", p))
	}
	if err := d.requireInput("set test pattern", InputTestPattern); err != nil {
		return err
	}
	return d.Set(OpTestPattern, uint8(p))
}

// GetFlashImage reads the displayed flash image index. The input source must
// be flash.
func (d *Driver) GetFlashImage() (uint8, error) {
	if err := d.requireInput("get flash image", InputFlash); err != nil {
		return 0, err
	}
	return d.getByte(OpFlashImage)
}

// SetFlashImage displays a flash image. The input source must be flash and
// index must be below the number of images in flash.
func (d *Driver) SetFlashImage(index uint8) error {
	if err := d.requireInput("set flash image", InputFlash); err != nil {
		return err
	}
	n, err := d.GetNumImagesInFlash()
	if err != nil {
		return err
	}
	if index >= n {
		return protocol.NewPreconditionError("set flash image",
			fmt.Sprintf("image %d out of range (%d images in flash)", index, n))
	}
	return d.Set(OpFlashImage, index)
}
