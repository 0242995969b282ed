package emulator

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lightcrafter/dlpc350/internal/dlpc350"
	"github.com/lightcrafter/dlpc350/internal/pattern"
	"github.com/lightcrafter/dlpc350/internal/protocol"
	"github.com/lightcrafter/dlpc350/internal/transport"
)

// replyQueueSize bounds replies waiting to be received
const replyQueueSize = 16

// lag holds the previous value of a register until enough reads passed
type lag struct {
	value     byte
	remaining int
}

// Configuration is the last configure command accepted by the device
type Configuration struct {
	Patterns         int
	Repeat           bool
	TriggerOutPulses int
	Images           int
}

// Device is a simulated controller
type Device struct {
	mu        sync.Mutex
	connected bool
	log       *zap.Logger

	// frame reassembly
	pending []byte
	need    int

	replies chan []byte

	// register file, one byte per single-byte register
	regs       map[protocol.Opcode]byte
	ledCurrent [3]byte
	period     pattern.Period
	version    dlpc350.Version
	tag        string
	lags       map[protocol.Opcode]*lag

	// mailbox
	mailboxTarget uint8
	cursor        int
	patternLUT    [pattern.MaxPatterns * pattern.LUTEntrySize]byte
	imageLUT      [pattern.MaxImages]byte
	patternBytes  int
	imageBytes    int
	config        Configuration
	configured    bool

	// hooks
	settleReads int
	failOps     map[protocol.Opcode]int
	dropOps     map[protocol.Opcode]int
	frames      []protocol.Frame
	sendCount   int
}

// New creates a device in the power-on state: video mode, parallel 24-bit
// input, LEDs on under sequencer control, one image in flash
func New(opts ...Option) *Device {
	d := &Device{
		log:     zap.NewNop(),
		replies: make(chan []byte, replyQueueSize),
		regs: map[protocol.Opcode]byte{
			dlpc350.OpHardwareStatus:     0x01,
			dlpc350.OpSystemStatus:       0x01,
			dlpc350.OpMainStatus:         0x00,
			dlpc350.OpPowerMode:          byte(dlpc350.PowerNormal),
			dlpc350.OpDisplayMode:        byte(dlpc350.DisplayVideo),
			dlpc350.OpPatternDisplayMode: byte(pattern.DisplayModeInternal),
			dlpc350.OpPatternTriggerMode: byte(dlpc350.TriggerMode1),
			dlpc350.OpSequenceRunState:   byte(dlpc350.RunStop),
			dlpc350.OpLEDEnable:          dlpc350.LEDEnable{Auto: true, Red: true, Green: true, Blue: true}.Byte(),
			dlpc350.OpInputSource:        dlpc350.InputSource{Type: dlpc350.InputParallel, BitDepth: dlpc350.InputBits24}.Byte(),
			dlpc350.OpTestPattern:        byte(dlpc350.TestSolidField),
			dlpc350.OpFlashImage:         0,
			dlpc350.OpNumImagesInFlash:   1,
		},
		ledCurrent: [3]byte{255 - 104, 255 - 135, 255 - 130},
		period:     pattern.Period{Exposure: 16666, Frame: 16667 + pattern.MinBlankTime},
		version: dlpc350.Version{
			App:            dlpc350.ComponentVersion{Major: 3, Minor: 0, Patch: 0},
			API:            dlpc350.ComponentVersion{Major: 1, Minor: 0, Patch: 0},
			SoftwareConfig: dlpc350.ComponentVersion{Major: 1, Minor: 0, Patch: 0},
			SequenceConfig: dlpc350.ComponentVersion{Major: 1, Minor: 0, Patch: 0},
		},
		tag:     "DLPC350 emulator",
		lags:    make(map[protocol.Opcode]*lag),
		failOps: make(map[protocol.Opcode]int),
		dropOps: make(map[protocol.Opcode]int),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open connects the device
func (d *Device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected = true
	return nil
}

// Close disconnects the device and drops queued replies and partial frames
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected = false
	d.pending = nil
	d.need = 0
	for {
		select {
		case <-d.replies:
		default:
			return nil
		}
	}
}

// IsConnected reports whether the device is open
func (d *Device) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected
}

// Send accepts one packet. A frame is executed once all of its packets
// have arrived.
func (d *Device) Send(packet []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return 0, transport.ErrNotConnected
	}
	if len(packet) != transport.PacketSize {
		return 0, transport.ErrPacketSize
	}
	d.sendCount++

	if d.need == 0 {
		hdr, err := protocol.Decode(packet)
		if err != nil {
			return 0, err
		}
		d.need = protocol.HeaderSize + int(hdr.Length)
		d.pending = d.pending[:0]
	}
	d.pending = append(d.pending, packet...)
	if len(d.pending) < d.need {
		return len(packet), nil
	}

	frame, err := protocol.Decode(d.pending[:d.need])
	d.need = 0
	if err != nil {
		return 0, err
	}
	d.execute(frame)
	return len(packet), nil
}

// Receive returns the next reply packet
func (d *Device) Receive(timeout time.Duration) ([]byte, error) {
	if !d.IsConnected() {
		return nil, transport.ErrNotConnected
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case reply := <-d.replies:
		return reply, nil
	case <-timer.C:
		return nil, transport.ErrTimeout
	}
}

// execute runs one frame and queues its reply. Called with mu held.
func (d *Device) execute(f *protocol.Frame) {
	op := f.Opcode()
	d.frames = append(d.frames, *f)

	if n, ok := d.dropOps[op]; ok {
		d.consumeHook(d.dropOps, op, n)
		d.log.Debug("dropping reply", zap.Stringer("opcode", op))
		return
	}
	if n, ok := d.failOps[op]; ok {
		d.consumeHook(d.failOps, op, n)
		d.log.Debug("rejecting frame", zap.Stringer("opcode", op))
		d.reply(f, nil, true)
		return
	}

	var (
		data []byte
		err  error
	)
	if f.Flags.Direction == protocol.Read {
		data, err = d.read(op)
	} else {
		err = d.write(op, f.Params())
	}
	if err != nil {
		d.log.Debug("command failed", zap.Stringer("opcode", op), zap.Error(err))
	}
	d.reply(f, data, err != nil)
}

func (d *Device) consumeHook(hooks map[protocol.Opcode]int, op protocol.Opcode, n int) {
	switch {
	case n < 0:
	case n <= 1:
		delete(hooks, op)
	default:
		hooks[op] = n - 1
	}
}

// reply queues the reply packet for f when one was requested
func (d *Device) reply(f *protocol.Frame, data []byte, failed bool) {
	if !f.Flags.Reply {
		return
	}
	if len(data) > protocol.PacketCapacity {
		data = data[:protocol.PacketCapacity]
	}
	r := &protocol.Frame{
		Flags: protocol.Flags{
			Direction: f.Flags.Direction,
			Error:     failed,
			Reply:     true,
		},
		Length:  uint16(len(data)),
		Payload: data,
	}
	packet := make([]byte, protocol.MaxPacketSize)
	copy(packet, r.Marshal())

	select {
	case d.replies <- packet:
	default:
		d.log.Warn("reply queue full, dropping reply", zap.Stringer("opcode", f.Opcode()))
	}
}

// read answers a read command. Called with mu held.
func (d *Device) read(op protocol.Opcode) ([]byte, error) {
	switch op {
	case dlpc350.OpVersion:
		return d.version.Bytes(), nil
	case dlpc350.OpFirmwareTag:
		return append([]byte(d.tag), 0), nil
	case dlpc350.OpLEDCurrent:
		return d.ledCurrent[:], nil
	case dlpc350.OpPatternPeriod:
		return d.period.Bytes(), nil
	case dlpc350.OpValidate:
		return []byte{d.validate().Raw}, nil
	case dlpc350.OpMainStatus:
		return []byte{d.mainStatus()}, nil
	case dlpc350.OpTestPattern:
		if dlpc350.ParseInputSource(d.regs[dlpc350.OpInputSource]).Type != dlpc350.InputTestPattern {
			return nil, fmt.Errorf("test pattern generator not selected")
		}
	case dlpc350.OpFlashImage:
		if dlpc350.ParseInputSource(d.regs[dlpc350.OpInputSource]).Type != dlpc350.InputFlash {
			return nil, fmt.Errorf("flash input not selected")
		}
	}

	if l, ok := d.lags[op]; ok {
		l.remaining--
		if l.remaining <= 0 {
			delete(d.lags, op)
		}
		return []byte{l.value}, nil
	}
	v, ok := d.regs[op]
	if !ok {
		return nil, fmt.Errorf("unknown read opcode %s", op)
	}
	return []byte{v}, nil
}

// mainStatus derives the main status register. Called with mu held.
func (d *Device) mainStatus() byte {
	var v uint32
	running, _ := dlpc350.MainStatusRegister.Field("sequence_running")
	v = running.SetBool(v, dlpc350.RunState(d.regs[dlpc350.OpSequenceRunState]) == dlpc350.RunStart)
	parked, _ := dlpc350.MainStatusRegister.Field("dmd_parked")
	v = parked.SetBool(v, dlpc350.PowerMode(d.regs[dlpc350.OpPowerMode]) == dlpc350.PowerStandby)
	return byte(v)
}

// setLagged stores a register whose read-back trails the write by the
// configured number of reads. Called with mu held.
func (d *Device) setLagged(op protocol.Opcode, value byte) {
	old := d.regs[op]
	d.regs[op] = value
	if d.settleReads > 0 && old != value {
		d.lags[op] = &lag{value: old, remaining: d.settleReads}
	}
}

func needParams(op protocol.Opcode, params []byte, n int) error {
	if len(params) < n {
		return fmt.Errorf("%s needs %d parameter bytes, got %d", op, n, len(params))
	}
	return nil
}

// write applies a write command. Called with mu held.
func (d *Device) write(op protocol.Opcode, params []byte) error {
	switch op {
	case dlpc350.OpMailboxControl:
		return d.mailboxControl(params)
	case dlpc350.OpMailboxAddress:
		return d.mailboxAddress(params)
	case dlpc350.OpMailboxData:
		return d.mailboxData(params)
	case dlpc350.OpConfigureSequence:
		return d.configure(params)
	case dlpc350.OpLEDCurrent:
		if err := needParams(op, params, 3); err != nil {
			return err
		}
		copy(d.ledCurrent[:], params)
		return nil
	case dlpc350.OpPatternPeriod:
		p, err := pattern.ParsePeriod(params)
		if err != nil {
			return err
		}
		d.period = p
		return nil
	}

	if err := needParams(op, params, 1); err != nil {
		return err
	}
	v := params[0]

	switch op {
	case dlpc350.OpDisplayMode, dlpc350.OpSequenceRunState:
		if op == dlpc350.OpSequenceRunState && dlpc350.RunState(v) == dlpc350.RunStart {
			if dlpc350.DisplayMode(d.regs[dlpc350.OpDisplayMode]) != dlpc350.DisplayPattern {
				return fmt.Errorf("cannot start sequence outside pattern mode")
			}
			if !d.validate().IsValid() {
				return fmt.Errorf("cannot start invalid sequence")
			}
		}
		d.setLagged(op, v)
	case dlpc350.OpTestPattern:
		if dlpc350.ParseInputSource(d.regs[dlpc350.OpInputSource]).Type != dlpc350.InputTestPattern {
			return fmt.Errorf("test pattern generator not selected")
		}
		d.regs[op] = v
	case dlpc350.OpFlashImage:
		if v >= d.regs[dlpc350.OpNumImagesInFlash] {
			return fmt.Errorf("flash image %d out of range", v)
		}
		d.regs[op] = v
	case dlpc350.OpPowerMode, dlpc350.OpPatternDisplayMode, dlpc350.OpPatternTriggerMode,
		dlpc350.OpLEDEnable, dlpc350.OpInputSource:
		d.regs[op] = v
	default:
		return fmt.Errorf("unknown write opcode %s", op)
	}
	return nil
}

// mailboxControl opens (one parameter) or closes (no parameter) the mailbox
func (d *Device) mailboxControl(params []byte) error {
	if len(params) == 0 || params[0] == 0 {
		d.mailboxTarget = 0
		d.cursor = 0
		return nil
	}
	if d.mailboxTarget != 0 {
		return fmt.Errorf("mailbox %d already open", d.mailboxTarget)
	}
	switch params[0] {
	case dlpc350.MailboxImageLUT, dlpc350.MailboxPatternLUT:
		d.mailboxTarget = params[0]
		d.cursor = 0
		return nil
	default:
		return fmt.Errorf("unknown mailbox %d", params[0])
	}
}

func (d *Device) mailboxAddress(params []byte) error {
	if err := needParams(dlpc350.OpMailboxAddress, params, 1); err != nil {
		return err
	}
	if d.mailboxTarget == 0 {
		return fmt.Errorf("mailbox not open")
	}
	if params[0] > dlpc350.MaxMailboxAddress {
		return fmt.Errorf("mailbox address %d out of range", params[0])
	}
	d.cursor = int(params[0])
	return nil
}

func (d *Device) mailboxData(data []byte) error {
	switch d.mailboxTarget {
	case dlpc350.MailboxPatternLUT:
		off := d.cursor * pattern.LUTEntrySize
		if off+len(data) > len(d.patternLUT) {
			return fmt.Errorf("pattern LUT overflow")
		}
		copy(d.patternLUT[off:], data)
		d.patternBytes = off + len(data)
		d.cursor += len(data) / pattern.LUTEntrySize
	case dlpc350.MailboxImageLUT:
		if d.cursor+len(data) > len(d.imageLUT) {
			return fmt.Errorf("image LUT overflow")
		}
		copy(d.imageLUT[d.cursor:], data)
		d.imageBytes = d.cursor + len(data)
		d.cursor += len(data)
	default:
		return fmt.Errorf("mailbox not open")
	}
	return nil
}

func (d *Device) configure(params []byte) error {
	if err := needParams(dlpc350.OpConfigureSequence, params, 4); err != nil {
		return err
	}
	if dlpc350.RunState(d.regs[dlpc350.OpSequenceRunState]) != dlpc350.RunStop {
		return fmt.Errorf("cannot configure a running sequence")
	}
	d.config = Configuration{
		Patterns:         int(params[0]) + 1,
		Repeat:           params[1] != 0,
		TriggerOutPulses: int(params[2]) + 1,
		Images:           int(params[3]) + 1,
	}
	d.configured = true
	d.patternBytes = 0
	d.imageBytes = 0
	return nil
}

// validate computes the validation register. Called with mu held.
func (d *Device) validate() dlpc350.Validation {
	var v uint32
	set := func(name string) {
		f, _ := dlpc350.ValidationRegister.Field(name)
		v = f.SetBool(v, true)
	}

	if d.period.Validate() != nil {
		set("invalid_period")
	}

	entries := d.uploadedEntries()
	if !d.configured ||
		len(entries) != d.config.Patterns ||
		d.imageBytes != d.config.Images {
		set("invalid_pattern")
	}

	for _, e := range entries {
		if minExposure, ok := pattern.MinimumExposureFor(e.BitDepth); !ok || d.period.Exposure < minExposure {
			set("invalid_period")
			break
		}
	}
	if n := len(entries); n > 0 && !entries[n-1].InsertBlack {
		set("missing_black_vector")
	}

	return dlpc350.ParseValidation(uint8(v))
}

// uploadedEntries decodes the pattern LUT contents. Called with mu held.
func (d *Device) uploadedEntries() []pattern.Entry {
	n := d.patternBytes / pattern.LUTEntrySize
	out := make([]pattern.Entry, 0, n)
	for i := 0; i < n; i++ {
		b := d.patternLUT[i*pattern.LUTEntrySize:]
		v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
		out = append(out, pattern.Unpack(v, 0))
	}
	return out
}
