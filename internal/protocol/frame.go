package protocol

import (
	"encoding/binary"
	"fmt"
)

const (
	// MaxPacketSize is the size of one USB HID report (without report id)
	MaxPacketSize = 64

	// HeaderSize is flags(1) + sequence(1) + length(2)
	HeaderSize = 4

	// PacketCapacity is the payload room left in the first packet of a frame
	PacketCapacity = MaxPacketSize - HeaderSize

	// MaxFrameData is the largest payload a single transaction may declare
	MaxFrameData = 512

	// OpcodeSize is the size of the CMD3/CMD2 pair
	OpcodeSize = 2
)

// Direction is the read/write bit of the flag byte
type Direction uint8

const (
	Write Direction = 0
	Read  Direction = 1
)

// String returns "read" or "write"
func (d Direction) String() string {
	if d == Read {
		return "read"
	}
	return "write"
}

// Opcode packs CMD2 in the high byte and CMD3 in the low byte (e.g. 0x1A0A)
type Opcode uint16

// CMD2 returns the command group byte
func (o Opcode) CMD2() uint8 { return uint8(o >> 8) }

// CMD3 returns the command byte
func (o Opcode) CMD3() uint8 { return uint8(o) }

// String returns the opcode as CMD2:CMD3
func (o Opcode) String() string {
	return fmt.Sprintf("0x%02X:0x%02X", o.CMD2(), o.CMD3())
}

// Flag byte layout
var (
	FieldDestination = Field{Name: "destination", Offset: 0, Width: 3}
	FieldReserved    = Field{Name: "reserved", Offset: 3, Width: 2}
	FieldError       = Field{Name: "error", Offset: 5, Width: 1}
	FieldReply       = Field{Name: "reply", Offset: 6, Width: 1}
	FieldDirection   = Field{Name: "rw", Offset: 7, Width: 1}
)

// Flags is the decoded flag byte
type Flags struct {
	Destination uint8
	Reserved    uint8
	Error       bool
	Reply       bool
	Direction   Direction
}

// Byte packs the flags into the wire representation
func (f Flags) Byte() byte {
	var v uint32
	v = FieldDestination.Set(v, uint32(f.Destination))
	v = FieldReserved.Set(v, uint32(f.Reserved))
	v = FieldError.SetBool(v, f.Error)
	v = FieldReply.SetBool(v, f.Reply)
	v = FieldDirection.Set(v, uint32(f.Direction))
	return byte(v)
}

// ParseFlags decodes a flag byte
func ParseFlags(b byte) Flags {
	v := uint32(b)
	return Flags{
		Destination: uint8(FieldDestination.Get(v)),
		Reserved:    uint8(FieldReserved.Get(v)),
		Error:       FieldError.Bool(v),
		Reply:       FieldReply.Bool(v),
		Direction:   Direction(FieldDirection.Get(v)),
	}
}

// Frame is one protocol transaction
type Frame struct {
	Flags    Flags
	Sequence uint8  // unused by the controller, always 0
	Length   uint16 // declared payload length
	Payload  []byte // opcode + parameters for commands, raw data for replies
}

// FrameOption adjusts a frame built by Encode
type FrameOption func(*Frame)

// NoReply marks a write as fire-and-forget
func NoReply() FrameOption {
	return func(f *Frame) {
		f.Flags.Reply = false
	}
}

// Encode builds a command frame. The reply bit is set unless NoReply is given.
func Encode(dir Direction, op Opcode, params []byte, opts ...FrameOption) *Frame {
	payload := make([]byte, OpcodeSize, OpcodeSize+len(params))
	payload[0] = op.CMD3()
	payload[1] = op.CMD2()
	payload = append(payload, params...)

	f := &Frame{
		Flags: Flags{
			Reply:     true,
			Direction: dir,
		},
		Length:  uint16(len(payload)),
		Payload: payload,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Append adds raw bytes to the payload and grows the declared length
func (f *Frame) Append(data ...byte) {
	f.Payload = append(f.Payload, data...)
	f.Length = uint16(len(f.Payload))
}

// Opcode returns the opcode of a command frame
func (f *Frame) Opcode() Opcode {
	if len(f.Payload) < OpcodeSize {
		return 0
	}
	return Opcode(binary.LittleEndian.Uint16(f.Payload[0:2]))
}

// Params returns the parameters following the opcode
func (f *Frame) Params() []byte {
	if len(f.Payload) < OpcodeSize {
		return nil
	}
	return f.Payload[OpcodeSize:]
}

// Validate checks that the declared length matches the payload and fits a
// transaction
func (f *Frame) Validate() error {
	if int(f.Length) != len(f.Payload) {
		return NewMalformedError("validate frame",
			fmt.Sprintf("declared length %d does not match payload length %d", f.Length, len(f.Payload)))
	}
	if len(f.Payload) > MaxFrameData {
		return NewCapacityError("validate frame",
			fmt.Sprintf("payload too large: %d bytes (max %d)", len(f.Payload), MaxFrameData))
	}
	return nil
}

// Marshal serializes the header and the full payload
func (f *Frame) Marshal() []byte {
	out := make([]byte, HeaderSize+len(f.Payload))
	out[0] = f.Flags.Byte()
	out[1] = f.Sequence
	binary.LittleEndian.PutUint16(out[2:4], f.Length)
	copy(out[HeaderSize:], f.Payload)
	return out
}

// Decode parses a frame from raw bytes. The payload is truncated to the bytes
// present, so decoding a single reply packet yields at most PacketCapacity
// bytes even when a larger length is declared.
func Decode(data []byte) (*Frame, error) {
	if len(data) < HeaderSize {
		return nil, NewMalformedError("decode frame",
			fmt.Sprintf("packet too short: %d bytes (minimum %d)", len(data), HeaderSize))
	}

	f := &Frame{
		Flags:    ParseFlags(data[0]),
		Sequence: data[1],
		Length:   binary.LittleEndian.Uint16(data[2:4]),
	}

	n := int(f.Length)
	if avail := len(data) - HeaderSize; n > avail {
		n = avail
	}
	f.Payload = make([]byte, n)
	copy(f.Payload, data[HeaderSize:HeaderSize+n])

	return f, nil
}

// Packetize cuts a serialized frame into zero-padded MaxPacketSize packets
func Packetize(data []byte) [][]byte {
	count := (len(data) + MaxPacketSize - 1) / MaxPacketSize
	if count == 0 {
		count = 1
	}
	packets := make([][]byte, 0, count)
	for off := 0; off < len(data) || len(packets) == 0; off += MaxPacketSize {
		packet := make([]byte, MaxPacketSize)
		if off < len(data) {
			copy(packet, data[off:])
		}
		packets = append(packets, packet)
	}
	return packets
}

// PacketCount returns how many packets a payload of n bytes occupies
func PacketCount(n int) int {
	return (n + HeaderSize + MaxPacketSize - 1) / MaxPacketSize
}

// String returns a debug representation of the frame
func (f *Frame) String() string {
	if len(f.Payload) >= OpcodeSize {
		return fmt.Sprintf("Frame{rw=%s, reply=%v, error=%v, length=%d, opcode=%s}",
			f.Flags.Direction, f.Flags.Reply, f.Flags.Error, f.Length, f.Opcode())
	}
	return fmt.Sprintf("Frame{rw=%s, reply=%v, error=%v, length=%d}",
		f.Flags.Direction, f.Flags.Reply, f.Flags.Error, f.Length)
}
