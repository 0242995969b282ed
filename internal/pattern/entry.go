package pattern

import (
	"fmt"

	"github.com/lightcrafter/dlpc350/internal/protocol"
)

// Pattern LUT entry layout
var (
	FieldTriggerType        = protocol.Field{Name: "trigger_type", Offset: 0, Width: 2}
	FieldPatternNumber      = protocol.Field{Name: "pattern_number", Offset: 2, Width: 6}
	FieldBitDepth           = protocol.Field{Name: "bit_depth", Offset: 8, Width: 4}
	FieldColor              = protocol.Field{Name: "color", Offset: 12, Width: 4}
	FieldInvert             = protocol.Field{Name: "invert", Offset: 16, Width: 1}
	FieldInsertBlack        = protocol.Field{Name: "insert_black", Offset: 17, Width: 1}
	FieldBufferSwap         = protocol.Field{Name: "buffer_swap", Offset: 18, Width: 1}
	FieldTriggerOutPrevious = protocol.Field{Name: "trigger_out_previous", Offset: 19, Width: 1}

	EntryRegister = protocol.Register{
		Name: "pattern_entry",
		Fields: []protocol.Field{
			FieldTriggerType, FieldPatternNumber, FieldBitDepth, FieldColor,
			FieldInvert, FieldInsertBlack, FieldBufferSwap, FieldTriggerOutPrevious,
		},
	}
)

// LUTEntrySize is the number of bytes uploaded per pattern entry
const LUTEntrySize = 3

// Entry is one scheduled exposure in a sequence. Entries are values; the
// sequence never hands out references to its stored entries.
type Entry struct {
	Color              Color
	TriggerType        TriggerType
	BitDepth           uint8
	PatternNumber      uint8
	Invert             bool
	InsertBlack        bool
	BufferSwap         bool
	TriggerOutPrevious bool // exposure continues the previous entry's trigger out
	ImageIndex         uint8
}

// Pack returns the register value of the entry
func (e Entry) Pack() uint32 {
	var v uint32
	v = FieldTriggerType.Set(v, uint32(e.TriggerType))
	v = FieldPatternNumber.Set(v, uint32(e.PatternNumber))
	v = FieldBitDepth.Set(v, uint32(e.BitDepth))
	v = FieldColor.Set(v, uint32(e.Color))
	v = FieldInvert.SetBool(v, e.Invert)
	v = FieldInsertBlack.SetBool(v, e.InsertBlack)
	v = FieldBufferSwap.SetBool(v, e.BufferSwap)
	v = FieldTriggerOutPrevious.SetBool(v, e.TriggerOutPrevious)
	return v
}

// LUTBytes returns the low 24 bits of the packed entry, little-endian
func (e Entry) LUTBytes() [LUTEntrySize]byte {
	v := e.Pack()
	return [LUTEntrySize]byte{byte(v), byte(v >> 8), byte(v >> 16)}
}

// Unpack decodes a packed entry. The image index is not part of the
// register and must be supplied separately.
func Unpack(v uint32, imageIndex uint8) Entry {
	return Entry{
		TriggerType:        TriggerType(FieldTriggerType.Get(v)),
		PatternNumber:      uint8(FieldPatternNumber.Get(v)),
		BitDepth:           uint8(FieldBitDepth.Get(v)),
		Color:              Color(FieldColor.Get(v)),
		Invert:             FieldInvert.Bool(v),
		InsertBlack:        FieldInsertBlack.Bool(v),
		BufferSwap:         FieldBufferSwap.Bool(v),
		TriggerOutPrevious: FieldTriggerOutPrevious.Bool(v),
		ImageIndex:         imageIndex,
	}
}

// String returns a compact description of the entry
func (e Entry) String() string {
	return fmt.Sprintf("Entry{image=%d, pattern=%d, depth=%d, color=%s, trigger=%s, swap=%v}",
		e.ImageIndex, e.PatternNumber, e.BitDepth, e.Color, e.TriggerType, e.BufferSwap)
}
