package pattern

import (
	"fmt"

	"github.com/lightcrafter/dlpc350/internal/protocol"
)

const (
	// MaxPatterns is the capacity of the controller's pattern LUT
	MaxPatterns = 128

	// MaxImages is the capacity of the image LUT (one packet payload of indices)
	MaxImages = protocol.PacketCapacity

	// MinBitDepth and MaxBitDepth bound the bit depth of an entry
	MinBitDepth = 1
	MaxBitDepth = 8
)

// forbiddenStartBits lists start positions the controller cannot address
// for bit depths whose planes do not tile a color channel
var forbiddenStartBits = map[uint8][]BitIndex{
	5: {G0, G6, R4, B2},
	7: {G0, R0, B0},
}

// Pattern describes an entry to add to a sequence
type Pattern struct {
	Color       Color
	Trigger     TriggerType
	BitDepth    uint8
	ImageIndex  uint8
	StartBit    BitIndex
	Invert      bool
	InsertBlack bool
}

// NewPattern returns a pattern with the controller defaults
// (no inversion, black inserted after the exposure)
func NewPattern(color Color, trigger TriggerType, bitDepth uint8, imageIndex uint8, startBit BitIndex) Pattern {
	return Pattern{
		Color:       color,
		Trigger:     trigger,
		BitDepth:    bitDepth,
		ImageIndex:  imageIndex,
		StartBit:    startBit,
		InsertBlack: true,
	}
}

// ValidateStartBit checks the bit depth and start position of a pattern
func ValidateStartBit(bitDepth uint8, startBit BitIndex) error {
	if bitDepth < MinBitDepth || bitDepth > MaxBitDepth {
		return protocol.NewPreconditionError("add pattern",
			fmt.Sprintf("bit depth must be %d-%d, got %d", MinBitDepth, MaxBitDepth, bitDepth))
	}
	if startBit > MaxBitIndex {
		return protocol.NewPreconditionError("add pattern",
			fmt.Sprintf("start bit must be G0-B7, got %d", startBit))
	}
	for _, bad := range forbiddenStartBits[bitDepth] {
		if startBit == bad {
			return protocol.NewPreconditionError("add pattern",
				fmt.Sprintf("start bit %s is not valid for bit depth %d", startBit, bitDepth))
		}
	}
	return nil
}

// Sequence is an ordered list of pattern entries and the derived image list.
// It is not safe for concurrent use.
type Sequence struct {
	entries []Entry
	images  []uint8
}

// NewSequence creates an empty sequence
func NewSequence() *Sequence {
	return &Sequence{}
}

// Add appends a pattern. mode is the pattern display mode currently
// configured on the controller: with an external source the trigger type is
// derived from the buffer swap flag.
func (s *Sequence) Add(mode DisplayMode, p Pattern) (Entry, error) {
	if err := ValidateStartBit(p.BitDepth, p.StartBit); err != nil {
		return Entry{}, err
	}
	if len(s.entries) == 0 && mode == DisplayModeInternal && p.Trigger == TriggerNone {
		return Entry{}, protocol.NewPreconditionError("add pattern",
			"first pattern of an internal sequence needs a trigger")
	}

	e := Entry{
		Color:         p.Color,
		TriggerType:   p.Trigger,
		BitDepth:      p.BitDepth,
		PatternNumber: uint8(p.StartBit) / p.BitDepth,
		Invert:        p.Invert,
		InsertBlack:   p.InsertBlack,
		ImageIndex:    p.ImageIndex,
	}

	if mode == DisplayModeExternal {
		if s.swapsBuffer(p.ImageIndex) {
			e.TriggerType = TriggerExternalPositive
		} else {
			e.TriggerType = TriggerNone
		}
	}

	return s.AddEntry(e)
}

// AddEntry appends a prepared entry. The buffer swap flag is derived from
// the previous entry; every other field is kept as given.
func (s *Sequence) AddEntry(e Entry) (Entry, error) {
	if len(s.entries) >= MaxPatterns {
		return Entry{}, protocol.NewCapacityError("add pattern",
			fmt.Sprintf("sequence already holds %d patterns", MaxPatterns))
	}
	if e.BitDepth < MinBitDepth || e.BitDepth > MaxBitDepth {
		return Entry{}, protocol.NewPreconditionError("add pattern",
			fmt.Sprintf("bit depth must be %d-%d, got %d", MinBitDepth, MaxBitDepth, e.BitDepth))
	}
	if !FieldPatternNumber.Fits(uint32(e.PatternNumber)) {
		return Entry{}, protocol.NewPreconditionError("add pattern",
			fmt.Sprintf("pattern number %d out of range", e.PatternNumber))
	}

	e.BufferSwap = s.swapsBuffer(e.ImageIndex)
	if e.BufferSwap && len(s.images) >= MaxImages {
		return Entry{}, protocol.NewCapacityError("add pattern",
			fmt.Sprintf("image list already holds %d images", MaxImages))
	}

	s.entries = append(s.entries, e)
	if e.BufferSwap {
		s.images = append(s.images, e.ImageIndex)
	}
	return e, nil
}

// swapsBuffer reports whether an entry for imageIndex needs a new image page
func (s *Sequence) swapsBuffer(imageIndex uint8) bool {
	if len(s.entries) == 0 {
		return true
	}
	return s.entries[len(s.entries)-1].ImageIndex != imageIndex
}

// Clear empties both the pattern list and the image list
func (s *Sequence) Clear() {
	s.entries = s.entries[:0]
	s.images = s.images[:0]
}

// Len returns the number of pattern entries
func (s *Sequence) Len() int {
	return len(s.entries)
}

// ImageCount returns the number of image list entries
func (s *Sequence) ImageCount() int {
	return len(s.images)
}

// Entry returns the entry at index i
func (s *Sequence) Entry(i int) Entry {
	return s.entries[i]
}

// Last returns the most recently added entry
func (s *Sequence) Last() (Entry, bool) {
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// Entries returns a copy of the pattern entries
func (s *Sequence) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// Images returns a copy of the image list
func (s *Sequence) Images() []uint8 {
	return append([]uint8(nil), s.images...)
}

// PatternLUT returns the pattern LUT upload data, three bytes per entry
func (s *Sequence) PatternLUT() []byte {
	out := make([]byte, 0, len(s.entries)*LUTEntrySize)
	for _, e := range s.entries {
		b := e.LUTBytes()
		out = append(out, b[:]...)
	}
	return out
}
