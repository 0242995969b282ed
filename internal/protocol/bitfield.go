package protocol

import "fmt"

// Field describes a bit range inside a packed hardware register.
// Offset counts from the least significant bit.
type Field struct {
	Name   string
	Offset uint
	Width  uint
}

// mask returns the unshifted mask for the field width
func (f Field) mask() uint32 {
	return (uint32(1) << f.Width) - 1
}

// Get extracts the field value from a register value
func (f Field) Get(reg uint32) uint32 {
	return (reg >> f.Offset) & f.mask()
}

// Bool reports whether a one-bit field is set
func (f Field) Bool(reg uint32) bool {
	return f.Get(reg) != 0
}

// Set returns reg with the field replaced by value.
// Bits of value beyond the field width are discarded.
func (f Field) Set(reg uint32, value uint32) uint32 {
	reg &^= f.mask() << f.Offset
	return reg | (value&f.mask())<<f.Offset
}

// SetBool sets a one-bit field
func (f Field) SetBool(reg uint32, value bool) uint32 {
	if value {
		return f.Set(reg, 1)
	}
	return f.Set(reg, 0)
}

// Fits reports whether value can be stored in the field without truncation
func (f Field) Fits(value uint32) bool {
	return value <= f.mask()
}

// String returns a debug representation of the field
func (f Field) String() string {
	if f.Width == 1 {
		return fmt.Sprintf("%s[%d]", f.Name, f.Offset)
	}
	return fmt.Sprintf("%s[%d:%d]", f.Name, f.Offset+f.Width-1, f.Offset)
}

// Register is an ordered set of field descriptors for one register
type Register struct {
	Name   string
	Fields []Field
}

// Decode returns every named field of the register value
func (r Register) Decode(value uint32) map[string]uint32 {
	out := make(map[string]uint32, len(r.Fields))
	for _, f := range r.Fields {
		out[f.Name] = f.Get(value)
	}
	return out
}

// Field looks up a field descriptor by name
func (r Register) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
