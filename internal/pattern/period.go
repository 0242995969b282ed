package pattern

import (
	"encoding/binary"
	"fmt"

	"github.com/lightcrafter/dlpc350/internal/protocol"
)

// MinBlankTime is the smallest gap the controller needs between the end of
// an exposure and the end of its frame, in microseconds. The gap must be
// strictly greater than this value.
const MinBlankTime = 230

// Period is the pattern exposure and frame duration in microseconds
type Period struct {
	Exposure uint16
	Frame    uint16
}

// Validate checks that the exposure fits the frame with enough blanking time
func (p Period) Validate() error {
	if p.Exposure > p.Frame {
		return protocol.NewPreconditionError("set pattern period",
			fmt.Sprintf("exposure %d exceeds frame %d", p.Exposure, p.Frame))
	}
	if gap := int(p.Frame) - int(p.Exposure); gap <= MinBlankTime {
		return protocol.NewPreconditionError("set pattern period",
			fmt.Sprintf("frame - exposure = %d, must be greater than %d", gap, MinBlankTime))
	}
	return nil
}

// Bytes returns the wire parameters: exposure then frame, little-endian
func (p Period) Bytes() []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint16(out[0:2], p.Exposure)
	binary.LittleEndian.PutUint16(out[2:4], p.Frame)
	return out
}

// ParsePeriod decodes the wire representation of a period
func ParsePeriod(data []byte) (Period, error) {
	if len(data) < 4 {
		return Period{}, protocol.NewMalformedError("get pattern period",
			fmt.Sprintf("reply too short: %d bytes", len(data)))
	}
	return Period{
		Exposure: binary.LittleEndian.Uint16(data[0:2]),
		Frame:    binary.LittleEndian.Uint16(data[2:4]),
	}, nil
}

// String returns the period as "exposure/frame us"
func (p Period) String() string {
	return fmt.Sprintf("%d/%d us", p.Exposure, p.Frame)
}
