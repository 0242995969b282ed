package pattern

import (
	"fmt"

	"github.com/lightcrafter/dlpc350/internal/protocol"
)

// MinimumExposure is the shortest exposure in microseconds the controller
// can display for bit depths 1 through 8 (index 0 is bit depth 1)
var MinimumExposure = [MaxBitDepth]uint16{235, 700, 1570, 1700, 2000, 2500, 4500, 8333}

// MinimumExposureFor returns the minimum exposure for a bit depth
func MinimumExposureFor(bitDepth uint8) (uint16, bool) {
	if bitDepth < MinBitDepth || bitDepth > MaxBitDepth {
		return 0, false
	}
	return MinimumExposure[bitDepth-1], true
}

// Group is a run of entries sharing one exposure window. A group starts at
// an entry with TriggerOutPrevious unset and extends over every following
// entry that has it set.
type Group struct {
	Start       int
	Size        int
	MaxBitDepth uint8
}

// Groups partitions entries into continuation groups
func Groups(entries []Entry) []Group {
	var groups []Group
	for i, e := range entries {
		if i == 0 || !e.TriggerOutPrevious {
			groups = append(groups, Group{Start: i})
		}
		g := &groups[len(groups)-1]
		g.Size++
		if e.BitDepth > g.MaxBitDepth {
			g.MaxBitDepth = e.BitDepth
		}
	}
	return groups
}

// Check verifies that every continuation group of the sequence can share the
// exposure time. Groups of a single entry are not constrained.
func Check(seq *Sequence, period Period) error {
	for _, g := range Groups(seq.entries) {
		if g.Size <= 1 {
			continue
		}
		minExposure, ok := MinimumExposureFor(g.MaxBitDepth)
		if !ok {
			return protocol.NewPreconditionError("check pattern sequence",
				fmt.Sprintf("entry %d has invalid bit depth %d", g.Start, g.MaxBitDepth))
		}
		share := int(period.Exposure) / g.Size
		if share < int(minExposure) {
			return protocol.NewPreconditionError("check pattern sequence",
				fmt.Sprintf("group at entry %d: %d patterns need %d us each at bit depth %d, exposure allows %d us",
					g.Start, g.Size, minExposure, g.MaxBitDepth, share))
		}
	}
	return nil
}
