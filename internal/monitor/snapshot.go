package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/lightcrafter/dlpc350/internal/dlpc350"
	"github.com/lightcrafter/dlpc350/internal/pattern"
	"github.com/lightcrafter/dlpc350/internal/ui"
)

// Controller is the part of the driver the dashboard reads and drives.
// *dlpc350.Driver satisfies it.
type Controller interface {
	GetHardwareStatus() (dlpc350.HardwareStatus, error)
	GetMainStatus() (dlpc350.MainStatus, error)
	GetDisplayMode() (dlpc350.DisplayMode, error)
	GetRunState() (dlpc350.RunState, error)
	GetPatternTriggerMode() (dlpc350.TriggerMode, error)
	GetPatternPeriod() (pattern.Period, error)
	GetLEDEnable() (dlpc350.LEDEnable, error)
	GetLEDCurrent() (dlpc350.LEDCurrent, error)
	ValidatePatternSequence() (dlpc350.Validation, error)
	StartPatternSequence() error
	StopPatternSequence() error
	PausePatternSequence() error
}

// Snapshot is one poll of the controller
type Snapshot struct {
	Taken      time.Time
	Hardware   dlpc350.HardwareStatus
	Main       dlpc350.MainStatus
	Display    dlpc350.DisplayMode
	RunState   dlpc350.RunState
	Trigger    dlpc350.TriggerMode
	Period     pattern.Period
	LEDs       dlpc350.LEDEnable
	Current    dlpc350.LEDCurrent
	Validation *dlpc350.Validation // only read in pattern mode
}

// Poll reads a snapshot. The validation register is read only in pattern
// mode where it is meaningful.
func Poll(c Controller) (*Snapshot, error) {
	s := &Snapshot{Taken: time.Now()}
	var err error

	if s.Hardware, err = c.GetHardwareStatus(); err != nil {
		return nil, err
	}
	if s.Main, err = c.GetMainStatus(); err != nil {
		return nil, err
	}
	if s.Display, err = c.GetDisplayMode(); err != nil {
		return nil, err
	}
	if s.RunState, err = c.GetRunState(); err != nil {
		return nil, err
	}
	if s.Trigger, err = c.GetPatternTriggerMode(); err != nil {
		return nil, err
	}
	if s.Period, err = c.GetPatternPeriod(); err != nil {
		return nil, err
	}
	if s.LEDs, err = c.GetLEDEnable(); err != nil {
		return nil, err
	}
	if s.Current, err = c.GetLEDCurrent(); err != nil {
		return nil, err
	}

	if s.Display == dlpc350.DisplayPattern {
		v, err := c.ValidatePatternSequence()
		if err != nil {
			return nil, err
		}
		s.Validation = &v
	}
	return s, nil
}

// Panel lays the snapshot out as a status panel
func (s *Snapshot) Panel(width int) *ui.Panel {
	p := ui.NewPanel("DLPC350 Monitor").SetWidth(width)

	p.AddSection("Display").
		Add("Mode", s.Display.String()).
		Add("Sequence", s.RunState.String()).
		Add("Trigger", s.Trigger.String()).
		Add("Period", s.Period.String())

	if s.Validation != nil {
		sec := p.AddSection("Validation")
		if s.Validation.IsValid() {
			sec.Add("Sequence", ui.Flag(true, false)+" valid")
		} else {
			sec.Add("Faults", strings.Join(s.Validation.Faults(), ", "))
		}
	}

	p.AddSection("Status").
		Add("Init done", ui.Flag(s.Hardware.InitDone, false)).
		Add("Sequence error", ui.Flag(s.Hardware.SequenceError, true)).
		Add("Sequence abort", ui.Flag(s.Hardware.SequenceAbort, true)).
		Add("DMD parked", ui.Flag(s.Main.DMDParked, false)).
		Add("Sequence running", ui.Flag(s.Main.SequenceRunning, false))

	p.AddSection("Illumination").
		Add("Enabled", ledNames(s.LEDs)).
		Add("Current R/G/B", fmt.Sprintf("%d / %d / %d", s.Current.Red, s.Current.Green, s.Current.Blue))

	return p
}

func ledNames(e dlpc350.LEDEnable) string {
	var names []string
	if e.Auto {
		names = append(names, "auto")
	}
	if e.Red {
		names = append(names, "red")
	}
	if e.Green {
		names = append(names, "green")
	}
	if e.Blue {
		names = append(names, "blue")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
