package dlpc350

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lightcrafter/dlpc350/internal/protocol"
)

// poll calls check until it reports true, at most PollAttempts times with
// PollInterval between calls
func (d *Driver) poll(op string, check func() (bool, error)) error {
	attempts := d.config.PollAttempts
	for i := 0; i < attempts; i++ {
		if i > 0 && d.config.PollInterval > 0 {
			time.Sleep(d.config.PollInterval)
		}
		ok, err := check()
		if err != nil {
			return err
		}
		if ok {
			d.log.Debug("state confirmed", zap.String("op", op), zap.Int("attempt", i+1))
			return nil
		}
	}
	d.log.Warn("state not confirmed", zap.String("op", op), zap.Int("attempts", attempts))
	return protocol.NewTimeoutError(op, attempts)
}

// SetDisplayMode switches between video and pattern display. Leaving pattern
// mode stops a running sequence first. Nothing is written when the
// controller is already in the requested mode; otherwise the new mode is
// confirmed by polling the read-back.
func (d *Driver) SetDisplayMode(target DisplayMode) error {
	const op = "set display mode"

	if target > DisplayPattern {
		return protocol.NewPreconditionError(op, fmt.Sprintf("unknown display mode %d", target))
	}

	current, err := d.GetDisplayMode()
	if err != nil {
		return err
	}
	if current == target {
		return nil
	}

	if current == DisplayPattern {
		state, err := d.GetRunState()
		if err != nil {
			return err
		}
		if state != RunStop {
			d.log.Info("stopping pattern sequence before leaving pattern mode",
				zap.Stringer("run_state", state))
			if err := d.SetRunState(RunStop); err != nil {
				return err
			}
		}
	}

	if err := d.Set(OpDisplayMode, uint8(target)); err != nil {
		return err
	}

	return d.poll(op, func() (bool, error) {
		mode, err := d.GetDisplayMode()
		return mode == target, err
	})
}

// setRunStateConfirmed writes the run state and polls until it reads back
func (d *Driver) setRunStateConfirmed(op string, state RunState) error {
	if err := d.SetRunState(state); err != nil {
		return err
	}
	return d.poll(op, func() (bool, error) {
		got, err := d.GetRunState()
		return got == state, err
	})
}

// StartPatternSequence starts the uploaded sequence and waits until the
// controller reports it running
func (d *Driver) StartPatternSequence() error {
	return d.setRunStateConfirmed("start pattern sequence", RunStart)
}

// StopPatternSequence stops the sequence
func (d *Driver) StopPatternSequence() error {
	return d.setRunStateConfirmed("stop pattern sequence", RunStop)
}

// PausePatternSequence pauses the sequence
func (d *Driver) PausePatternSequence() error {
	return d.setRunStateConfirmed("pause pattern sequence", RunPause)
}
