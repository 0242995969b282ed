package deviceconfig

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lightcrafter/dlpc350/internal/logging"
)

// VerifyOptions configures the read-back after a write
type VerifyOptions struct {
	// Attempts is the number of read-backs before giving up
	Attempts int

	// Delay is the wait between read-backs
	Delay time.Duration
}

// DefaultVerifyOptions returns the read-back defaults
func DefaultVerifyOptions() *VerifyOptions {
	return &VerifyOptions{
		Attempts: 3,
		Delay:    100 * time.Millisecond,
	}
}

// Apply writes every set field. The input source goes first because the
// test pattern and flash image depend on it.
func Apply(c Controller, s *Settings) error {
	steps := []struct {
		field string
		set   bool
		write func() error
	}{
		{"input source", s.Input != nil, func() error { return c.SetInputSource(*s.Input) }},
		{"test pattern", s.TestPattern != nil, func() error { return c.SetTestPattern(*s.TestPattern) }},
		{"flash image", s.FlashImage != nil, func() error { return c.SetFlashImage(*s.FlashImage) }},
		{"LED enable", s.LEDEnable != nil, func() error { return c.SetLEDEnable(*s.LEDEnable) }},
		{"LED current", s.LEDCurrent != nil, func() error { return c.SetLEDCurrent(*s.LEDCurrent) }},
	}

	for _, step := range steps {
		if !step.set {
			continue
		}
		if err := step.write(); err != nil {
			return &Error{Stage: StageApply, Field: step.field, Err: err}
		}
		logging.Debug("setting written", zap.String("field", step.field))
	}
	return nil
}

// Verify reads the settings back until every set field of expected
// matches or the attempts run out
func Verify(c Controller, expected *Settings, opts *VerifyOptions) error {
	if opts == nil {
		opts = DefaultVerifyOptions()
	}
	attempts := opts.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			time.Sleep(opts.Delay)
		}
		actual, err := Snapshot(c)
		if err != nil {
			lastErr = &Error{Stage: StageVerify, Err: err}
			continue
		}
		mismatches := Compare(expected, actual)
		if len(mismatches) == 0 {
			return nil
		}
		lastErr = &Error{Stage: StageVerify, Mismatches: mismatches, Err: ErrMismatch}
		logging.Debug("settings read-back mismatch",
			zap.Int("attempt", i+1),
			zap.Strings("mismatches", mismatches),
		)
	}
	return lastErr
}

// Result describes a SafeUpdate
type Result struct {
	Before     *Settings // snapshot taken before the update
	Applied    *Settings // the requested update
	RolledBack bool      // the snapshot was restored
	Err        error     // nil on success
}

// SafeUpdate applies update with verification and restores the previous
// settings if the write or the read-back fails
func SafeUpdate(c Controller, update *Settings, opts *VerifyOptions) *Result {
	result := &Result{Applied: update}
	if update.IsEmpty() {
		result.Err = &Error{Stage: StageBuild, Err: fmt.Errorf("no settings to change")}
		return result
	}

	before, err := Snapshot(c)
	if err != nil {
		result.Err = &Error{Stage: StageSnapshot, Err: err}
		return result
	}
	result.Before = before

	err = Apply(c, update)
	if err == nil {
		err = Verify(c, update, opts)
	}
	if err == nil {
		logging.Info("settings updated", zap.Strings("changes", Diff(before, update)))
		return result
	}

	logging.Warn("settings update failed, restoring previous settings", zap.Error(err))
	restore := RestoreFor(before, update)
	if rbErr := Apply(c, restore); rbErr != nil {
		result.Err = fmt.Errorf("%w (and restoring failed: %v)", err, rbErr)
		return result
	}
	if rbErr := Verify(c, restore, opts); rbErr != nil {
		result.Err = fmt.Errorf("%w (and restored settings did not verify: %v)", err, rbErr)
		return result
	}
	result.RolledBack = true
	result.Err = err
	return result
}

// RestoreFor returns the fields of before that update may have changed.
// Changing the input source may invalidate the test pattern or flash
// image, so those are restored along with it.
func RestoreFor(before, update *Settings) *Settings {
	restore := &Settings{}
	if update.LEDEnable != nil {
		restore.LEDEnable = before.LEDEnable
	}
	if update.LEDCurrent != nil {
		restore.LEDCurrent = before.LEDCurrent
	}
	touchesInput := update.Input != nil || update.TestPattern != nil || update.FlashImage != nil
	if touchesInput {
		restore.Input = before.Input
		restore.TestPattern = before.TestPattern
		restore.FlashImage = before.FlashImage
	}
	return restore.Clone()
}
