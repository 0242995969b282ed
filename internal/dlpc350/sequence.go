package dlpc350

import (
	"go.uber.org/zap"

	"github.com/lightcrafter/dlpc350/internal/pattern"
	"github.com/lightcrafter/dlpc350/internal/protocol"
)

// GetPatternPeriod reads the pattern exposure and frame period
func (d *Driver) GetPatternPeriod() (pattern.Period, error) {
	data, err := d.Get(OpPatternPeriod)
	if err != nil {
		return pattern.Period{}, err
	}
	return pattern.ParsePeriod(data)
}

// SetPatternPeriod writes the pattern exposure and frame period. The frame
// must exceed the exposure by more than pattern.MinBlankTime.
func (d *Driver) SetPatternPeriod(p pattern.Period) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return d.Set(OpPatternPeriod, p.Bytes()...)
}

// AddPattern appends p to seq using the pattern display mode currently
// configured on the controller
func (d *Driver) AddPattern(seq *pattern.Sequence, p pattern.Pattern) (pattern.Entry, error) {
	mode, err := d.GetPatternDisplayMode()
	if err != nil {
		return pattern.Entry{}, err
	}
	return seq.Add(mode, p)
}

// ConfigureParams returns the parameters of the configure command for seq
func ConfigureParams(seq *pattern.Sequence, repeat bool, triggerOutPulses uint8) ([]byte, error) {
	const op = "configure pattern sequence"

	n := seq.Len()
	if n == 0 {
		return nil, protocol.NewPreconditionError(op, "pattern sequence is empty")
	}
	if seq.ImageCount() == 0 {
		return nil, protocol.NewPreconditionError(op, "image list is empty")
	}

	pulses := uint8(n - 1)
	var repeatFlag uint8
	if repeat {
		if triggerOutPulses == 0 {
			return nil, protocol.NewPreconditionError(op, "trigger out pulses must be at least 1")
		}
		repeatFlag = 1
		pulses = triggerOutPulses - 1
	}

	return []byte{uint8(n - 1), repeatFlag, pulses, uint8(seq.ImageCount() - 1)}, nil
}

// ConfigurePatternSequence tells the controller the sizes of the pattern and
// image tables about to be uploaded
func (d *Driver) ConfigurePatternSequence(seq *pattern.Sequence, repeat bool, triggerOutPulses uint8) error {
	params, err := ConfigureParams(seq, repeat, triggerOutPulses)
	if err != nil {
		return err
	}
	return d.Set(OpConfigureSequence, params...)
}

// SendPatternLUT uploads the pattern entries of seq
func (d *Driver) SendPatternLUT(seq *pattern.Sequence) error {
	if seq.Len() == 0 {
		return protocol.NewPreconditionError("send pattern LUT", "pattern sequence is empty")
	}
	return d.upload(MailboxPatternLUT, seq.PatternLUT())
}

// ImageLUT returns the image LUT upload data for seq
func ImageLUT(seq *pattern.Sequence) []byte {
	images := seq.Images()
	// The controller expects a two-entry image table byte-swapped.
	if len(images) == 2 {
		images[0], images[1] = images[1], images[0]
	}
	return images
}

// SendImageLUT uploads the image list of seq
func (d *Driver) SendImageLUT(seq *pattern.Sequence) error {
	if seq.ImageCount() == 0 {
		return protocol.NewPreconditionError("send image LUT", "image list is empty")
	}
	return d.upload(MailboxImageLUT, ImageLUT(seq))
}

// SendPatternSequence configures the controller and uploads both tables.
// It stops at the first failing stage.
func (d *Driver) SendPatternSequence(seq *pattern.Sequence, repeat bool, triggerOutPulses uint8) error {
	if err := d.ConfigurePatternSequence(seq, repeat, triggerOutPulses); err != nil {
		return err
	}
	if err := d.SendPatternLUT(seq); err != nil {
		return err
	}
	if err := d.SendImageLUT(seq); err != nil {
		return err
	}
	d.log.Info("pattern sequence uploaded",
		zap.Int("patterns", seq.Len()),
		zap.Int("images", seq.ImageCount()),
		zap.Bool("repeat", repeat),
	)
	return nil
}

// ValidatePatternSequence asks the controller to validate the uploaded
// sequence against the configured period
func (d *Driver) ValidatePatternSequence() (Validation, error) {
	b, err := d.getByte(OpValidate)
	if err != nil {
		return Validation{}, err
	}
	v := ParseValidation(b)
	if !v.IsValid() {
		d.log.Warn("pattern sequence rejected by controller",
			zap.Strings("faults", v.Faults()))
	}
	return v, nil
}

// CheckPatternSequence verifies the continuation groups of seq against the
// exposure period configured on the controller
func (d *Driver) CheckPatternSequence(seq *pattern.Sequence) error {
	if seq.Len() == 0 {
		return protocol.NewPreconditionError("check pattern sequence", "pattern sequence is empty")
	}
	period, err := d.GetPatternPeriod()
	if err != nil {
		return err
	}
	if err := pattern.Check(seq, period); err != nil {
		return err
	}
	d.log.Debug("pattern sequence checked",
		zap.Int("groups", len(pattern.Groups(seq.Entries()))),
		zap.Stringer("period", period),
	)
	return nil
}
