// Package dlpc350 implements the command layer of the DLPC350 micromirror
// controller on top of the transaction codec.
//
// A Driver owns one packet transport and exposes typed accessors for the
// controller registers (status, version, power, display mode, LEDs, input
// source, pattern period), the mailbox protocol used to upload pattern and
// image lookup tables, and the device-side validation of an uploaded
// pattern sequence.
//
// # Usage Example
//
//	t := transport.NewHID(transport.DefaultHIDConfig())
//	if err := t.Open(); err != nil {
//	    return err
//	}
//	defer t.Close()
//
//	drv := dlpc350.New(t, dlpc350.WithPollAttempts(10))
//	if err := drv.SetDisplayMode(dlpc350.DisplayPattern); err != nil {
//	    return err
//	}
//
//	seq := pattern.NewSequence()
//	for i := 0; i < 8; i++ {
//	    p := pattern.NewPattern(pattern.ColorWhite, pattern.TriggerInternal, 1, 0, pattern.BitIndex(i))
//	    if _, err := drv.AddPattern(seq, p); err != nil {
//	        return err
//	    }
//	}
//	if err := drv.SetPatternPeriod(pattern.Period{Exposure: 2700, Frame: 3000}); err != nil {
//	    return err
//	}
//	if err := drv.SendPatternSequence(seq, true, 1); err != nil {
//	    return err
//	}
//	v, err := drv.ValidatePatternSequence()
//	if err == nil && v.IsValid() {
//	    err = drv.StartPatternSequence()
//	}
//
// # Preconditions
//
// Operations check their documented preconditions (start bit alignment,
// mailbox address range, pattern period, input source for test pattern and
// flash image commands) before any I/O and return a PreconditionViolation.
//
// # Thread Safety
//
// Transactions are serialized by the codec. Mailbox sessions additionally
// hold an exclusive lock from open to close so no other upload interleaves
// with the device-side write cursor.
package dlpc350
