package dlpc350_test

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/lightcrafter/dlpc350/internal/dlpc350"
	"github.com/lightcrafter/dlpc350/internal/pattern"
	"github.com/lightcrafter/dlpc350/internal/protocol"
)

func TestConfigureParams(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		perImage int
		repeat   bool
		pulses   uint8
		want     []byte
	}{
		{"18 entries 2 images repeat", 18, 9, true, 18, []byte{17, 1, 17, 1}},
		{"18 entries 2 images once", 18, 9, false, 18, []byte{17, 0, 17, 1}},
		{"single entry", 1, 1, true, 1, []byte{0, 1, 0, 0}},
		{"repeat with 3 pulses", 6, 2, true, 3, []byte{5, 1, 2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := buildSequence(t, tt.count, tt.perImage)
			got, err := dlpc350.ConfigureParams(seq, tt.repeat, tt.pulses)
			if err != nil {
				t.Fatalf("ConfigureParams() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("ConfigureParams() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigurePatternSequence(t *testing.T) {
	drv, dev := newDriver(t, nil)
	seq := buildSequence(t, 18, 9)

	if err := drv.ConfigurePatternSequence(seq, true, 18); err != nil {
		t.Fatalf("ConfigurePatternSequence() error = %v", err)
	}
	frames := dev.Frames()
	last := frames[len(frames)-1]
	if last.Opcode() != dlpc350.OpConfigureSequence {
		t.Fatalf("last opcode = %s, want %s", last.Opcode(), dlpc350.OpConfigureSequence)
	}
	if !bytes.Equal(last.Params(), []byte{17, 1, 17, 1}) {
		t.Errorf("configure params = %v, want [17 1 17 1]", last.Params())
	}

	cfg, ok := dev.Configuration()
	if !ok || cfg.Patterns != 18 || cfg.Images != 2 || !cfg.Repeat || cfg.TriggerOutPulses != 18 {
		t.Errorf("device configuration = %+v, %v", cfg, ok)
	}
}

func TestConfigureEmptySequence(t *testing.T) {
	drv, dev := newDriver(t, nil)
	err := drv.ConfigurePatternSequence(pattern.NewSequence(), true, 1)
	if !protocol.IsPreconditionViolation(err) {
		t.Errorf("ConfigurePatternSequence(empty) error = %v, want precondition violation", err)
	}
	if len(dev.Frames()) != 0 {
		t.Error("frames sent for an empty sequence")
	}
}

func TestSendPatternSequence(t *testing.T) {
	drv, dev := newDriver(t, nil)
	seq := buildSequence(t, 40, 8)

	if err := drv.SendPatternSequence(seq, true, 1); err != nil {
		t.Fatalf("SendPatternSequence() error = %v", err)
	}

	uploaded := dev.PatternLUT()
	if len(uploaded) != seq.Len() {
		t.Fatalf("device holds %d entries, want %d", len(uploaded), seq.Len())
	}
	for i, e := range seq.Entries() {
		want := e
		want.ImageIndex = 0
		if uploaded[i] != want {
			t.Errorf("entry %d = %v, want %v", i, uploaded[i], want)
		}
	}
	if got := dev.ImageLUT(); !bytes.Equal(got, []byte{0, 1, 2, 3, 4}) {
		t.Errorf("image LUT = %v, want [0 1 2 3 4]", got)
	}
	if dev.MailboxOpen() {
		t.Error("mailbox left open")
	}

	want := []protocol.Opcode{
		dlpc350.OpConfigureSequence,
		dlpc350.OpMailboxControl, dlpc350.OpMailboxAddress, dlpc350.OpMailboxData, dlpc350.OpMailboxControl,
		dlpc350.OpMailboxControl, dlpc350.OpMailboxAddress, dlpc350.OpMailboxData, dlpc350.OpMailboxControl,
	}
	got := dev.Opcodes()
	if len(got) != len(want) {
		t.Fatalf("opcodes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("opcode %d = %s, want %s", i, got[i], want[i])
		}
	}

	v, err := drv.ValidatePatternSequence()
	if err != nil {
		t.Fatalf("ValidatePatternSequence() error = %v", err)
	}
	if !v.IsValid() {
		t.Errorf("ValidatePatternSequence() faults = %v", v.Faults())
	}
}

func TestSendPatternSequenceSpansPackets(t *testing.T) {
	drv, dev := newDriver(t, nil)
	seq := buildSequence(t, pattern.MaxPatterns, 32)

	dev.ResetLog()
	if err := drv.SendPatternLUT(seq); err != nil {
		t.Fatalf("SendPatternLUT() error = %v", err)
	}
	// open, address, close: one packet each; data: 2 + 384 bytes
	want := 3 + protocol.PacketCount(protocol.OpcodeSize+pattern.MaxPatterns*pattern.LUTEntrySize)
	if got := dev.PacketsReceived(); got != want {
		t.Errorf("packets sent = %d, want %d", got, want)
	}
}

func TestImageLUTTwoEntrySwap(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		perImage int
		want     []byte
	}{
		{"one image", 3, 3, []byte{0}},
		{"two images swapped", 4, 2, []byte{1, 0}},
		{"three images unchanged", 6, 2, []byte{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := buildSequence(t, tt.count, tt.perImage)
			if got := dlpc350.ImageLUT(seq); !bytes.Equal(got, tt.want) {
				t.Errorf("ImageLUT() = %v, want %v", got, tt.want)
			}
			if imgs := seq.Images(); tt.count == 4 && imgs[0] != 0 {
				t.Error("ImageLUT() modified the sequence")
			}
		})
	}
}

func TestMailboxClosedWhenWriteFails(t *testing.T) {
	drv, dev := newDriver(t, nil)
	seq := buildSequence(t, 8, 4)
	dev.FailOpcode(dlpc350.OpMailboxData, 1)

	err := drv.SendPatternSequence(seq, true, 1)
	if !protocol.IsDeviceRejected(err) {
		t.Fatalf("SendPatternSequence() error = %v, want device rejected", err)
	}
	if dev.MailboxOpen() {
		t.Error("mailbox left open after failed write")
	}

	ops := dev.Opcodes()
	last := dev.Frames()[len(ops)-1]
	if last.Opcode() != dlpc350.OpMailboxControl || len(last.Params()) != 0 {
		t.Errorf("last frame = %s %v, want mailbox close", last.Opcode(), last.Params())
	}

	// the image LUT stage never started
	opens := 0
	for _, f := range dev.Frames() {
		if f.Opcode() == dlpc350.OpMailboxControl && len(f.Params()) == 1 {
			opens++
		}
	}
	if opens != 1 {
		t.Errorf("mailbox opened %d times, want 1", opens)
	}

	// the mailbox lock was released
	done := make(chan error, 1)
	go func() { done <- drv.SendPatternLUT(seq) }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("SendPatternLUT() after failure error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("mailbox lock not released")
	}
}

func TestMailboxClosedWhenAddressFails(t *testing.T) {
	drv, dev := newDriver(t, nil)
	dev.FailOpcode(dlpc350.OpMailboxAddress, 1)

	if err := drv.SendImageLUT(buildSequence(t, 2, 1)); err == nil {
		t.Fatal("SendImageLUT() succeeded, want error")
	}
	if dev.MailboxOpen() {
		t.Error("mailbox left open")
	}
	if n := dev.Count(protocol.Write, dlpc350.OpMailboxData); n != 0 {
		t.Errorf("mailbox data written %d times after address failure", n)
	}
}

func TestSendAbortsAfterConfigureFailure(t *testing.T) {
	drv, dev := newDriver(t, nil)
	dev.FailOpcode(dlpc350.OpConfigureSequence, 1)

	if err := drv.SendPatternSequence(buildSequence(t, 4, 4), true, 1); !protocol.IsDeviceRejected(err) {
		t.Fatalf("SendPatternSequence() error = %v, want device rejected", err)
	}
	if n := dev.Count(protocol.Write, dlpc350.OpMailboxControl); n != 0 {
		t.Errorf("mailbox used %d times after configure failure", n)
	}
}

func TestMailboxSession(t *testing.T) {
	drv, dev := newDriver(t, nil)

	if _, err := drv.OpenMailbox(3); !protocol.IsPreconditionViolation(err) {
		t.Errorf("OpenMailbox(3) error = %v, want precondition violation", err)
	}

	s, err := drv.OpenMailbox(dlpc350.MailboxImageLUT)
	if err != nil {
		t.Fatalf("OpenMailbox() error = %v", err)
	}
	if !dev.MailboxOpen() {
		t.Error("device mailbox not open")
	}
	if err := s.SetAddress(dlpc350.MaxMailboxAddress + 1); !protocol.IsPreconditionViolation(err) {
		t.Errorf("SetAddress(128) error = %v, want precondition violation", err)
	}
	if err := s.SetAddress(4); err != nil {
		t.Errorf("SetAddress(4) error = %v", err)
	}
	if err := s.Write([]byte{9, 8}); err != nil {
		t.Errorf("Write() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := s.Write([]byte{1}); !protocol.IsPreconditionViolation(err) {
		t.Errorf("Write() after Close error = %v, want precondition violation", err)
	}
	if got := dev.ImageLUT(); len(got) != 6 || got[4] != 9 || got[5] != 8 {
		t.Errorf("image LUT = %v, want data at offset 4", got)
	}
}

func TestMailboxSessionsAreExclusive(t *testing.T) {
	drv, _ := newDriver(t, nil)

	first, err := drv.OpenMailbox(dlpc350.MailboxPatternLUT)
	if err != nil {
		t.Fatalf("OpenMailbox() error = %v", err)
	}

	var wg sync.WaitGroup
	opened := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		second, err := drv.OpenMailbox(dlpc350.MailboxImageLUT)
		if err != nil {
			t.Errorf("second OpenMailbox() error = %v", err)
			close(opened)
			return
		}
		close(opened)
		second.Close()
	}()

	select {
	case <-opened:
		t.Fatal("second session opened while the first was open")
	case <-time.After(50 * time.Millisecond):
	}

	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	select {
	case <-opened:
	case <-time.After(time.Second):
		t.Fatal("second session did not open after Close")
	}
	wg.Wait()
}

func TestAddPatternUsesDeviceDisplayMode(t *testing.T) {
	drv, dev := newDriver(t, nil)
	if err := drv.SetPatternDisplayMode(pattern.DisplayModeExternal); err != nil {
		t.Fatalf("SetPatternDisplayMode() error = %v", err)
	}
	if v, _ := dev.Register(dlpc350.OpPatternDisplayMode); v != 0 {
		t.Fatalf("pattern display mode = %d, want 0", v)
	}

	seq := pattern.NewSequence()
	e, err := drv.AddPattern(seq, pattern.NewPattern(pattern.ColorRed, pattern.TriggerInternal, 8, 0, pattern.G0))
	if err != nil {
		t.Fatalf("AddPattern() error = %v", err)
	}
	if e.TriggerType != pattern.TriggerExternalPositive {
		t.Errorf("TriggerType = %s, want %s", e.TriggerType, pattern.TriggerExternalPositive)
	}

	if err := drv.SetPatternDisplayMode(pattern.DisplayMode(1)); !protocol.IsPreconditionViolation(err) {
		t.Errorf("SetPatternDisplayMode(1) error = %v, want precondition violation", err)
	}
}

func TestValidateReportsFaults(t *testing.T) {
	drv, _ := newDriver(t, nil)
	seq := pattern.NewSequence()
	p := pattern.NewPattern(pattern.ColorGreen, pattern.TriggerInternal, 8, 0, pattern.G0)
	p.InsertBlack = false
	if _, err := seq.Add(pattern.DisplayModeInternal, p); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := drv.SetPatternPeriod(pattern.Period{Exposure: 1000, Frame: 2000}); err != nil {
		t.Fatalf("SetPatternPeriod() error = %v", err)
	}
	if err := drv.SendPatternSequence(seq, false, 0); err != nil {
		t.Fatalf("SendPatternSequence() error = %v", err)
	}

	v, err := drv.ValidatePatternSequence()
	if err != nil {
		t.Fatalf("ValidatePatternSequence() error = %v", err)
	}
	if v.IsValid() {
		t.Fatal("IsValid() = true, want faults")
	}
	if !v.InvalidPeriod || !v.MissingBlackVector || v.InvalidPattern {
		t.Errorf("ValidatePatternSequence() = %+v", v)
	}
}

func TestCheckPatternSequence(t *testing.T) {
	drv, _ := newDriver(t, nil)

	if err := drv.CheckPatternSequence(pattern.NewSequence()); !protocol.IsPreconditionViolation(err) {
		t.Errorf("CheckPatternSequence(empty) error = %v, want precondition violation", err)
	}

	if err := drv.SetPatternPeriod(pattern.Period{Exposure: 1000, Frame: 2000}); err != nil {
		t.Fatalf("SetPatternPeriod() error = %v", err)
	}
	if err := drv.CheckPatternSequence(buildSequence(t, 10, 5)); err != nil {
		t.Errorf("CheckPatternSequence() error = %v", err)
	}

	seq := pattern.NewSequence()
	for i := 0; i < 3; i++ {
		if _, err := seq.AddEntry(pattern.Entry{BitDepth: 2, TriggerOutPrevious: i > 0}); err != nil {
			t.Fatalf("AddEntry() error = %v", err)
		}
	}
	// 1000 / 3 = 333 < 700
	if err := drv.CheckPatternSequence(seq); !protocol.IsPreconditionViolation(err) {
		t.Errorf("CheckPatternSequence() error = %v, want precondition violation", err)
	}
}
