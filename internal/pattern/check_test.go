package pattern

import (
	"testing"

	"github.com/lightcrafter/dlpc350/internal/protocol"
)

func TestPeriodValidate(t *testing.T) {
	tests := []struct {
		name    string
		period  Period
		wantErr bool
	}{
		{"valid", Period{Exposure: 2700, Frame: 3000}, false},
		{"gap too small", Period{Exposure: 2900, Frame: 3000}, true},
		{"gap exactly minimum", Period{Exposure: 2770, Frame: 3000}, true},
		{"gap one over minimum", Period{Exposure: 2769, Frame: 3000}, false},
		{"exposure exceeds frame", Period{Exposure: 4000, Frame: 3000}, true},
		{"equal", Period{Exposure: 3000, Frame: 3000}, true},
		{"zero exposure", Period{Exposure: 0, Frame: 231}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.period.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !protocol.IsPreconditionViolation(err) {
				t.Errorf("Validate() error type = %v, want precondition violation", err)
			}
		})
	}
}

func TestPeriodBytes(t *testing.T) {
	p := Period{Exposure: 2700, Frame: 3000}
	b := p.Bytes()
	want := []byte{0x8C, 0x0A, 0xB8, 0x0B}
	for i := range want {
		if b[i] != want[i] {
			t.Errorf("Bytes()[%d] = 0x%02X, want 0x%02X", i, b[i], want[i])
		}
	}

	back, err := ParsePeriod(b)
	if err != nil {
		t.Fatalf("ParsePeriod() error = %v", err)
	}
	if back != p {
		t.Errorf("ParsePeriod() = %v, want %v", back, p)
	}

	if _, err := ParsePeriod(b[:3]); err == nil {
		t.Error("ParsePeriod() of short data should fail")
	}
}

func TestGroups(t *testing.T) {
	entries := []Entry{
		{BitDepth: 1},
		{BitDepth: 4, TriggerOutPrevious: true},
		{BitDepth: 2, TriggerOutPrevious: true},
		{BitDepth: 8},
		{BitDepth: 3},
		{BitDepth: 6, TriggerOutPrevious: true},
	}

	got := Groups(entries)
	want := []Group{
		{Start: 0, Size: 3, MaxBitDepth: 4},
		{Start: 3, Size: 1, MaxBitDepth: 8},
		{Start: 4, Size: 2, MaxBitDepth: 6},
	}
	if len(got) != len(want) {
		t.Fatalf("Groups() returned %d groups, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Groups()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	if g := Groups(nil); len(g) != 0 {
		t.Errorf("Groups(nil) = %v, want empty", g)
	}
}

func TestCheckSingletonGroupsAlwaysPass(t *testing.T) {
	seq := NewSequence()
	for i := 0; i < 10; i++ {
		p := NewPattern(ColorWhite, TriggerInternal, 8, uint8(i/3), R0)
		if _, err := seq.Add(DisplayModeInternal, p); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	periods := []Period{{0, 0}, {1, 1}, {100, 5000}, {65535, 65535}}
	for _, p := range periods {
		if err := Check(seq, p); err != nil {
			t.Errorf("Check(%v) error = %v, want nil", p, err)
		}
	}
}

func TestCheckContinuationGroups(t *testing.T) {
	build := func(depths ...uint8) *Sequence {
		seq := NewSequence()
		for i, d := range depths {
			e := Entry{BitDepth: d, TriggerOutPrevious: i > 0}
			if _, err := seq.AddEntry(e); err != nil {
				t.Fatalf("AddEntry() error = %v", err)
			}
		}
		return seq
	}

	tests := []struct {
		name     string
		depths   []uint8
		exposure uint16
		wantErr  bool
	}{
		{"two 1-bit fit", []uint8{1, 1}, 470, false},
		{"two 1-bit too short", []uint8{1, 1}, 469, true},
		{"max depth governs", []uint8{1, 8}, 16666, false},
		{"max depth too short", []uint8{1, 8}, 16665, true},
		{"three 4-bit", []uint8{4, 4, 4}, 5100, false},
		{"three 4-bit too short", []uint8{4, 4, 4}, 5099, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(build(tt.depths...), Period{Exposure: tt.exposure, Frame: 65535})
			if (err != nil) != tt.wantErr {
				t.Errorf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMinimumExposureFor(t *testing.T) {
	for depth := uint8(1); depth <= 8; depth++ {
		got, ok := MinimumExposureFor(depth)
		if !ok || got != MinimumExposure[depth-1] {
			t.Errorf("MinimumExposureFor(%d) = %d, %v", depth, got, ok)
		}
	}
	if _, ok := MinimumExposureFor(0); ok {
		t.Error("MinimumExposureFor(0) should not be ok")
	}
	if _, ok := MinimumExposureFor(9); ok {
		t.Error("MinimumExposureFor(9) should not be ok")
	}
}
