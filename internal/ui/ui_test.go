package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestResultRender(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   []string
	}{
		{
			name:   "success",
			result: NewSuccessResult("Upload complete", map[string]string{"Entries": "24", "Images": "2"}),
			want:   []string{"SUCCESS", "Upload complete", "Entries:", "24", "Images:"},
		},
		{
			name:   "failure",
			result: NewFailureResult("Upload failed", errors.New("mailbox busy"), []string{"Power cycle the projector"}),
			want:   []string{"FAILED", "mailbox busy", "Troubleshooting:", "Power cycle the projector"},
		},
		{
			name:   "warning",
			result: NewWarningResult("Sequence invalid", map[string]string{"Faults": "invalid_period"}),
			want:   []string{"WARNING", "Sequence invalid", "invalid_period"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.result.SetWidth(80).Render()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("Render() missing %q in:\n%s", w, out)
				}
			}
		})
	}
}

func TestResultDetailOrder(t *testing.T) {
	out := NewSuccessResult("x", map[string]string{"b": "2", "a": "1", "c": "3"}).SetWidth(80).Render()
	ia, ib, ic := strings.Index(out, "a:"), strings.Index(out, "b:"), strings.Index(out, "c:")
	if !(ia < ib && ib < ic) {
		t.Errorf("details not sorted: a=%d b=%d c=%d", ia, ib, ic)
	}
}

func TestProgressUpdateStep(t *testing.T) {
	p := NewProgress(4).SetWidth(80).SetStepNames([]string{"one", "two", "three", "four", "five"})

	p.UpdateStep(1, StepRunning, "")
	if p.Current != 1 {
		t.Errorf("Current = %d, want 1", p.Current)
	}
	p.UpdateStep(1, StepComplete, "")
	p.UpdateStep(2, StepSkipped, "")
	if p.Percent != 0.5 {
		t.Errorf("Percent = %v, want 0.5", p.Percent)
	}
	p.UpdateStep(3, StepFailed, "timeout")
	if p.Percent != 0.5 {
		t.Errorf("Percent after failure = %v, want 0.5", p.Percent)
	}

	// Out of range updates are ignored
	p.UpdateStep(0, StepComplete, "")
	p.UpdateStep(9, StepComplete, "")

	if got := p.Steps[3].Name; got != "four" {
		t.Errorf("Steps[3].Name = %q, want four", got)
	}
	if line := p.renderStepLine(p.Steps[2]); !strings.Contains(line, "[3/4] ") || !strings.Contains(line, "(timeout)") {
		t.Errorf("renderStepLine() = %q", line)
	}
	if bar := p.renderBar(); !strings.Contains(bar, " 50%") || !strings.Contains(bar, "2/4 steps") {
		t.Errorf("renderBar() = %q", bar)
	}
}

func TestRunnerSuccess(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(RunnerConfig{
		Title:     "Sequence Upload",
		Command:   "dlpc350-ctl sequence upload demo",
		Params:    map[string]string{"Device": "emulator"},
		StepNames: []string{"Configure", "Pattern LUT"},
		Output:    &buf,
		Width:     80,
	})

	err := r.Run(func(onStep StepCallback) (map[string]string, error) {
		onStep(1, "", StepRunning, "")
		onStep(1, "", StepComplete, "")
		onStep(2, "Pattern LUT (24 entries)", StepComplete, "72 bytes")
		return map[string]string{"Entries": "24"}, nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := buf.String()
	for _, w := range []string{"SEQUENCE UPLOAD", "Device:", "Pattern LUT (24 entries)", "(72 bytes)", "Sequence Upload complete", "Duration:", "Entries:"} {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q", w)
		}
	}
	if r.Progress().Percent != 1 {
		t.Errorf("Percent = %v, want 1", r.Progress().Percent)
	}
	// The bar follows the last step and precedes the result box
	bar := strings.Index(out, "100%  2/2 steps")
	if bar < strings.Index(out, "(72 bytes)") || bar > strings.Index(out, "Sequence Upload complete") {
		t.Errorf("completion bar missing or misplaced:\n%s", out)
	}
}

func TestRunnerFailure(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(RunnerConfig{
		Title:           "Sequence Upload",
		StepNames:       []string{"Configure"},
		Troubleshooting: []string{"Stop the running sequence first"},
		Output:          &buf,
		Width:           80,
	})

	wantErr := errors.New("device rejected")
	err := r.Run(func(onStep StepCallback) (map[string]string, error) {
		onStep(1, "", StepFailed, "")
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Run() error = %v, want %v", err, wantErr)
	}
	out := buf.String()
	if !strings.Contains(out, "Sequence Upload failed") || !strings.Contains(out, "Stop the running sequence first") {
		t.Errorf("failure output missing title or tip:\n%s", out)
	}
	if !strings.Contains(out, "  0%  0/1 steps") {
		t.Errorf("failure output missing empty completion bar:\n%s", out)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"no\n", false},
		{"", false},
		{"yes", true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got := Confirm(strings.NewReader(tt.input), &out, "Overwrite config", []string{"existing sequences are lost"})
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "existing sequences are lost") {
			t.Errorf("Confirm(%q) did not print warnings", tt.input)
		}
	}
}

func TestPanelRender(t *testing.T) {
	p := NewPanel("Device Status").SetWidth(80)
	p.AddSection("Hardware").Add("Init done", Flag(true, false)).Add("DRC error", Flag(true, true))
	p.AddSection("Main").Add("Sequence", "running")

	out := p.Render()
	for _, w := range []string{"DEVICE STATUS", "Hardware", "Init done:", "DRC error:", "Main", "running"} {
		if !strings.Contains(out, w) {
			t.Errorf("Render() missing %q", w)
		}
	}
	if len(p.Sections[0].Rows) != 2 {
		t.Errorf("Hardware rows = %d, want 2", len(p.Sections[0].Rows))
	}
}

func TestHeaderRender(t *testing.T) {
	out := NewHeader("Sequence Upload", "dlpc350-ctl sequence upload", map[string]string{
		"Sequence": "bitplanes",
		"Device":   "hid",
	}).SetWidth(70).Render()

	for _, w := range []string{"SEQUENCE UPLOAD", "dlpc350-ctl sequence upload", "Device:", "bitplanes"} {
		if !strings.Contains(out, w) {
			t.Errorf("Render() missing %q", w)
		}
	}
	if strings.Index(out, "Device:") > strings.Index(out, "Sequence:") {
		t.Error("params not sorted by key")
	}
}

func TestRenderHorizontalDivider(t *testing.T) {
	if got := RenderHorizontalDivider(5, "-"); !strings.Contains(got, "-----") {
		t.Errorf("RenderHorizontalDivider() = %q", got)
	}
}
