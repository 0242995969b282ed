package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StepStatus is where a step stands in a Runner operation
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepComplete
	StepFailed
	StepSkipped
)

// done reports whether the step counts toward the completion bar
func (s StepStatus) done() bool {
	return s == StepComplete || s == StepSkipped
}

// Step is one line of a Runner's step list
type Step struct {
	Number  int
	Name    string
	Status  StepStatus
	Message string // note printed after the marker, e.g. "72 bytes"
}

// Progress tracks the steps of a device operation and draws them
type Progress struct {
	Steps   []Step
	Current int // last step reported as running, 1-based
	Total   int
	Percent float64 // share of complete or skipped steps, 0..1
	bar     progress.Model
}

const (
	minBarWidth = 20
	maxBarWidth = 50
	nameColumn  = 45
)

// NewProgress returns a tracker for total pending steps
func NewProgress(total int) *Progress {
	p := &Progress{
		Steps: make([]Step, total),
		Total: total,
	}
	for i := range p.Steps {
		p.Steps[i].Number = i + 1
	}
	return p.SetWidth(GetTerminalWidth())
}

// SetWidth sizes the completion bar for a terminal of the given width
func (p *Progress) SetWidth(width int) *Progress {
	barWidth := width - 20
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}
	if barWidth > maxBarWidth {
		barWidth = maxBarWidth
	}
	p.bar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth))
	return p
}

// SetStepNames names the steps in order. Extra names are ignored.
func (p *Progress) SetStepNames(names []string) *Progress {
	for i := 0; i < len(names) && i < len(p.Steps); i++ {
		p.Steps[i].Name = names[i]
	}
	return p
}

// UpdateStep records a status change. Out of range step numbers are ignored.
func (p *Progress) UpdateStep(n int, status StepStatus, message string) {
	if n < 1 || n > len(p.Steps) {
		return
	}
	p.Steps[n-1].Status = status
	p.Steps[n-1].Message = message

	if status == StepRunning {
		p.Current = n
		return
	}
	if p.Total > 0 {
		p.Percent = float64(p.finished()) / float64(p.Total)
	}
}

// finished counts steps that moved the bar
func (p *Progress) finished() int {
	n := 0
	for _, s := range p.Steps {
		if s.Status.done() {
			n++
		}
	}
	return n
}

// renderBar draws the completion bar with a percentage and step count
func (p *Progress) renderBar() string {
	line := fmt.Sprintf("%s  %3.0f%%  %d/%d steps",
		p.bar.ViewAs(p.Percent), p.Percent*100, p.finished(), p.Total)
	return lipgloss.NewStyle().PaddingLeft(2).Render(line)
}

// renderStepLine draws "[n/total] name   marker  (message)"
func (p *Progress) renderStepLine(step Step) string {
	marker, style := StepMarkerPending, StepPendingStyle
	switch step.Status {
	case StepComplete:
		marker, style = StepMarkerComplete, StepCompleteStyle
	case StepRunning:
		marker, style = StepMarkerRunning, StepRunningStyle
	case StepFailed:
		marker, style = FailureMarker, ErrorTitleStyle
	case StepSkipped:
		marker = StepMarkerSkipped
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  [%d/%d] ", step.Number, p.Total)
	b.WriteString(style.Render(step.Name))
	b.WriteString(strings.Repeat(" ", max(nameColumn-lipgloss.Width(step.Name), 1)))
	b.WriteString(style.Render(marker))
	if step.Message != "" {
		b.WriteString("  " + StepNoteStyle.Render("("+step.Message+")"))
	}
	return b.String()
}

// StepCallback reports a step's progress to a Runner. A non-empty name
// replaces the configured one.
type StepCallback func(step int, name string, status StepStatus, message string)
