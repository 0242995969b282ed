package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RunnerConfig holds configuration for a multi-step device operation
type RunnerConfig struct {
	Title           string            // Operation title (e.g., "Sequence Upload")
	Command         string            // Full command (e.g., "dlpc350-ctl sequence upload")
	Params          map[string]string // Parameters to display in header
	StepNames       []string          // Names for each step
	Troubleshooting []string          // Tips shown when the operation fails
	Output          io.Writer         // Output writer (default: os.Stdout)
	Width           int               // Render width (default: terminal width)
}

// Runner prints a multi-step operation: the header, one line per finished
// step, a completion bar once the operation returns, then the result box.
type Runner struct {
	config    RunnerConfig
	header    *Header
	progress  *Progress
	output    io.Writer
	startTime time.Time
	width     int
}

// NewRunner creates a new runner
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	width := config.Width
	if width == 0 {
		width = GetTerminalWidth()
	}

	header := NewHeader(config.Title, config.Command, config.Params)
	header.SetWidth(width)

	var progress *Progress
	if len(config.StepNames) > 0 {
		progress = NewProgress(len(config.StepNames)).SetWidth(width).SetStepNames(config.StepNames)
	}

	return &Runner{
		config:   config,
		header:   header,
		progress: progress,
		output:   config.Output,
		width:    width,
	}
}

// Operation is the function signature for the work a Runner displays.
// The operation receives a StepCallback to report progress.
type Operation func(onStep StepCallback) (map[string]string, error)

// Run executes the operation with UI updates.
// It displays the header, tracks progress, and shows the result.
func (r *Runner) Run(operation Operation) error {
	r.startTime = time.Now()

	_, _ = fmt.Fprintln(r.output, r.header.Render())
	_, _ = fmt.Fprintln(r.output)

	details, err := operation(r.createStepCallback())
	duration := time.Since(r.startTime)

	if r.progress != nil {
		_, _ = fmt.Fprintln(r.output)
		_, _ = fmt.Fprintln(r.output, r.progress.renderBar())
	}

	if err != nil {
		r.printFailure(err)
	} else {
		r.printSuccess(details, duration)
	}
	return err
}

// Progress returns the step tracker, or nil when no steps were configured
func (r *Runner) Progress() *Progress {
	return r.progress
}

// createStepCallback creates the step callback function
func (r *Runner) createStepCallback() StepCallback {
	return func(stepNumber int, name string, status StepStatus, message string) {
		if r.progress == nil || stepNumber < 1 || stepNumber > len(r.progress.Steps) {
			return
		}

		if name != "" {
			r.progress.Steps[stepNumber-1].Name = name
		}
		r.progress.UpdateStep(stepNumber, status, message)

		step := r.progress.Steps[stepNumber-1]
		switch status {
		case StepComplete, StepFailed, StepSkipped:
			_, _ = fmt.Fprintln(r.output, r.progress.renderStepLine(step))
		case StepRunning:
			// Overwritten when the step finishes
			_, _ = fmt.Fprint(r.output, r.progress.renderStepLine(step)+"\r")
		}
	}
}

// printSuccess prints a success result with the operation's details
func (r *Runner) printSuccess(details map[string]string, duration time.Duration) {
	_, _ = fmt.Fprintln(r.output)

	if details == nil {
		details = make(map[string]string)
	}
	details["Duration"] = duration.Round(time.Millisecond).String()

	result := NewSuccessResult(r.config.Title+" complete", details)
	result.SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, result.Render())
}

// printFailure prints a failure result with troubleshooting
func (r *Runner) printFailure(err error) {
	_, _ = fmt.Fprintln(r.output)

	result := NewFailureResult(r.config.Title+" failed", err, r.config.Troubleshooting)
	result.SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, result.Render())
}

// --- Simple helper functions for commands that don't need a Runner ---

// PrintSuccess prints a styled success result
func PrintSuccess(title string, details map[string]string) {
	result := NewSuccessResult(title, details)
	fmt.Println()
	fmt.Println(result.Render())
}

// PrintFailure prints a styled failure result
func PrintFailure(title string, err error, troubleshooting []string) {
	result := NewFailureResult(title, err, troubleshooting)
	fmt.Println()
	fmt.Println(result.Render())
}

// PrintWarning prints a styled warning result
func PrintWarning(title string, details map[string]string) {
	result := NewWarningResult(title, details)
	fmt.Println()
	fmt.Println(result.Render())
}

// PrintPleaseWait prints a styled "please wait" message for long-running operations.
// The duration hint helps set user expectations, e.g., "up to 5 seconds".
func PrintPleaseWait(message string, durationHint string) {
	style := lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true).
		PaddingLeft(2)

	hintStyle := lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	line := style.Render("⏳ " + message)
	if durationHint != "" {
		line += " " + hintStyle.Render("("+durationHint+")")
	}
	line += style.Render("...")

	fmt.Println()
	fmt.Println(line)
	fmt.Println()
}
