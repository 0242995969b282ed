// Package ui provides terminal UI components for the dlpc350 command line
// tools.
//
// This package uses Bubble Tea and Lipgloss to render polished terminal
// output. The components follow a "run once and exit" pattern: they render
// output compellingly but don't require user interaction.
//
// # Architecture
//
// The UI package provides these component types:
//
//   - Header: Command banner showing operation name and parameters
//   - Progress: Progress bar with step list showing real-time status
//   - Result: Success/failure boxes with styled information
//   - Panel: Sectioned key/value report for device status and versions
//
// Multi-step device operations are orchestrated by the Runner, which
// manages the header → progress → result flow.
//
// Example:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:     "Sequence Upload",
//	    Command:   "dlpc350-ctl sequence upload gray-code",
//	    StepNames: []string{"Configure", "Pattern LUT", "Image LUT"},
//	})
//
//	err := runner.Run(func(onStep ui.StepCallback) (map[string]string, error) {
//	    onStep(1, "", ui.StepRunning, "")
//	    // ... do work ...
//	    onStep(1, "", ui.StepComplete, "")
//	    return nil, nil
//	})
//
// # Logging Integration
//
// This package expects logging to be controlled via the DLPC350_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent, allowing
// the curated UI output to be displayed cleanly.
package ui
